/*
Package factory provides JSON to Go leave-policy conversion.

PURPOSE:
  Converts a JSON leave policy into leave.Policy so HR can change default
  entitlements, the refund rule and the holiday calendar without a code
  change. The server loads LEAVE_POLICY_FILE at startup; without one the
  embedded default is used.

JSON SCHEMA:
  {
    "name": "Standard",
    "default_balances": {
      "annual": 25,
      "sick": 10,
      "personal": 3,
      "emergency": 5
    },
    "refund_on_cancel": false,
    "holiday_country": "LK"
  }

VALIDATION:
  - Balances must be >= 0 with at most one decimal (half days)
  - holiday_country is upper-cased; 2 letters or empty (every country)
  - Missing balances fall back to the default value for that counter

USAGE:
  factory := NewPolicyFactory()
  policy, err := factory.ParsePolicy(jsonString)
  policy, err := factory.LoadFile("./policy.json")
*/
package factory

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

//go:embed default_policy.json
var defaultPolicyJSON string

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a leave policy.
type PolicyJSON struct {
	Name            string        `json:"name,omitempty"`
	DefaultBalances *BalancesJSON `json:"default_balances,omitempty"`
	RefundOnCancel  bool          `json:"refund_on_cancel"`
	HolidayCountry  *string       `json:"holiday_country,omitempty"`
}

// BalancesJSON holds per-counter entitlements. Nil means "use default".
type BalancesJSON struct {
	Annual    *decimal.Decimal `json:"annual,omitempty"`
	Sick      *decimal.Decimal `json:"sick,omitempty"`
	Personal  *decimal.Decimal `json:"personal,omitempty"`
	Emergency *decimal.Decimal `json:"emergency,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to leave.Policy.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// Default returns the embedded default policy.
func (f *PolicyFactory) Default() leave.Policy {
	p, err := f.ParsePolicy(defaultPolicyJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded default policy is invalid: %v", err))
	}
	return p
}

// LoadFile reads and parses a policy file.
func (f *PolicyFactory) LoadFile(path string) (leave.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return leave.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// ParsePolicy parses a JSON string into a leave.Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (leave.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return leave.Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates pj and fills gaps from leave.DefaultPolicy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (leave.Policy, error) {
	policy := leave.DefaultPolicy()
	policy.RefundOnCancel = pj.RefundOnCancel

	if pj.HolidayCountry != nil {
		country := strings.ToUpper(strings.TrimSpace(*pj.HolidayCountry))
		if country != "" && len(country) != 2 {
			return leave.Policy{}, fmt.Errorf("holiday_country must be a 2-letter code, got %q", *pj.HolidayCountry)
		}
		policy.HolidayCountry = country
	}

	if b := pj.DefaultBalances; b != nil {
		for _, c := range []struct {
			name string
			src  *decimal.Decimal
			dst  *decimal.Decimal
		}{
			{"annual", b.Annual, &policy.DefaultBalances.Annual},
			{"sick", b.Sick, &policy.DefaultBalances.Sick},
			{"personal", b.Personal, &policy.DefaultBalances.Personal},
			{"emergency", b.Emergency, &policy.DefaultBalances.Emergency},
		} {
			if c.src == nil {
				continue
			}
			if c.src.IsNegative() || !c.src.Equal(c.src.Round(1)) {
				return leave.Policy{}, fmt.Errorf("default_balances.%s must be >= 0 with at most one decimal, got %s", c.name, c.src)
			}
			*c.dst = *c.src
		}
	}

	return policy, nil
}

// ToJSON converts a leave.Policy to PolicyJSON.
func (f *PolicyFactory) ToJSON(p leave.Policy) PolicyJSON {
	b := p.DefaultBalances
	country := p.HolidayCountry
	return PolicyJSON{
		DefaultBalances: &BalancesJSON{
			Annual:    &b.Annual,
			Sick:      &b.Sick,
			Personal:  &b.Personal,
			Emergency: &b.Emergency,
		},
		RefundOnCancel: p.RefundOnCancel,
		HolidayCountry: &country,
	}
}
