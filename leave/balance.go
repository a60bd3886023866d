/*
balance.go - Per-employee balance ledger

PURPOSE:
  Validates and applies balance changes for the four counted leave
  categories. Balances is a plain value: every function takes the
  current balances and returns the new ones, leaving the caller to
  persist them. The store serializes concurrent writers.

COUNTERS:
  annual, sick, personal, emergency. Maternity and paternity have no
  counter: checks pass and mutations are no-ops.

INVARIANT:
  A counter is never debited below zero. ApplyDebit fails with
  InsufficientBalanceError instead.

SEE ALSO:
  - grants.go:  paid-leave grants credited through ApplyGrant
  - service.go: calls CheckSufficient on create, ApplyDebit on approve
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// Balances holds the remaining days per counted leave category.
type Balances struct {
	Annual    decimal.Decimal
	Sick      decimal.Decimal
	Personal  decimal.Decimal
	Emergency decimal.Decimal
}

// NewBalances builds balances from whole or fractional day counts.
func NewBalances(annual, sick, personal, emergency float64) Balances {
	return Balances{
		Annual:    roundDays(decimal.NewFromFloat(annual)),
		Sick:      roundDays(decimal.NewFromFloat(sick)),
		Personal:  roundDays(decimal.NewFromFloat(personal)),
		Emergency: roundDays(decimal.NewFromFloat(emergency)),
	}
}

// Get returns the counter for t. ok is false for exempt or unknown types.
func (b Balances) Get(t LeaveType) (decimal.Decimal, bool) {
	if t.BalanceExempt() {
		return decimal.Zero, false
	}
	switch t {
	case TypeAnnual:
		return b.Annual, true
	case TypeSick:
		return b.Sick, true
	case TypePersonal:
		return b.Personal, true
	case TypeEmergency:
		return b.Emergency, true
	}
	return decimal.Zero, false
}

// with returns a copy of b with the counter for t replaced.
func (b Balances) with(t LeaveType, v decimal.Decimal) Balances {
	v = roundDays(v)
	switch t {
	case TypeAnnual:
		b.Annual = v
	case TypeSick:
		b.Sick = v
	case TypePersonal:
		b.Personal = v
	case TypeEmergency:
		b.Emergency = v
	}
	return b
}

// Total sums all four counters.
func (b Balances) Total() decimal.Decimal {
	return b.Annual.Add(b.Sick).Add(b.Personal).Add(b.Emergency)
}

func (b Balances) Equal(o Balances) bool {
	return b.Annual.Equal(o.Annual) && b.Sick.Equal(o.Sick) &&
		b.Personal.Equal(o.Personal) && b.Emergency.Equal(o.Emergency)
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

// CheckSufficient fails when days exceed the counter for t.
// Exempt types always pass.
func CheckSufficient(b Balances, t LeaveType, days decimal.Decimal) error {
	if t.BalanceExempt() {
		return nil
	}
	available, counted := b.Get(t)
	if !counted {
		return nil
	}
	if days.GreaterThan(available) {
		return &InsufficientBalanceError{Type: t, Available: available, Requested: days}
	}
	return nil
}

// ApplyDebit returns b with days removed from the counter for t.
func ApplyDebit(b Balances, t LeaveType, days decimal.Decimal) (Balances, error) {
	if t.BalanceExempt() {
		return b, nil
	}
	if err := CheckSufficient(b, t, days); err != nil {
		return b, err
	}
	available, counted := b.Get(t)
	if !counted {
		return b, nil
	}
	return b.with(t, available.Sub(days)), nil
}

// ApplyCredit returns b with days added to the counter for t.
func ApplyCredit(b Balances, t LeaveType, days decimal.Decimal) Balances {
	if t.BalanceExempt() {
		return b
	}
	available, counted := b.Get(t)
	if !counted {
		return b
	}
	return b.with(t, available.Add(days))
}

// roundDays keeps half-day granularity (one fractional digit).
func roundDays(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// ValidDays reports whether d is positive with at most one decimal place.
func ValidDays(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(1))
}
