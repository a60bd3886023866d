package factory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
)

func TestDefault_MatchesBuiltInPolicy(t *testing.T) {
	p := NewPolicyFactory().Default()
	want := leave.DefaultPolicy()

	assert.True(t, p.DefaultBalances.Equal(want.DefaultBalances))
	assert.False(t, p.RefundOnCancel)
	assert.Equal(t, "LK", p.HolidayCountry)
}

func TestParsePolicy_PartialOverrides(t *testing.T) {
	p, err := NewPolicyFactory().ParsePolicy(`{
		"default_balances": {"annual": 20.5, "sick": "7"},
		"refund_on_cancel": true,
		"holiday_country": "gb"
	}`)
	require.NoError(t, err)

	assert.True(t, p.DefaultBalances.Annual.Equal(decimal.RequireFromString("20.5")))
	assert.True(t, p.DefaultBalances.Sick.Equal(decimal.NewFromInt(7)))
	assert.True(t, p.DefaultBalances.Personal.Equal(decimal.NewFromInt(3)), "unset counters keep defaults")
	assert.True(t, p.RefundOnCancel)
	assert.Equal(t, "GB", p.HolidayCountry)
}

func TestParsePolicy_EmptyCountryMeansAll(t *testing.T) {
	p, err := NewPolicyFactory().ParsePolicy(`{"holiday_country": ""}`)
	require.NoError(t, err)
	assert.Equal(t, "", p.HolidayCountry)
}

func TestParsePolicy_Invalid(t *testing.T) {
	f := NewPolicyFactory()
	for name, js := range map[string]string{
		"malformed":    `{`,
		"negative":     `{"default_balances": {"annual": -1}}`,
		"quarter day":  `{"default_balances": {"sick": 2.25}}`,
		"long country": `{"holiday_country": "LKA"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.ParsePolicy(js)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_RoundTripsToJSON(t *testing.T) {
	f := NewPolicyFactory()
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_balances": {"emergency": 2}, "holiday_country": "US"}`), 0o600))

	p, err := f.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, p.DefaultBalances.Emergency.Equal(decimal.NewFromInt(2)))

	again, err := f.FromJSON(f.ToJSON(p))
	require.NoError(t, err)
	assert.True(t, again.DefaultBalances.Equal(p.DefaultBalances))
	assert.Equal(t, "US", again.HolidayCountry)

	_, err = f.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
