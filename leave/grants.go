package leave

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// GrantType classifies a paid-leave grant.
type GrantType string

const (
	GrantBonus        GrantType = "bonus"
	GrantCompensation GrantType = "compensation"
	GrantAward        GrantType = "award"
	GrantOther        GrantType = "other"
)

var GrantTypes = []GrantType{GrantBonus, GrantCompensation, GrantAward, GrantOther}

func (t GrantType) Valid() bool {
	return slices.Contains(GrantTypes, t)
}

// Grant is extra paid leave given to an employee.
//
// A grant with DeductFromBalance set is recorded only: no counter moves
// when it is granted and nothing deducts it later.
type Grant struct {
	ID                GrantID
	EmployeeID        EmployeeID
	GrantedBy         EmployeeID
	Type              GrantType
	Days              decimal.Decimal
	Reason            string
	Notes             string
	DeductFromBalance bool
	GrantedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyGrant returns b after crediting g. Credits always land on annual.
func ApplyGrant(b Balances, g Grant) Balances {
	if g.DeductFromBalance {
		return b
	}
	return ApplyCredit(b, TypeAnnual, g.Days)
}

// GrantStats summarises an employee's grants.
type GrantStats struct {
	TotalDaysGranted decimal.Decimal
	TotalRecords     int
	TypeBreakdown    []GrantTypeStats
}

type GrantTypeStats struct {
	Type  GrantType
	Days  decimal.Decimal
	Count int
}

// SummarizeGrants builds GrantStats; the breakdown follows first-seen order.
func SummarizeGrants(grants []Grant) GrantStats {
	stats := GrantStats{TotalDaysGranted: decimal.Zero, TotalRecords: len(grants)}
	index := make(map[GrantType]int)
	for _, g := range grants {
		stats.TotalDaysGranted = stats.TotalDaysGranted.Add(g.Days)
		i, ok := index[g.Type]
		if !ok {
			i = len(stats.TypeBreakdown)
			index[g.Type] = i
			stats.TypeBreakdown = append(stats.TypeBreakdown, GrantTypeStats{Type: g.Type, Days: decimal.Zero})
		}
		stats.TypeBreakdown[i].Days = stats.TypeBreakdown[i].Days.Add(g.Days)
		stats.TypeBreakdown[i].Count++
	}
	return stats
}

// GrantFilter narrows grant listings.
type GrantFilter struct {
	EmployeeID EmployeeID
}
