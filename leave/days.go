package leave

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var halfDay = decimal.New(5, -1)

// ComputeDays returns the chargeable days for a request.
//
// Half-day modes always count 0.5. Full days count the inclusive span
// between start and end, rounded up to whole days, minus the holidays
// that fall inside [start, end]. The result is never negative.
//
// The span uses the absolute difference, so end before start still
// yields a count; Service.Create rejects that ordering before calling.
func ComputeDays(start, end time.Time, mode Duration, holidays []time.Time) decimal.Decimal {
	if mode.IsHalfDay() {
		return halfDay
	}

	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	span := int64(math.Ceil(float64(diff) / float64(24*time.Hour)))
	days := span + 1

	days -= int64(countHolidaysInRange(start, end, holidays))
	if days < 0 {
		days = 0
	}
	return decimal.NewFromInt(days)
}

// countHolidaysInRange counts distinct holiday dates d with start <= d <= end.
func countHolidaysInRange(start, end time.Time, holidays []time.Time) int {
	from, to := DateOnly(start), DateOnly(end)
	seen := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		d := DateOnly(h)
		if d.Before(from) || d.After(to) {
			continue
		}
		seen[d] = struct{}{}
	}
	return len(seen)
}
