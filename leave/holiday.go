package leave

import (
	"context"
	"time"
)

type HolidayID string

// Holiday is a public holiday. Only active holidays reduce chargeable days.
type Holiday struct {
	ID          HolidayID
	Name        string
	Date        time.Time
	Description string
	Country     string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HolidayFilter narrows holiday listings. Zero values mean "any".
type HolidayFilter struct {
	Country    string
	Year       int
	From       *time.Time
	To         *time.Time
	ActiveOnly bool
}

func (f HolidayFilter) Matches(h Holiday) bool {
	if f.Country != "" && h.Country != f.Country {
		return false
	}
	if f.Year != 0 && h.Date.Year() != f.Year {
		return false
	}
	d := DateOnly(h.Date)
	if f.From != nil && d.Before(DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && d.After(DateOnly(*f.To)) {
		return false
	}
	if f.ActiveOnly && !h.Active {
		return false
	}
	return true
}

// HolidayStore persists public holidays.
type HolidayStore interface {
	SaveHoliday(ctx context.Context, h Holiday) error
	GetHoliday(ctx context.Context, id HolidayID) (*Holiday, error)
	ListHolidays(ctx context.Context, filter HolidayFilter) ([]Holiday, error)
	DeleteHoliday(ctx context.Context, id HolidayID) error

	// HolidayExists checks for a holiday on date in country, active or not.
	HolidayExists(ctx context.Context, date time.Time, country string) (bool, error)
}
