package holidays

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nz"
	"github.com/rickar/cal/v2/th"
	"github.com/rickar/cal/v2/us"
	"github.com/rickar/cal/v2/za"
)

// ErrUnsupportedCountry is returned when the lookup has no calendar for a
// country code. Holidays for such countries, including the default LK,
// are entered by hand through POST /public-holidays.
var ErrUnsupportedCountry = errors.New("no holiday calendar for country")

// auNational holds the holidays observed in every Australian state.
var auNational = []*cal.Holiday{
	au.NewYear,
	au.AustraliaDay,
	au.GoodFriday,
	au.EasterMonday,
	au.AnzacDay,
	au.ChristmasDay,
	au.BoxingDay,
}

// Country is a code/name pair advertised by GET /public-holidays/countries.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Entry is one holiday produced by a Lookup.
type Entry struct {
	Name string
	Date time.Time
}

// Lookup generates holidays for a country and year.
type Lookup interface {
	Countries() []Country
	Holidays(country string, year int) ([]Entry, error)
}

type calendar struct {
	name     string
	holidays []*cal.Holiday
}

// CalendarLookup computes holidays from rule-based calendars.
type CalendarLookup struct {
	calendars map[string]calendar
}

func NewCalendarLookup() *CalendarLookup {
	return &CalendarLookup{calendars: map[string]calendar{
		"AU": {"Australia", auNational},
		"CA": {"Canada", ca.Holidays},
		"DE": {"Germany", de.Holidays},
		"FR": {"France", fr.Holidays},
		"GB": {"United Kingdom", gb.Holidays},
		"JP": {"Japan", jp.Holidays},
		"NZ": {"New Zealand", nz.Holidays},
		"TH": {"Thailand", th.Holidays},
		"US": {"United States", us.Holidays},
		"ZA": {"South Africa", za.Holidays},
	}}
}

// Supports reports whether l has a calendar for country.
func Supports(l Lookup, country string) bool {
	country = strings.ToUpper(country)
	for _, c := range l.Countries() {
		if c.Code == country {
			return true
		}
	}
	return false
}

func (l *CalendarLookup) Countries() []Country {
	out := make([]Country, 0, len(l.calendars))
	for code, c := range l.calendars {
		out = append(out, Country{Code: code, Name: c.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Holidays returns the observed date of every holiday in year, sorted.
func (l *CalendarLookup) Holidays(country string, year int) ([]Entry, error) {
	c, ok := l.calendars[strings.ToUpper(country)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCountry, country)
	}

	var out []Entry
	for _, h := range c.holidays {
		actual, observed := h.Calc(year)
		if observed.IsZero() {
			observed = actual
		}
		if observed.IsZero() || observed.Year() != year {
			continue
		}
		out = append(out, Entry{Name: h.Name, Date: dateOf(observed)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
