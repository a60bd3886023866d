/*
Package holidays manages the public-holiday calendar.

PURPOSE:
  Owns holiday records (manual CRUD and imports from a Lookup) and serves
  them to the leave core as a leave.HolidayProvider. Only active holidays
  reduce chargeable days.

KEY CONCEPTS:
  - Service:   CRUD, FetchAndSave import, HolidaysInRange provider
  - Lookup:    rule-based calendars per country (lookup.go)
  - Scheduler: periodic import of current and next year (scheduler.go)

DEFAULT COUNTRY:
  LK. The lookup has no LK calendar, so LK holidays are manual-entry
  only; FetchAndSave reports ErrUnsupportedCountry for it.

IMPORT RULE:
  FetchAndSave skips any lookup entry whose (date, country) already has a
  record, active or not, so manual edits and deactivations survive a
  re-import.
*/
package holidays

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/leave"
)

type Service struct {
	Store          leave.HolidayStore
	Lookup         Lookup
	DefaultCountry string
	Log            logrus.FieldLogger

	Now   func() time.Time
	NewID func() string
}

func NewService(store leave.HolidayStore, lookup Lookup, defaultCountry string) *Service {
	if defaultCountry == "" {
		defaultCountry = "LK"
	}
	return &Service{
		Store:          store,
		Lookup:         lookup,
		DefaultCountry: strings.ToUpper(defaultCountry),
		Log:            logrus.StandardLogger(),
		Now:            func() time.Time { return time.Now().UTC() },
		NewID:          uuid.NewString,
	}
}

// HolidaysInRange implements leave.HolidayProvider.
func (s *Service) HolidaysInRange(ctx context.Context, start, end time.Time, country string) ([]time.Time, error) {
	from, to := leave.DateOnly(start), leave.DateOnly(end)
	if to.Before(from) {
		from, to = to, from
	}
	hs, err := s.Store.ListHolidays(ctx, leave.HolidayFilter{
		Country:    strings.ToUpper(country),
		From:       &from,
		To:         &to,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(hs))
	for i, h := range hs {
		dates[i] = h.Date
	}
	return dates, nil
}

// List returns active holidays, optionally narrowed by country and year.
func (s *Service) List(ctx context.Context, country string, year int) ([]leave.Holiday, error) {
	return s.Store.ListHolidays(ctx, leave.HolidayFilter{
		Country:    strings.ToUpper(country),
		Year:       year,
		ActiveOnly: true,
	})
}

func (s *Service) Get(ctx context.Context, id leave.HolidayID) (*leave.Holiday, error) {
	return s.Store.GetHoliday(ctx, id)
}

type CreateCommand struct {
	Name        string
	Date        time.Time
	Description string
	Country     string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*leave.Holiday, error) {
	if strings.TrimSpace(cmd.Name) == "" || cmd.Date.IsZero() {
		return nil, leave.ErrInvalidInput
	}
	country := strings.ToUpper(cmd.Country)
	if country == "" {
		country = s.DefaultCountry
	}

	now := s.Now()
	h := leave.Holiday{
		ID:          leave.HolidayID(s.NewID()),
		Name:        cmd.Name,
		Date:        leave.DateOnly(cmd.Date),
		Description: cmd.Description,
		Country:     country,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.SaveHoliday(ctx, h); err != nil {
		return nil, err
	}
	return &h, nil
}

type UpdateCommand struct {
	Name        *string
	Date        *time.Time
	Description *string
	Active      *bool
}

func (s *Service) Update(ctx context.Context, id leave.HolidayID, cmd UpdateCommand) (*leave.Holiday, error) {
	h, err := s.Store.GetHoliday(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil && *cmd.Name != "" {
		h.Name = *cmd.Name
	}
	if cmd.Date != nil && !cmd.Date.IsZero() {
		h.Date = leave.DateOnly(*cmd.Date)
	}
	if cmd.Description != nil {
		h.Description = *cmd.Description
	}
	if cmd.Active != nil {
		h.Active = *cmd.Active
	}
	h.UpdatedAt = s.Now()
	if err := s.Store.SaveHoliday(ctx, *h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id leave.HolidayID) error {
	if _, err := s.Store.GetHoliday(ctx, id); err != nil {
		return err
	}
	return s.Store.DeleteHoliday(ctx, id)
}

func (s *Service) Countries() []Country {
	return s.Lookup.Countries()
}

// FetchAndSave imports the lookup's holidays for country and year and
// returns only the records it created.
func (s *Service) FetchAndSave(ctx context.Context, country string, year int) ([]leave.Holiday, error) {
	country = strings.ToUpper(country)
	entries, err := s.Lookup.Holidays(country, year)
	if err != nil {
		return nil, err
	}

	var saved []leave.Holiday
	for _, e := range entries {
		exists, err := s.Store.HolidayExists(ctx, e.Date, country)
		if err != nil {
			return saved, err
		}
		if exists {
			continue
		}
		now := s.Now()
		h := leave.Holiday{
			ID:          leave.HolidayID(s.NewID()),
			Name:        e.Name,
			Date:        e.Date,
			Description: "public",
			Country:     country,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Store.SaveHoliday(ctx, h); err != nil {
			return saved, err
		}
		saved = append(saved, h)
	}

	s.Log.WithFields(logrus.Fields{
		"country": country,
		"year":    year,
		"found":   len(entries),
		"created": len(saved),
	}).Info("holidays imported")
	return saved, nil
}
