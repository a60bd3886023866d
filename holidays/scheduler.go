/*
scheduler.go - Periodic holiday import

PURPOSE:
  Keeps the holiday calendar populated without an operator calling
  /public-holidays/fetch. On each tick, imports the current and next
  year for every configured country.

CONFIGURATION:
  - Countries:     country codes to import (HOLIDAY_SYNC_COUNTRIES)
  - CheckInterval: how often to run (HOLIDAY_SYNC_INTERVAL, default 24h)
  - Enabled:       false when no countries are configured

  Countries without a lookup calendar are dropped once on Start with a
  warning; their holidays are maintained by hand.

USAGE:
  scheduler := holidays.NewScheduler(svc, []string{"US", "GB"})
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package holidays

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs FetchAndSave in the background.
type Scheduler struct {
	Service       *Service
	Countries     []string
	CheckInterval time.Duration
	Enabled       bool
	Log           logrus.FieldLogger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(svc *Service, countries []string) *Scheduler {
	return &Scheduler{
		Service:       svc,
		Countries:     countries,
		CheckInterval: 24 * time.Hour,
		Enabled:       len(countries) > 0,
		Log:           logrus.WithField("component", "holiday-scheduler"),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler. The first import runs immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Log.Info("disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.Countries = s.importable()
	if len(s.Countries) == 0 {
		s.Log.Warn("no importable countries, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	s.Log.WithField("interval", s.CheckInterval).Info("started")
}

// Stop stops the scheduler and waits for a running import to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Log.Info("stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.RunNow(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) importable() []string {
	var out []string
	for _, c := range s.Countries {
		if !Supports(s.Service.Lookup, c) {
			s.Log.WithField("country", c).Warn("no holiday calendar, country is manual-entry only")
			continue
		}
		out = append(out, strings.ToUpper(c))
	}
	return out
}

// RunNow imports current and next year for every country and returns the
// number of holidays created.
func (s *Scheduler) RunNow(ctx context.Context) int {
	year := s.Service.Now().Year()
	created := 0
	for _, country := range s.Countries {
		for _, y := range []int{year, year + 1} {
			saved, err := s.Service.FetchAndSave(ctx, country, y)
			created += len(saved)
			if err != nil {
				entry := s.Log.WithError(err).WithFields(logrus.Fields{"country": country, "year": y})
				if errors.Is(err, ErrUnsupportedCountry) {
					entry.Warn("skipping country")
					break
				}
				entry.Error("holiday import failed")
			}
		}
	}
	return created
}
