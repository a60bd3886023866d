/*
store.go - Persistence and collaborator interfaces

PURPOSE:
  Defines what the core needs from the outside world:
  - Store / TxStore:  employees (with balances), requests, grants
  - HolidayProvider:  holiday dates for day counting
  - Notifier:         fire-and-forget notifications

LOOKUP CONTRACT:
  Get* methods return a NotFound error (ErrEmployeeNotFound,
  ErrRequestNotFound, ErrGrantNotFound) when the row does not exist.

TRANSACTIONS:
  WithTx runs fn against a Store bound to one database transaction.
  Approval loads the request, debits the balance and saves both inside
  one WithTx call; if fn errors nothing is written.

IMPLEMENTATIONS:
  - store/sqlite:   SQLite (default)
  - store/postgres: PostgreSQL via pgx, row locks on load-for-update
  - leave/store:    in-memory, for tests

SEE ALSO:
  - service.go: the only consumer inside this package
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	// Employees
	CreateEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	SaveBalances(ctx context.Context, id EmployeeID, b Balances) error

	// Requests
	SaveRequest(ctx context.Context, r Request) error
	GetRequest(ctx context.Context, id RequestID) (*Request, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
	DeleteRequest(ctx context.Context, id RequestID) error

	// Paid-leave grants
	SaveGrant(ctx context.Context, g Grant) error
	GetGrant(ctx context.Context, id GrantID) (*Grant, error)
	ListGrants(ctx context.Context, filter GrantFilter) ([]Grant, error)
	DeleteGrant(ctx context.Context, id GrantID) error
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// HolidayProvider supplies holiday dates in [start, end] for a country.
// An empty country means every country.
type HolidayProvider interface {
	HolidaysInRange(ctx context.Context, start, end time.Time, country string) ([]time.Time, error)
}

// NoHolidays is a HolidayProvider with an empty calendar.
type NoHolidays struct{}

func (NoHolidays) HolidaysInRange(context.Context, time.Time, time.Time, string) ([]time.Time, error) {
	return nil, nil
}

// Notifier is informed after a change is committed. Methods have no
// error result: delivery problems are the notifier's to log.
type Notifier interface {
	RequestCreated(ctx context.Context, r Request, employee Employee)
	RequestDecided(ctx context.Context, r Request, employee Employee)
	PaidLeaveGranted(ctx context.Context, g Grant, employee Employee)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) RequestCreated(context.Context, Request, Employee) {}
func (NopNotifier) RequestDecided(context.Context, Request, Employee) {}
func (NopNotifier) PaidLeaveGranted(context.Context, Grant, Employee) {}
