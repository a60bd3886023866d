/*
Package leave provides the leave-management core.

PURPOSE:
  Sizing, validating and moving leave requests through their lifecycle
  while keeping per-employee balances consistent. Everything outside this
  package (HTTP, SQL, email, reports) talks to it through the Store,
  HolidayProvider and Notifier interfaces.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType:  category of absence (annual, sick, maternity, ...)
  - Duration:   full day or half day (morning/afternoon)
  - Status:     pending, approved, rejected, cancelled
  - Role/Actor: who is performing an operation
  - Employee:   identity plus the four balance counters
  - Request:    a single leave request

DESIGN PRINCIPLES:
  1. Precision: day amounts are decimal.Decimal with one fractional digit
  2. Immutability: Balances is a value; ledger functions return new values
  3. Explicit lifecycle: status changes go through lifecycle.go only

SEE ALSO:
  - days.go:      chargeable day computation
  - balance.go:   balance ledger
  - lifecycle.go: transition table
  - service.go:   orchestration over Store/HolidayProvider/Notifier
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

type LeaveType string

const (
	TypeAnnual    LeaveType = "annual"
	TypeSick      LeaveType = "sick"
	TypeMaternity LeaveType = "maternity"
	TypePaternity LeaveType = "paternity"
	TypeEmergency LeaveType = "emergency"
	TypePersonal  LeaveType = "personal"
)

// LeaveTypes lists every leave type in display order.
var LeaveTypes = []LeaveType{TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeEmergency, TypePersonal}

func (t LeaveType) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeEmergency, TypePersonal:
		return true
	}
	return false
}

// BalanceExempt reports whether the type is tracked without a counter.
// Exempt requests are never checked against or debited from a balance.
func (t LeaveType) BalanceExempt() bool {
	return t == TypeMaternity || t == TypePaternity
}

// =============================================================================
// DURATION MODE
// =============================================================================

type Duration string

const (
	DurationFullDay       Duration = "full_day"
	DurationHalfMorning   Duration = "half_day_morning"
	DurationHalfAfternoon Duration = "half_day_afternoon"
)

func (d Duration) Valid() bool {
	return d == DurationFullDay || d == DurationHalfMorning || d == DurationHalfAfternoon
}

func (d Duration) IsHalfDay() bool {
	return d == DurationHalfMorning || d == DurationHalfAfternoon
}

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// =============================================================================
// ACTORS
// =============================================================================

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

// Privileged roles may act on other employees' requests.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

type EmployeeID string
type RequestID string
type GrantID string

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   EmployeeID
	Role Role
}

func (a Actor) Privileged() bool { return a.Role.Privileged() }

// Owns reports whether the actor is the given employee.
func (a Actor) Owns(id EmployeeID) bool { return a.ID == id }

// =============================================================================
// EMPLOYEE
// =============================================================================

type Employee struct {
	ID                 EmployeeID
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	Balances           Balances
	EmailNotifications bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// =============================================================================
// REQUEST
// =============================================================================

type Request struct {
	ID         RequestID
	EmployeeID EmployeeID
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Duration   Duration
	TotalDays  decimal.Decimal
	Reason     string
	Status     Status

	ApprovedBy       EmployeeID // set on any decision out of pending
	ApprovedAt       *time.Time
	ApprovalComments string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestFilter narrows request listings. Zero values mean "any".
type RequestFilter struct {
	EmployeeID  EmployeeID
	Status      Status
	Type        LeaveType
	From        *time.Time // start_date >= From
	To          *time.Time // end_date <= To
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Matches applies the filter in memory.
func (f RequestFilter) Matches(r Request) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.From != nil && r.StartDate.Before(*f.From) {
		return false
	}
	if f.To != nil && r.EndDate.After(*f.To) {
		return false
	}
	if f.CreatedFrom != nil && r.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && r.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Roles []Role
}

func (f EmployeeFilter) Matches(e Employee) bool {
	if len(f.Roles) == 0 {
		return true
	}
	for _, r := range f.Roles {
		if e.Role == r {
			return true
		}
	}
	return false
}

// =============================================================================
// DATES
// =============================================================================

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD or RFC3339 string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}
