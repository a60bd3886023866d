/*
service.go - Leave request orchestration

PURPOSE:
  Runs every leave operation end to end: authorization, day counting,
  balance checks, lifecycle transitions, persistence and notification.

OPERATIONS:
  Requests:  Create, Get, List, Approve, Reject, Cancel, Edit, Delete
  Balances:  Balances
  Employees: RegisterEmployee, ListEmployees, GetEmployee
  Grants:    GrantPaidLeave, GetGrant, ListGrants, UpdateGrant,
             DeleteGrant, GrantStats

ATOMICITY:
  Approve/Reject/Cancel/Edit and grants run inside one Store.WithTx: the
  request is re-read there, and the request row and the balance row are
  written together or not at all. The holiday provider is consulted
  outside transactions.

NOTIFICATIONS:
  Sent after commit. Notifier methods cannot fail the operation.

AUTHORIZATION:
  Privileged (manager/admin) actors act on anyone's requests. Employees
  may read, cancel and edit only their own, and may not change status
  through Edit. Delete is admin only.

SEE ALSO:
  - lifecycle.go: legal transitions
  - balance.go:   ledger math
  - store.go:     collaborator interfaces
*/
package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service holds the collaborators used by every operation.
type Service struct {
	Store    TxStore
	Holidays HolidayProvider
	Notifier Notifier
	Policy   Policy
	Log      logrus.FieldLogger

	Now   func() time.Time
	NewID func() string
}

// NewService wires a Service. Nil holidays or notifier fall back to
// NoHolidays and NopNotifier.
func NewService(store TxStore, holidays HolidayProvider, notifier Notifier, policy Policy) *Service {
	if holidays == nil {
		holidays = NoHolidays{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		Store:    store,
		Holidays: holidays,
		Notifier: notifier,
		Policy:   policy,
		Log:      logrus.StandardLogger(),
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

type CreateCommand struct {
	EmployeeID EmployeeID
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Duration   Duration
	Reason     string
}

// EditCommand is a typed partial update. Details apply only while the
// request is pending; Status routes through the lifecycle.
type EditCommand struct {
	Details *DetailsChange
	Status  *StatusChange
}

type DetailsChange struct {
	Type      *LeaveType
	StartDate *time.Time
	EndDate   *time.Time
	Duration  *Duration
	Reason    *string
}

func (d DetailsChange) resizes() bool {
	return d.Type != nil || d.StartDate != nil || d.EndDate != nil || d.Duration != nil
}

type StatusChange struct {
	Status   Status
	Comments string
}

type NewEmployee struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

type GrantCommand struct {
	EmployeeID        EmployeeID
	Type              GrantType
	Days              decimal.Decimal
	Reason            string
	Notes             string
	DeductFromBalance bool
}

type GrantUpdate struct {
	Reason *string
	Notes  *string
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// RegisterEmployee creates an employee seeded with the policy balances.
func (s *Service) RegisterEmployee(ctx context.Context, n NewEmployee) (*Employee, error) {
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	if n.Name == "" || n.Email == "" {
		return nil, ErrInvalidInput
	}
	if n.Role == "" {
		n.Role = RoleEmployee
	}
	if !n.Role.Valid() {
		return nil, ErrInvalidInput
	}

	existing, err := s.Store.GetEmployeeByEmail(ctx, n.Email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	now := s.Now()
	e := Employee{
		ID:                 EmployeeID(s.NewID()),
		Name:               n.Name,
		Email:              n.Email,
		PasswordHash:       n.PasswordHash,
		Role:               n.Role,
		Balances:           s.Policy.DefaultBalances,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Store.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) GetEmployee(ctx context.Context, actor Actor, id EmployeeID) (*Employee, error) {
	if !actor.Privileged() && !actor.Owns(id) {
		return nil, forbidden("employees may only view their own profile")
	}
	return s.Store.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, actor Actor, filter EmployeeFilter) ([]Employee, error) {
	if !actor.Privileged() {
		return nil, forbidden("listing employees requires manager or admin role")
	}
	return s.Store.ListEmployees(ctx, filter)
}

// Balances returns an employee's current counters.
func (s *Service) Balances(ctx context.Context, actor Actor, id EmployeeID) (Balances, error) {
	e, err := s.GetEmployee(ctx, actor, id)
	if err != nil {
		return Balances{}, err
	}
	return e.Balances, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

// Create sizes, validates and stores a new pending request.
// Nothing is written when the balance is insufficient.
func (s *Service) Create(ctx context.Context, actor Actor, cmd CreateCommand) (*Request, error) {
	if cmd.EmployeeID == "" {
		cmd.EmployeeID = actor.ID
	}
	if !actor.Privileged() && !actor.Owns(cmd.EmployeeID) {
		return nil, forbidden("employees may only request leave for themselves")
	}

	employee, err := s.Store.GetEmployee(ctx, cmd.EmployeeID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	r := Request{
		ID:         RequestID(s.NewID()),
		EmployeeID: cmd.EmployeeID,
		Type:       cmd.Type,
		StartDate:  DateOnly(cmd.StartDate),
		EndDate:    DateOnly(cmd.EndDate),
		Duration:   cmd.Duration,
		Reason:     cmd.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if r.Duration == "" {
		r.Duration = DurationFullDay
	}
	if err := validateShape(r); err != nil {
		return nil, err
	}

	if r.TotalDays, err = s.size(ctx, r); err != nil {
		return nil, err
	}
	if err := CheckSufficient(employee.Balances, r.Type, r.TotalDays); err != nil {
		return nil, err
	}

	if err := s.Store.SaveRequest(ctx, r); err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"request_id": r.ID,
		"employee":   r.EmployeeID,
		"type":       r.Type,
		"days":       r.TotalDays.String(),
	}).Info("leave request created")
	s.Notifier.RequestCreated(ctx, r, *employee)
	return &r, nil
}

// Get returns one request. Employees may only read their own.
func (s *Service) Get(ctx context.Context, actor Actor, id RequestID) (*Request, error) {
	r, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() && !actor.Owns(r.EmployeeID) {
		return nil, forbidden("employees may only view their own requests")
	}
	return r, nil
}

// List returns requests matching filter. Employees only see their own.
func (s *Service) List(ctx context.Context, actor Actor, filter RequestFilter) ([]Request, error) {
	if !actor.Privileged() {
		filter.EmployeeID = actor.ID
	}
	return s.Store.ListRequests(ctx, filter)
}

// Approve moves a pending request to approved and debits the balance.
func (s *Service) Approve(ctx context.Context, actor Actor, id RequestID, comments string) (*Request, error) {
	return s.decide(ctx, actor, id, ActionApprove, comments)
}

// Reject moves a pending request to rejected. Balances are untouched.
func (s *Service) Reject(ctx context.Context, actor Actor, id RequestID, comments string) (*Request, error) {
	return s.decide(ctx, actor, id, ActionReject, comments)
}

func (s *Service) decide(ctx context.Context, actor Actor, id RequestID, action Action, comments string) (*Request, error) {
	if !actor.Privileged() {
		return nil, forbidden("only managers and admins may " + string(action) + " requests")
	}

	var result Request
	var employee Employee
	err := s.Store.WithTx(ctx, func(tx Store) error {
		r, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		to, err := Transition(r.Status, action)
		if err != nil {
			return err
		}
		e, err := tx.GetEmployee(ctx, r.EmployeeID)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, r, e, action, to, actor, comments); err != nil {
			return err
		}
		result, employee = *r, *e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logDecision(result, actor)
	s.Notifier.RequestDecided(ctx, result, employee)
	return &result, nil
}

// Cancel moves a request to cancelled from any other state. Approved
// requests are refunded only when the policy says so.
func (s *Service) Cancel(ctx context.Context, actor Actor, id RequestID) (*Request, error) {
	var result Request
	err := s.Store.WithTx(ctx, func(tx Store) error {
		r, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if !actor.Privileged() && !actor.Owns(r.EmployeeID) {
			return forbidden("employees may only cancel their own requests")
		}
		to, err := Transition(r.Status, ActionCancel)
		if err != nil {
			return err
		}
		e, err := tx.GetEmployee(ctx, r.EmployeeID)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, r, e, ActionCancel, to, actor, ""); err != nil {
			return err
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logDecision(result, actor)
	return &result, nil
}

// Edit applies a typed update.
//
// Detail changes need a pending request and resize it against the
// current balance. A status change needs a privileged actor and runs the
// side effects of the matching transition, even from a non-pending state.
// The request is re-read, checked and saved inside one transaction; if a
// concurrent edit moved the dates after holidays were looked up, Edit
// starts over, and gives up with ErrConflict after editAttempts tries.
func (s *Service) Edit(ctx context.Context, actor Actor, id RequestID, cmd EditCommand) (*Request, error) {
	for attempt := 0; attempt < editAttempts; attempt++ {
		r, err := s.edit(ctx, actor, id, cmd)
		if !errors.Is(err, errStaleSpan) {
			return r, err
		}
	}
	return nil, ErrConflict
}

const editAttempts = 3

var errStaleSpan = errors.New("request span changed during edit")

func (s *Service) edit(ctx context.Context, actor Actor, id RequestID, cmd EditCommand) (*Request, error) {
	r, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() && !actor.Owns(r.EmployeeID) {
		return nil, forbidden("employees may only edit their own requests")
	}
	if cmd.Status != nil && !actor.Privileged() {
		return nil, forbidden("only managers and admins may change request status")
	}
	if cmd.Details == nil && cmd.Status == nil {
		return nil, ErrInvalidInput
	}
	if cmd.Status != nil && !cmd.Status.Status.Valid() {
		return nil, ErrInvalidInput
	}

	// Holidays for the edited span are read before the transaction.
	resize := cmd.Details != nil && cmd.Details.resizes()
	var holidays []time.Time
	if cmd.Details != nil {
		if _, err := Transition(r.Status, ActionEdit); err != nil {
			return nil, err
		}
		cmd.Details.applyTo(r)
		if resize {
			if err := validateShape(*r); err != nil {
				return nil, err
			}
			if holidays, err = s.holidaysFor(ctx, *r); err != nil {
				return nil, err
			}
		}
	}

	var result Request
	var employee Employee
	err = s.Store.WithTx(ctx, func(tx Store) error {
		current, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if cmd.Details != nil {
			if _, err := Transition(current.Status, ActionEdit); err != nil {
				return err
			}
			cmd.Details.applyTo(current)
			if resize {
				if !sameSpan(*current, *r) {
					return errStaleSpan
				}
				current.TotalDays = ComputeDays(current.StartDate, current.EndDate, current.Duration, holidays)
			}
		}

		e, err := tx.GetEmployee(ctx, current.EmployeeID)
		if err != nil {
			return err
		}
		if resize {
			if err := CheckSufficient(e.Balances, current.Type, current.TotalDays); err != nil {
				return err
			}
		}

		if cmd.Status == nil {
			current.UpdatedAt = s.Now()
			if err := tx.SaveRequest(ctx, *current); err != nil {
				return err
			}
			result = *current
			return nil
		}

		target := cmd.Status.Status
		action, err := Override(current.Status, target)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, current, e, action, target, actor, cmd.Status.Comments); err != nil {
			return err
		}
		result, employee = *current, *e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cmd.Status == nil {
		return &result, nil
	}
	s.logDecision(result, actor)
	if result.Status == StatusApproved || result.Status == StatusRejected {
		s.Notifier.RequestDecided(ctx, result, employee)
	}
	return &result, nil
}

// Delete removes a request outright. Admin only; balances are untouched.
func (s *Service) Delete(ctx context.Context, actor Actor, id RequestID) error {
	if actor.Role != RoleAdmin {
		return forbidden("only admins may delete requests")
	}
	if _, err := s.Store.GetRequest(ctx, id); err != nil {
		return err
	}
	return s.Store.DeleteRequest(ctx, id)
}

// apply runs the side effects of action, sets the new status and saves.
// r and e are updated in place; tx is the enclosing transaction.
func (s *Service) apply(ctx context.Context, tx Store, r *Request, e *Employee, action Action, to Status, actor Actor, comments string) error {
	from := r.Status
	now := s.Now()

	switch action {
	case ActionApprove:
		b, err := ApplyDebit(e.Balances, r.Type, r.TotalDays)
		if err != nil {
			return err
		}
		if err := s.saveBalances(ctx, tx, e, b); err != nil {
			return err
		}
	case ActionCancel:
		if from == StatusApproved && s.Policy.RefundOnCancel {
			b := ApplyCredit(e.Balances, r.Type, r.TotalDays)
			if err := s.saveBalances(ctx, tx, e, b); err != nil {
				return err
			}
		}
	}

	r.Status = to
	r.UpdatedAt = now
	if action == ActionApprove || action == ActionReject {
		r.ApprovedBy = actor.ID
		r.ApprovedAt = &now
		if comments != "" {
			r.ApprovalComments = comments
		}
	}
	return tx.SaveRequest(ctx, *r)
}

func (s *Service) saveBalances(ctx context.Context, tx Store, e *Employee, b Balances) error {
	if b.Equal(e.Balances) {
		return nil
	}
	if err := tx.SaveBalances(ctx, e.ID, b); err != nil {
		return err
	}
	e.Balances = b
	return nil
}

// applyTo copies the set fields of d onto r.
func (d DetailsChange) applyTo(r *Request) {
	if d.Type != nil {
		r.Type = *d.Type
	}
	if d.StartDate != nil {
		r.StartDate = DateOnly(*d.StartDate)
	}
	if d.EndDate != nil {
		r.EndDate = DateOnly(*d.EndDate)
	}
	if d.Duration != nil {
		r.Duration = *d.Duration
	}
	if d.Reason != nil {
		r.Reason = *d.Reason
	}
}

func sameSpan(a, b Request) bool {
	return a.StartDate.Equal(b.StartDate) && a.EndDate.Equal(b.EndDate) && a.Duration == b.Duration
}

// size computes total days using the policy holiday calendar.
func (s *Service) size(ctx context.Context, r Request) (decimal.Decimal, error) {
	holidays, err := s.holidaysFor(ctx, r)
	if err != nil {
		return decimal.Zero, err
	}
	return ComputeDays(r.StartDate, r.EndDate, r.Duration, holidays), nil
}

// holidaysFor returns the holidays inside r's span. Half days ignore them.
func (s *Service) holidaysFor(ctx context.Context, r Request) ([]time.Time, error) {
	if r.Duration.IsHalfDay() {
		return nil, nil
	}
	return s.Holidays.HolidaysInRange(ctx, r.StartDate, r.EndDate, s.Policy.HolidayCountry)
}

func validateShape(r Request) error {
	if !r.Type.Valid() {
		return ErrInvalidLeaveType
	}
	if !r.Duration.Valid() {
		return ErrInvalidDuration
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrInvalidInput
	}
	if r.EndDate.Before(r.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

func (s *Service) logDecision(r Request, actor Actor) {
	s.Log.WithFields(logrus.Fields{
		"request_id": r.ID,
		"employee":   r.EmployeeID,
		"status":     r.Status,
		"actor":      actor.ID,
	}).Info("leave request status changed")
}

// =============================================================================
// PAID-LEAVE GRANTS
// =============================================================================

// GrantPaidLeave records a grant and credits annual leave unless the
// grant is flagged DeductFromBalance.
func (s *Service) GrantPaidLeave(ctx context.Context, actor Actor, cmd GrantCommand) (*Grant, error) {
	if !actor.Privileged() {
		return nil, forbidden("only managers and admins may grant paid leave")
	}
	if !cmd.Type.Valid() {
		return nil, ErrInvalidGrantType
	}
	if !ValidDays(cmd.Days) {
		return nil, ErrInvalidDays
	}

	now := s.Now()
	g := Grant{
		ID:                GrantID(s.NewID()),
		EmployeeID:        cmd.EmployeeID,
		GrantedBy:         actor.ID,
		Type:              cmd.Type,
		Days:              cmd.Days,
		Reason:            cmd.Reason,
		Notes:             cmd.Notes,
		DeductFromBalance: cmd.DeductFromBalance,
		GrantedAt:         now,
		UpdatedAt:         now,
	}

	var employee Employee
	err := s.Store.WithTx(ctx, func(tx Store) error {
		e, err := tx.GetEmployee(ctx, cmd.EmployeeID)
		if err != nil {
			return err
		}
		if err := s.saveBalances(ctx, tx, e, ApplyGrant(e.Balances, g)); err != nil {
			return err
		}
		if err := tx.SaveGrant(ctx, g); err != nil {
			return err
		}
		employee = *e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"grant_id": g.ID,
		"employee": g.EmployeeID,
		"days":     g.Days.String(),
		"deduct":   g.DeductFromBalance,
	}).Info("paid leave granted")
	s.Notifier.PaidLeaveGranted(ctx, g, employee)
	return &g, nil
}

func (s *Service) GetGrant(ctx context.Context, actor Actor, id GrantID) (*Grant, error) {
	g, err := s.Store.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() && !actor.Owns(g.EmployeeID) {
		return nil, forbidden("employees may only view their own paid leave")
	}
	return g, nil
}

func (s *Service) ListGrants(ctx context.Context, actor Actor, filter GrantFilter) ([]Grant, error) {
	if !actor.Privileged() {
		filter.EmployeeID = actor.ID
	}
	return s.Store.ListGrants(ctx, filter)
}

// UpdateGrant edits the free-text fields. Admins or the granter only.
func (s *Service) UpdateGrant(ctx context.Context, actor Actor, id GrantID, u GrantUpdate) (*Grant, error) {
	g, err := s.Store.GetGrant(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleAdmin && g.GrantedBy != actor.ID {
		return nil, forbidden("only admins or the granter may update paid leave")
	}
	if u.Reason != nil {
		g.Reason = *u.Reason
	}
	if u.Notes != nil {
		g.Notes = *u.Notes
	}
	g.UpdatedAt = s.Now()
	if err := s.Store.SaveGrant(ctx, *g); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGrant removes the record. Credited days are not taken back.
func (s *Service) DeleteGrant(ctx context.Context, actor Actor, id GrantID) error {
	g, err := s.Store.GetGrant(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != RoleAdmin && g.GrantedBy != actor.ID {
		return forbidden("only admins or the granter may delete paid leave")
	}
	return s.Store.DeleteGrant(ctx, id)
}

func (s *Service) GrantStats(ctx context.Context, actor Actor, id EmployeeID) (GrantStats, error) {
	if !actor.Privileged() && !actor.Owns(id) {
		return GrantStats{}, forbidden("employees may only view their own paid leave")
	}
	if _, err := s.Store.GetEmployee(ctx, id); err != nil {
		return GrantStats{}, err
	}
	grants, err := s.Store.ListGrants(ctx, GrantFilter{EmployeeID: id})
	if err != nil {
		return GrantStats{}, err
	}
	return SummarizeGrants(grants), nil
}
