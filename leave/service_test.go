package leave_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type recorder struct {
	mu      sync.Mutex
	created []leave.Request
	decided []leave.Request
	granted []leave.Grant
}

func (r *recorder) RequestCreated(_ context.Context, req leave.Request, _ leave.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, req)
}

func (r *recorder) RequestDecided(_ context.Context, req leave.Request, _ leave.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decided = append(r.decided, req)
}

func (r *recorder) PaidLeaveGranted(_ context.Context, g leave.Grant, _ leave.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.granted = append(r.granted, g)
}

type fixedHolidays []time.Time

func (f fixedHolidays) HolidaysInRange(_ context.Context, start, end time.Time, _ string) ([]time.Time, error) {
	var out []time.Time
	for _, d := range f {
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

// hookHolidays runs before on each lookup, then answers with no holidays.
// It lets a test interleave another operation with an edit in flight.
type hookHolidays struct {
	before func()
}

func (h *hookHolidays) HolidaysInRange(context.Context, time.Time, time.Time, string) ([]time.Time, error) {
	if h.before != nil {
		h.before()
	}
	return nil, nil
}

type fixture struct {
	ctx     context.Context
	svc     *leave.Service
	store   *store.Memory
	notes   *recorder
	alice   leave.Actor
	bob     leave.Actor
	manager leave.Actor
	admin   leave.Actor
	clock   time.Time
}

func newFixture(t *testing.T, holidays leave.HolidayProvider) *fixture {
	t.Helper()

	mem := store.NewMemory()
	notes := &recorder{}
	svc := leave.NewService(mem, holidays, notes, leave.DefaultPolicy())
	logger, _ := test.NewNullLogger()
	svc.Log = logger

	f := &fixture{ctx: context.Background(), svc: svc, store: mem, notes: notes}
	f.clock = time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return f.clock }

	f.alice = f.register(t, "Alice", leave.RoleEmployee)
	f.bob = f.register(t, "Bob", leave.RoleEmployee)
	f.manager = f.register(t, "Maria", leave.RoleManager)
	f.admin = f.register(t, "Ada", leave.RoleAdmin)
	return f
}

func (f *fixture) register(t *testing.T, name string, role leave.Role) leave.Actor {
	t.Helper()
	e, err := f.svc.RegisterEmployee(f.ctx, leave.NewEmployee{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return leave.Actor{ID: e.ID, Role: role}
}

func (f *fixture) balances(t *testing.T, id leave.EmployeeID) leave.Balances {
	t.Helper()
	e, err := f.store.GetEmployee(f.ctx, id)
	require.NoError(t, err)
	return e.Balances
}

func (f *fixture) create(t *testing.T, actor leave.Actor, lt leave.LeaveType, start, end time.Time, mode leave.Duration) *leave.Request {
	t.Helper()
	r, err := f.svc.Create(f.ctx, actor, leave.CreateCommand{
		Type:      lt,
		StartDate: start,
		EndDate:   end,
		Duration:  mode,
		Reason:    "trip",
	})
	require.NoError(t, err)
	return r
}

func june(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func days(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreate_SizesAndPersistsPending(t *testing.T) {
	// GIVEN: Alice with annual balance 25
	// WHEN: She requests annual leave 2024-06-03..05, full day
	// THEN: 3 days, pending, balance untouched until approval
	f := newFixture(t, nil)

	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	assert.Equal(t, leave.StatusPending, r.Status)
	assert.True(t, r.TotalDays.Equal(days("3")), "got %s", r.TotalDays)
	assert.Equal(t, f.alice.ID, r.EmployeeID)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("25")))

	stored, err := f.store.GetRequest(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, stored.Status)
	assert.Len(t, f.notes.created, 1)
}

func TestCreate_HalfDay(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationHalfMorning)
	assert.True(t, r.TotalDays.Equal(days("0.5")))
}

func TestCreate_ExcludesHolidays(t *testing.T) {
	f := newFixture(t, fixedHolidays{june(4)})
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	assert.True(t, r.TotalDays.Equal(days("2")), "got %s", r.TotalDays)
}

func TestCreate_InsufficientBalanceNotPersisted(t *testing.T) {
	// GIVEN: Alice's sick balance is 2.0
	// WHEN: She requests 3 sick days
	// THEN: InsufficientBalance(2.0, 3) and nothing is stored
	f := newFixture(t, nil)
	b := f.balances(t, f.alice.ID)
	b.Sick = days("2")
	require.NoError(t, f.store.SaveBalances(f.ctx, f.alice.ID, b))

	_, err := f.svc.Create(f.ctx, f.alice, leave.CreateCommand{
		Type: leave.TypeSick, StartDate: june(3), EndDate: june(5), Duration: leave.DurationFullDay,
	})

	var ib *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.True(t, ib.Available.Equal(days("2")))
	assert.True(t, ib.Requested.Equal(days("3")))

	reqs, err := f.store.ListRequests(f.ctx, leave.RequestFilter{EmployeeID: f.alice.ID})
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.Empty(t, f.notes.created)
}

func TestCreate_ExemptTypeIgnoresBalance(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeMaternity, june(1), june(30), leave.DurationFullDay)
	assert.True(t, r.TotalDays.Equal(days("30")))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(f.ctx, f.alice, leave.CreateCommand{
		Type: leave.TypeAnnual, StartDate: june(5), EndDate: june(3),
	})
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)

	_, err = f.svc.Create(f.ctx, f.alice, leave.CreateCommand{
		Type: "sabbatical", StartDate: june(3), EndDate: june(3),
	})
	assert.ErrorIs(t, err, leave.ErrInvalidLeaveType)

	_, err = f.svc.Create(f.ctx, f.alice, leave.CreateCommand{
		Type: leave.TypeAnnual, StartDate: june(3), EndDate: june(3), Duration: "quarter_day",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidDuration)
}

func TestCreate_UnknownEmployee(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(f.ctx, f.manager, leave.CreateCommand{
		EmployeeID: "ghost", Type: leave.TypeAnnual, StartDate: june(3), EndDate: june(3),
	})
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
	assert.True(t, leave.IsNotFound(err))
}

func TestCreate_EmployeeCannotFileForOthers(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(f.ctx, f.alice, leave.CreateCommand{
		EmployeeID: f.bob.ID, Type: leave.TypeAnnual, StartDate: june(3), EndDate: june(3),
	})
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

// =============================================================================
// APPROVE / REJECT
// =============================================================================

func TestApprove_DebitsBalance(t *testing.T) {
	// GIVEN: a pending 3-day annual request, balance 25
	// WHEN: the manager approves it
	// THEN: balance 22, approved, approver and timestamp recorded
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	approved, err := f.svc.Approve(f.ctx, f.manager, r.ID, "enjoy")
	require.NoError(t, err)

	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, f.manager.ID, approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, f.clock, *approved.ApprovedAt)
	assert.Equal(t, "enjoy", approved.ApprovalComments)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))
	assert.Len(t, f.notes.decided, 1)
}

func TestApprove_ExemptTypeLeavesBalances(t *testing.T) {
	f := newFixture(t, nil)
	before := f.balances(t, f.alice.ID)
	r := f.create(t, f.alice, leave.TypePaternity, june(3), june(14), leave.DurationFullDay)

	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)
	assert.True(t, f.balances(t, f.alice.ID).Equal(before))
}

func TestApprove_RequiresPrivilege(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)

	_, err := f.svc.Approve(f.ctx, f.alice, r.ID, "")
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestApprove_AfterRejectFails(t *testing.T) {
	// GIVEN: a rejected request
	// WHEN: approve is called
	// THEN: InvalidTransition(rejected, approve); balance unchanged
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	rejected, err := f.svc.Reject(f.ctx, f.manager, r.ID, "busy week")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	assert.Equal(t, f.manager.ID, rejected.ApprovedBy)

	_, err = f.svc.Approve(f.ctx, f.manager, r.ID, "")
	var it *leave.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, leave.StatusRejected, it.From)
	assert.Equal(t, leave.ActionApprove, it.Attempted)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("25")))
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(f.ctx, f.admin, r.ID, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
	_, err = f.svc.Reject(f.ctx, f.admin, r.ID, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))
}

func TestApprove_BalanceDrainedSinceCreationRollsBack(t *testing.T) {
	// GIVEN: two pending 20-day requests against a 25-day balance
	// WHEN: both are approved
	// THEN: the second fails and stays pending
	f := newFixture(t, nil)
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 19)
	first := f.create(t, f.alice, leave.TypeAnnual, start, end, leave.DurationFullDay)
	second := f.create(t, f.alice, leave.TypeAnnual, start.AddDate(0, 1, 0), end.AddDate(0, 1, 0), leave.DurationFullDay)

	_, err := f.svc.Approve(f.ctx, f.manager, first.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(f.ctx, f.manager, second.ID, "")
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	stored, err := f.store.GetRequest(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, stored.Status)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("5")))
}

func TestApprove_UnknownRequest(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Approve(f.ctx, f.manager, "missing", "")
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

// =============================================================================
// CANCEL
// =============================================================================

func TestCancel_OwnPending(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)

	cancelled, err := f.svc.Cancel(f.ctx, f.alice, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(f.ctx, f.alice, r.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition, "already cancelled")
}

func TestCancel_OthersRequestForbidden(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)

	_, err := f.svc.Cancel(f.ctx, f.bob, r.ID)
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.svc.Cancel(f.ctx, f.manager, r.ID)
	assert.NoError(t, err)
}

func TestCancel_ApprovedNoRefundByDefault(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, f.alice, r.ID)
	require.NoError(t, err)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))
}

func TestCancel_ApprovedRefundWhenEnabled(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.Policy.RefundOnCancel = true
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, f.alice, r.ID)
	require.NoError(t, err)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("25")))
}

func TestCancel_RejectedNeverRefunds(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.Policy.RefundOnCancel = true
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Reject(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, f.alice, r.ID)
	require.NoError(t, err)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("25")))
}

// =============================================================================
// EDIT
// =============================================================================

func TestEdit_PendingDetailsResize(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	end := june(7)
	reason := "longer trip"
	edited, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{EndDate: &end, Reason: &reason},
	})
	require.NoError(t, err)
	assert.True(t, edited.TotalDays.Equal(days("5")))
	assert.Equal(t, "longer trip", edited.Reason)
	assert.Equal(t, leave.StatusPending, edited.Status)
}

func TestEdit_ResizeRechecksBalance(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypePersonal, june(3), june(3), leave.DurationFullDay)

	end := june(10)
	_, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{EndDate: &end},
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	stored, err := f.store.GetRequest(f.ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalDays.Equal(days("1")), "failed edit must not persist")
}

func TestEdit_DetailsOnlyWhilePending(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	end := june(10)
	_, err = f.svc.Edit(f.ctx, f.manager, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{EndDate: &end},
	})
	var it *leave.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, leave.StatusApproved, it.From)
	assert.Equal(t, leave.ActionEdit, it.Attempted)
}

func TestEdit_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	reason := "hijack"
	_, err := f.svc.Edit(f.ctx, f.bob, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{Reason: &reason},
	})
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestEdit_StatusChangeRequiresPrivilege(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	_, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Status: &leave.StatusChange{Status: leave.StatusApproved},
	})
	assert.ErrorIs(t, err, leave.ErrForbidden)
}

func TestEdit_StatusOverrideRunsApproveSideEffects(t *testing.T) {
	// GIVEN: a rejected request
	// WHEN: a manager edits its status to approved
	// THEN: the approval debit is applied
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Reject(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	edited, err := f.svc.Edit(f.ctx, f.admin, r.ID, leave.EditCommand{
		Status: &leave.StatusChange{Status: leave.StatusApproved, Comments: "reconsidered"},
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, edited.Status)
	assert.Equal(t, f.admin.ID, edited.ApprovedBy)
	assert.Equal(t, "reconsidered", edited.ApprovalComments)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))

	_, err = f.svc.Edit(f.ctx, f.admin, r.ID, leave.EditCommand{
		Status: &leave.StatusChange{Status: leave.StatusApproved},
	})
	assert.ErrorIs(t, err, leave.ErrInvalidTransition, "re-approving would debit twice")
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))
}

func TestEdit_PendingDetailsAndStatusTogether(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	mode := leave.DurationHalfAfternoon
	edited, err := f.svc.Edit(f.ctx, f.manager, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{Duration: &mode},
		Status:  &leave.StatusChange{Status: leave.StatusApproved},
	})
	require.NoError(t, err)
	assert.True(t, edited.TotalDays.Equal(days("0.5")))
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("24.5")))
}

func TestEdit_ApprovalDuringEditIsNotReverted(t *testing.T) {
	// GIVEN: a pending 3-day annual request being resized by its owner
	// WHEN: a manager approves it after the edit read it but before it saved
	// THEN: the edit fails, the request stays approved and is debited once
	hook := &hookHolidays{}
	f := newFixture(t, hook)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	hook.before = func() {
		hook.before = nil
		_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
		require.NoError(t, err)
	}
	end := june(4)
	_, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{EndDate: &end},
	})
	var it *leave.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, leave.StatusApproved, it.From)

	stored, err := f.store.GetRequest(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, stored.Status)
	assert.Equal(t, june(5), stored.EndDate)
	assert.True(t, stored.TotalDays.Equal(days("3")))
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")))

	_, err = f.svc.Approve(f.ctx, f.manager, r.ID, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("22")), "debited exactly once")
}

func TestEdit_ReasonOnlyEditKeepsConcurrentApproval(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	reason := "renamed"
	_, err = f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{Reason: &reason},
	})
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	stored, err := f.store.GetRequest(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, stored.Status)
	assert.Equal(t, "trip", stored.Reason)
}

func TestEdit_RetriesWhenSpanMovesUnderneath(t *testing.T) {
	// GIVEN: Alice changes the type of a 3-day request
	// WHEN: Maria moves its end date while Alice's edit is sizing
	// THEN: Alice's edit starts over and sizes the new span
	hook := &hookHolidays{}
	f := newFixture(t, hook)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)

	hook.before = func() {
		hook.before = nil
		end := june(4)
		_, err := f.svc.Edit(f.ctx, f.manager, r.ID, leave.EditCommand{
			Details: &leave.DetailsChange{EndDate: &end},
		})
		require.NoError(t, err)
	}
	lt := leave.TypeSick
	edited, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{
		Details: &leave.DetailsChange{Type: &lt},
	})
	require.NoError(t, err)
	assert.Equal(t, leave.TypeSick, edited.Type)
	assert.Equal(t, june(4), edited.EndDate)
	assert.True(t, edited.TotalDays.Equal(days("2")), "got %s", edited.TotalDays)
}

func TestEdit_EmptyCommand(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(5), leave.DurationFullDay)
	_, err := f.svc.Edit(f.ctx, f.alice, r.ID, leave.EditCommand{})
	assert.ErrorIs(t, err, leave.ErrInvalidInput)
}

// =============================================================================
// READ / DELETE
// =============================================================================

func TestListAndGet_EmployeeSeesOnlyOwn(t *testing.T) {
	f := newFixture(t, nil)
	mine := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)
	theirs := f.create(t, f.bob, leave.TypeAnnual, june(4), june(4), leave.DurationFullDay)

	list, err := f.svc.List(f.ctx, f.alice, leave.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = f.svc.Get(f.ctx, f.alice, theirs.ID)
	assert.ErrorIs(t, err, leave.ErrForbidden)

	all, err := f.svc.List(f.ctx, f.manager, leave.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDelete_AdminOnly(t *testing.T) {
	f := newFixture(t, nil)
	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)

	assert.ErrorIs(t, f.svc.Delete(f.ctx, f.manager, r.ID), leave.ErrForbidden)
	require.NoError(t, f.svc.Delete(f.ctx, f.admin, r.ID))

	_, err := f.store.GetRequest(f.ctx, r.ID)
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

// =============================================================================
// EMPLOYEES & GRANTS
// =============================================================================

func TestRegisterEmployee_DefaultsAndUniqueEmail(t *testing.T) {
	f := newFixture(t, nil)
	b := f.balances(t, f.alice.ID)
	assert.True(t, b.Annual.Equal(days("25")))
	assert.True(t, b.Sick.Equal(days("10")))
	assert.True(t, b.Personal.Equal(days("3")))
	assert.True(t, b.Emergency.Equal(days("5")))

	_, err := f.svc.RegisterEmployee(f.ctx, leave.NewEmployee{Name: "Alice 2", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, leave.ErrEmailTaken)
}

func TestGrantPaidLeave_CreditsAnnual(t *testing.T) {
	f := newFixture(t, nil)

	g, err := f.svc.GrantPaidLeave(f.ctx, f.manager, leave.GrantCommand{
		EmployeeID: f.alice.ID, Type: leave.GrantBonus, Days: days("2"), Reason: "launch",
	})
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, g.GrantedBy)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("27")))
	assert.Len(t, f.notes.granted, 1)
}

func TestGrantPaidLeave_DeductFlagRecordsOnly(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GrantPaidLeave(f.ctx, f.manager, leave.GrantCommand{
		EmployeeID: f.alice.ID, Type: leave.GrantCompensation, Days: days("1.5"), DeductFromBalance: true,
	})
	require.NoError(t, err)
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("25")))

	stats, err := f.svc.GrantStats(f.ctx, f.alice, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.True(t, stats.TotalDaysGranted.Equal(days("1.5")))
}

func TestGrantPaidLeave_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GrantPaidLeave(f.ctx, f.alice, leave.GrantCommand{
		EmployeeID: f.alice.ID, Type: leave.GrantBonus, Days: days("2"),
	})
	assert.ErrorIs(t, err, leave.ErrForbidden)

	_, err = f.svc.GrantPaidLeave(f.ctx, f.manager, leave.GrantCommand{
		EmployeeID: f.alice.ID, Type: leave.GrantBonus, Days: days("0"),
	})
	assert.ErrorIs(t, err, leave.ErrInvalidDays)

	_, err = f.svc.GrantPaidLeave(f.ctx, f.manager, leave.GrantCommand{
		EmployeeID: "ghost", Type: leave.GrantBonus, Days: days("1"),
	})
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestUpdateAndDeleteGrant_GranterOrAdmin(t *testing.T) {
	f := newFixture(t, nil)
	other := f.register(t, "Otto", leave.RoleManager)

	g, err := f.svc.GrantPaidLeave(f.ctx, f.manager, leave.GrantCommand{
		EmployeeID: f.alice.ID, Type: leave.GrantAward, Days: days("1"),
	})
	require.NoError(t, err)

	notes := "quarterly award"
	_, err = f.svc.UpdateGrant(f.ctx, other, g.ID, leave.GrantUpdate{Notes: &notes})
	assert.ErrorIs(t, err, leave.ErrForbidden)

	updated, err := f.svc.UpdateGrant(f.ctx, f.manager, g.ID, leave.GrantUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	require.NoError(t, f.svc.DeleteGrant(f.ctx, f.admin, g.ID))
	assert.True(t, f.balances(t, f.alice.ID).Annual.Equal(days("26")), "deleting a grant keeps the credit")
}

func TestService_LogsTransitions(t *testing.T) {
	f := newFixture(t, nil)
	logger, hook := test.NewNullLogger()
	f.svc.Log = logger

	r := f.create(t, f.alice, leave.TypeAnnual, june(3), june(3), leave.DurationFullDay)
	_, err := f.svc.Approve(f.ctx, f.manager, r.ID, "")
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, leave.StatusApproved, entry.Data["status"])
}
