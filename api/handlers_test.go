/*
handlers_test.go - HTTP tests for the API

Tests run the full router (auth middleware included) against the
in-memory store:
- Registration, login and profile
- Authentication and role checks
- Request lifecycle with balance effects
- Paid leave, holidays, reports, analytics, test email
- Demo seeding
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/holidays"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

type fakeMail struct {
	sent []string
}

func (f *fakeMail) SendTest(_ context.Context, to string) error {
	if to == "" {
		return leave.ErrInvalidInput
	}
	f.sent = append(f.sent, to)
	return nil
}

type testServer struct {
	t       *testing.T
	handler *Handler
	router  http.Handler
	mail    *fakeMail
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()

	mem := store.NewMemory()
	holidaySvc := holidays.NewService(mem, holidays.NewCalendarLookup(), "LK")
	holidaySvc.Log = logger
	leaveSvc := leave.NewService(mem, holidaySvc, nil, leave.DefaultPolicy())
	leaveSvc.Log = logger
	authSvc := auth.NewService(leaveSvc, auth.NewIssuer("test-secret", time.Hour))

	mail := &fakeMail{}
	h := NewHandler(leaveSvc, authSvc, holidaySvc, mail)
	h.Log = logger
	router := NewRouter(h, RouterConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	return &testServer{t: t, handler: h, router: router, mail: mail}
}

// do sends a request with an optional bearer token and JSON body.
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account over HTTP and returns its session.
func (s *testServer) register(name, role string) AuthResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthResponse
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// =============================================================================
// AUTH
// =============================================================================

func TestRegisterLoginProfile(t *testing.T) {
	// GIVEN: A registered employee
	s := newTestServer(t)
	reg := s.register("Alice", "")
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "employee", reg.User.Role)
	assert.True(t, reg.User.Balances.Annual.Equal(decimal.NewFromInt(25)))

	// WHEN: They log in
	rec := s.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[AuthResponse](t, rec)

	// THEN: The token opens the profile
	rec = s.do(http.MethodGet, "/api/auth/profile", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[EmployeeDTO](t, rec)
	assert.Equal(t, reg.User.ID, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "")

	rec := s.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "")

	rec := s.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/leave-requests", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/leave-requests", "not-a-jwt", nil).Code)

	foreign := auth.NewIssuer("other-secret", time.Hour)
	token, _, err := foreign.Issue(leave.Employee{ID: "x", Email: "x@example.com", Role: leave.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/employees", token, nil).Code)
}

func TestRoleChecks(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/employees", alice.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/leave-requests/all", alice.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/test/email", manager.AccessToken, TestEmailRequest{To: "x@example.com"}).Code)

	rec := s.do(http.MethodGet, "/api/employees", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]EmployeeDTO](t, rec), 2)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.handler.Ping = func(context.Context) error { return assert.AnError }
	rec = s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func TestLeaveRequest_ApproveDebitsBalance(t *testing.T) {
	// GIVEN: An employee files Monday to Wednesday with a public holiday on Tuesday
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")
	admin := s.register("Ada", "admin")

	rec := s.do(http.MethodPost, "/api/public-holidays", admin.AccessToken, HolidayRequest{Name: "Poson", Date: "2030-06-04"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, CreateLeaveRequest{
		Type: "annual", StartDate: "2030-06-03", EndDate: "2030-06-05", Reason: "Trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[LeaveRequestDTO](t, rec)
	assert.Equal(t, "pending", created.Status)
	assert.True(t, created.TotalDays.Equal(decimal.NewFromInt(2)), created.TotalDays.String())

	// WHEN: The manager approves it
	rec = s.do(http.MethodPatch, "/api/leave-requests/"+created.ID+"/approve", manager.AccessToken, ApprovalRequest{Comments: "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[LeaveRequestDTO](t, rec)

	// THEN: The request records the decision and the balance drops by 2
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, manager.User.ID, approved.ApprovedBy)
	assert.Equal(t, "ok", approved.ApprovalComments)

	rec = s.do(http.MethodGet, "/api/employees/me/balances", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := decode[BalancesDTO](t, rec)
	assert.True(t, balances.Annual.Equal(decimal.NewFromInt(23)), balances.Annual.String())

	// AND: Approving again is a conflict
	rec = s.do(http.MethodPatch, "/api/leave-requests/"+created.ID+"/approve", manager.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLeaveRequest_InsufficientBalance(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")

	// Personal balance is 3; a full week is 5 working days
	rec := s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, CreateLeaveRequest{
		Type: "personal", StartDate: "2030-06-03", EndDate: "2030-06-07", Reason: "Move",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/leave-requests", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]LeaveRequestDTO](t, rec))
}

func TestLeaveRequest_Validation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")

	tests := []struct {
		name string
		body CreateLeaveRequest
	}{
		{"bad date", CreateLeaveRequest{Type: "annual", StartDate: "06/03/2030", EndDate: "2030-06-03"}},
		{"end before start", CreateLeaveRequest{Type: "annual", StartDate: "2030-06-05", EndDate: "2030-06-03"}},
		{"unknown type", CreateLeaveRequest{Type: "sabbatical", StartDate: "2030-06-03", EndDate: "2030-06-03"}},
		{"unknown duration", CreateLeaveRequest{Type: "annual", StartDate: "2030-06-03", EndDate: "2030-06-03", Duration: "quarter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := s.do(http.MethodGet, "/api/leave-requests?status=maybe", alice.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveRequest_OwnershipAndEdit(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	bob := s.register("Bob", "")
	manager := s.register("Maria", "manager")

	rec := s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, CreateLeaveRequest{
		Type: "annual", StartDate: "2030-06-03", EndDate: "2030-06-03", Reason: "Dentist",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[LeaveRequestDTO](t, rec).ID

	// Bob can neither read nor cancel Alice's request
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/leave-requests/"+id, bob.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/api/leave-requests/"+id+"/cancel", bob.AccessToken, nil).Code)

	// An empty edit is rejected; a duration edit resizes the request
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/api/leave-requests/"+id, alice.AccessToken, UpdateLeaveRequest{}).Code)
	half := "half_day_afternoon"
	rec = s.do(http.MethodPatch, "/api/leave-requests/"+id, alice.AccessToken, UpdateLeaveRequest{Duration: &half})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[LeaveRequestDTO](t, rec).TotalDays.Equal(decimal.RequireFromString("0.5")))

	// Employees cannot change status through edit
	approved := "approved"
	rec = s.do(http.MethodPatch, "/api/leave-requests/"+id, alice.AccessToken, UpdateLeaveRequest{Status: &approved})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The manager sees it in /all, filtered by employee
	rec = s.do(http.MethodGet, "/api/leave-requests/all?employee_id="+alice.User.ID, manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]LeaveRequestDTO](t, rec), 1)

	// Alice cancels her own pending request
	rec = s.do(http.MethodPatch, "/api/leave-requests/"+id+"/cancel", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[LeaveRequestDTO](t, rec).Status)
}

func TestLeaveRequest_DeleteIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")
	admin := s.register("Ada", "admin")

	rec := s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, CreateLeaveRequest{
		Type: "sick", StartDate: "2030-06-03", EndDate: "2030-06-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[LeaveRequestDTO](t, rec).ID

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/leave-requests/"+id, manager.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/leave-requests/"+id, admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/leave-requests/"+id, admin.AccessToken, nil).Code)
}

// =============================================================================
// PAID LEAVE
// =============================================================================

func TestPaidLeave_GrantCreditsAnnual(t *testing.T) {
	// GIVEN: A manager grants Alice 1.5 bonus days
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")

	rec := s.do(http.MethodPost, "/api/paid-leave", manager.AccessToken, GrantRequest{
		EmployeeID: alice.User.ID, Type: "bonus", Days: decimal.RequireFromString("1.5"), Reason: "Release",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	grant := decode[GrantDTO](t, rec)
	assert.Equal(t, manager.User.ID, grant.GrantedBy)

	// THEN: Annual balance is credited
	rec = s.do(http.MethodGet, "/api/employees/"+alice.User.ID+"/balances", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[BalancesDTO](t, rec).Annual.Equal(decimal.RequireFromString("26.5")))

	// AND: Alice sees it under /my and in her stats
	rec = s.do(http.MethodGet, "/api/paid-leave/my", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]GrantDTO](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/paid-leave/stats/"+alice.User.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[GrantStatsDTO](t, rec)
	assert.Equal(t, 1, stats.TotalRecords)
	require.Len(t, stats.TypeBreakdown, 1)
	assert.Equal(t, "bonus", stats.TypeBreakdown[0].Type)

	// AND: Only the granter or an admin may edit it
	note := "approved by director"
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/api/paid-leave/"+grant.ID, alice.AccessToken, UpdateGrantRequest{Notes: &note}).Code)
	rec = s.do(http.MethodPatch, "/api/paid-leave/"+grant.ID, manager.AccessToken, UpdateGrantRequest{Notes: &note})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, note, decode[GrantDTO](t, rec).Notes)
}

func TestPaidLeave_Validation(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")

	rec := s.do(http.MethodPost, "/api/paid-leave", alice.AccessToken, GrantRequest{
		EmployeeID: alice.User.ID, Type: "bonus", Days: decimal.NewFromInt(1), Reason: "self",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/paid-leave", manager.AccessToken, GrantRequest{
		EmployeeID: alice.User.ID, Type: "bonus", Days: decimal.RequireFromString("1.25"), Reason: "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/paid-leave/employee/"+manager.User.ID, alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_CRUDAndRoles(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	admin := s.register("Ada", "admin")

	body := HolidayRequest{Name: "Vesak", Date: "2030-05-16", Country: "lk"}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/public-holidays", alice.AccessToken, body).Code)

	rec := s.do(http.MethodPost, "/api/public-holidays", admin.AccessToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[HolidayDTO](t, rec)
	assert.Equal(t, "LK", created.Country)

	rec = s.do(http.MethodGet, "/api/public-holidays?country=LK&year=2030", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]HolidayDTO](t, rec), 1)

	inactive := false
	rec = s.do(http.MethodPatch, "/api/public-holidays/"+created.ID, admin.AccessToken, UpdateHolidayRequest{Active: &inactive})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/public-holidays?country=LK", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]HolidayDTO](t, rec), "inactive holidays are not listed")

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/public-holidays/"+created.ID, admin.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/public-holidays/"+created.ID, admin.AccessToken, nil).Code)
}

func TestHolidays_FetchFromCalendar(t *testing.T) {
	s := newTestServer(t)
	manager := s.register("Maria", "manager")

	rec := s.do(http.MethodGet, "/api/public-holidays/countries", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]holidays.Country](t, rec))

	rec = s.do(http.MethodGet, "/api/public-holidays/fetch/US/2030", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[FetchHolidaysResponse](t, rec)
	assert.Equal(t, "US", first.Country)
	assert.Positive(t, first.Created)
	assert.Len(t, first.Holidays, first.Created)

	// A second fetch skips dates already on record
	rec = s.do(http.MethodGet, "/api/public-holidays/fetch/us/2030", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[FetchHolidaysResponse](t, rec).Created)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/public-holidays/fetch/ZZ/2030", manager.AccessToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/public-holidays/fetch/US/soon", manager.AccessToken, nil).Code)

	// The default country has no calendar and is maintained by hand
	rec = s.do(http.MethodGet, "/api/public-holidays/fetch/LK/2030", manager.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Details, holidays.ErrUnsupportedCountry.Error())
}

// =============================================================================
// REPORTS, ANALYTICS, EMAIL
// =============================================================================

func TestReports_Downloads(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	manager := s.register("Maria", "manager")
	s.do(http.MethodPost, "/api/leave-requests", alice.AccessToken, CreateLeaveRequest{
		Type: "annual", StartDate: "2030-06-03", EndDate: "2030-06-04",
	})

	tests := []struct {
		path        string
		contentType string
	}{
		{"/api/leave-requests/reports/leave-report", xlsxContentType},
		{"/api/leave-requests/reports/leave-report-pdf?status=pending", pdfContentType},
		{"/api/leave-requests/reports/balance-report", xlsxContentType},
		{"/api/leave-requests/reports/balance-report-pdf", pdfContentType},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(http.MethodGet, tt.path, manager.AccessToken, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")
			assert.NotZero(t, rec.Body.Len())

			assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, tt.path, alice.AccessToken, nil).Code)
		})
	}
}

func TestAnalytics_Scopes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")
	bob := s.register("Bob", "")
	manager := s.register("Maria", "manager")
	for _, tok := range []string{alice.AccessToken, bob.AccessToken} {
		rec := s.do(http.MethodPost, "/api/leave-requests", tok, CreateLeaveRequest{
			Type: "annual", StartDate: "2030-06-03", EndDate: "2030-06-03",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	type totals struct {
		Totals struct {
			TotalRequests int `json:"total_requests"`
		} `json:"total_stats"`
	}

	rec := s.do(http.MethodGet, "/api/analytics", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[totals](t, rec).Totals.TotalRequests)

	rec = s.do(http.MethodGet, "/api/analytics/employee", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[totals](t, rec).Totals.TotalRequests)

	rec = s.do(http.MethodGet, "/api/analytics/employee", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[totals](t, rec).Totals.TotalRequests)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/analytics", alice.AccessToken, nil).Code)
}

func TestSendTestEmail(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Ada", "admin")

	rec := s.do(http.MethodPost, "/api/test/email", admin.AccessToken, TestEmailRequest{To: "ops@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ops@example.com"}, s.mail.sent)

	rec = s.do(http.MethodPost, "/api/test/email", admin.AccessToken, TestEmailRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPolicy(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "")

	rec := s.do(http.MethodGet, "/api/policy", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"holiday_country":"LK"`)
}

// =============================================================================
// SEED
// =============================================================================

func TestSeedDemo(t *testing.T) {
	// GIVEN: An empty store
	s := newTestServer(t)
	ctx := context.Background()

	// WHEN: Seeding twice
	seeded, err := SeedDemo(ctx, s.handler)
	require.NoError(t, err)
	again, err := SeedDemo(ctx, s.handler)
	require.NoError(t, err)

	// THEN: Only the first run writes
	assert.True(t, seeded)
	assert.False(t, again)

	employees, err := s.handler.Leave.Store.ListEmployees(ctx, leave.EmployeeFilter{})
	require.NoError(t, err)
	assert.Len(t, employees, len(demoAccounts))

	// AND: The demo accounts can log in
	rec := s.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "manager@example.com", Password: demoPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	manager := decode[AuthResponse](t, rec)

	rec = s.do(http.MethodGet, "/api/leave-requests/all", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]LeaveRequestDTO](t, rec), 4)
}

func TestNextMonday(t *testing.T) {
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, nextMonday(time.Date(2030, 5, 29, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, nextMonday(time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday.AddDate(0, 0, 7), nextMonday(monday))
}
