/*
handlers.go - HTTP API handlers for the leave management system

PURPOSE:
  Exposes the leave service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the domain services.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List employees (manager/admin)
    GET    /api/employees/me/balances     Caller's balances
    GET    /api/employees/{id}/balances   One employee's balances

  Leave requests:
    POST   /api/leave-requests            Submit a request
    GET    /api/leave-requests            Caller's requests
    GET    /api/leave-requests/all        All requests, filtered (manager/admin)
    GET    /api/leave-requests/{id}       One request
    PATCH  /api/leave-requests/{id}       Typed partial edit
    PATCH  /api/leave-requests/{id}/approve
    PATCH  /api/leave-requests/{id}/reject
    PATCH  /api/leave-requests/{id}/cancel
    DELETE /api/leave-requests/{id}       Delete (admin)

  Policy:
    GET    /api/policy                    Active leave policy

  Auth, paid leave, holidays and reports live in their own files.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Leave: request lifecycle and balances
  - Auth: registration and login
  - Holidays: public holiday records and lookup
  - Reports: exports and analytics
  - Mail: test email delivery

REQUEST FLOW:
  1. Read the actor placed on the context by Authenticator
  2. Parse and validate input
  3. Call the service
  4. Serialize response

ERROR HANDLING:
  Service errors are mapped to status codes in errors.go.

SEE ALSO:
  - dto.go: Request/response data structures
  - middleware.go: Authentication and role checks
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/holidays"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// TestMailer sends the admin test email.
type TestMailer interface {
	SendTest(ctx context.Context, to string) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Leave         *leave.Service
	Auth          *auth.Service
	Holidays      *holidays.Service
	Reports       *report.Service
	Mail          TestMailer
	PolicyFactory *factory.PolicyFactory

	// Ping reports database health; nil means always healthy.
	Ping func(ctx context.Context) error
	Log  logrus.FieldLogger
}

// NewHandler creates a handler over the given services.
func NewHandler(leaveSvc *leave.Service, authSvc *auth.Service, holidaySvc *holidays.Service, mail TestMailer) *Handler {
	return &Handler{
		Leave:         leaveSvc,
		Auth:          authSvc,
		Holidays:      holidaySvc,
		Reports:       report.NewService(leaveSvc),
		Mail:          mail,
		PolicyFactory: factory.NewPolicyFactory(),
		Log:           logrus.StandardLogger(),
	}
}

// decodeJSON reads a JSON body into v. An empty body is allowed when
// optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// =============================================================================
// HEALTH AND POLICY
// =============================================================================

// Health reports service and database status. It is public.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			h.Log.WithError(err).Warn("database ping failed")
			resp.Status, resp.Database = "degraded", "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPolicy returns the active leave policy in its JSON form.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(h.Leave.Policy))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees, optionally narrowed by ?role=.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	var filter leave.EmployeeFilter
	if role := r.URL.Query().Get("role"); role != "" {
		if !leave.Role(role).Valid() {
			writeError(w, http.StatusBadRequest, "Invalid role", nil)
			return
		}
		filter.Roles = []leave.Role{leave.Role(role)}
	}

	employees, err := h.Leave.ListEmployees(r.Context(), actorFrom(r.Context()), filter)
	if err != nil {
		h.writeServiceError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMyBalances returns the caller's four counters.
func (h *Handler) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	h.writeBalances(w, r, actor.ID)
}

// GetBalances returns one employee's counters.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	h.writeBalances(w, r, leave.EmployeeID(chi.URLParam(r, "id")))
}

func (h *Handler) writeBalances(w http.ResponseWriter, r *http.Request, id leave.EmployeeID) {
	balances, err := h.Leave.Balances(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesDTO(balances))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// CreateLeaveRequest submits a new pending request.
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	created, err := h.Leave.Create(r.Context(), actorFrom(r.Context()), leave.CreateCommand{
		EmployeeID: leave.EmployeeID(req.EmployeeID),
		Type:       leave.LeaveType(req.Type),
		StartDate:  start,
		EndDate:    end,
		Duration:   leave.Duration(req.Duration),
		Reason:     req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*created))
}

// ListMyLeaveRequests returns the caller's requests.
func (h *Handler) ListMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	filter, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	filter.EmployeeID = actor.ID
	h.writeRequestList(w, r, filter)
}

// ListAllLeaveRequests returns every request matching the query filters.
func (h *Handler) ListAllLeaveRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}
	h.writeRequestList(w, r, filter)
}

func (h *Handler) writeRequestList(w http.ResponseWriter, r *http.Request, filter leave.RequestFilter) {
	requests, err := h.Leave.List(r.Context(), actorFrom(r.Context()), filter)
	if err != nil {
		h.writeServiceError(w, "Failed to list leave requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(requests))
}

// parseRequestFilter reads status, type, employee_id, start_date and
// end_date query parameters.
func parseRequestFilter(r *http.Request) (leave.RequestFilter, error) {
	q := r.URL.Query()
	filter := leave.RequestFilter{
		EmployeeID: leave.EmployeeID(q.Get("employee_id")),
		Status:     leave.Status(q.Get("status")),
		Type:       leave.LeaveType(q.Get("type")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, fmt.Errorf("%w: unknown status %q", leave.ErrInvalidInput, filter.Status)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, leave.ErrInvalidLeaveType
	}
	var err error
	if filter.From, err = optionalDate(q.Get("start_date")); err != nil {
		return filter, err
	}
	if filter.To, err = optionalDate(q.Get("end_date")); err != nil {
		return filter, err
	}
	return filter, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := leave.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", leave.ErrInvalidInput, s)
	}
	return &t, nil
}

// GetLeaveRequest returns one request.
func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Leave.Get(r.Context(), actorFrom(r.Context()), requestID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to get leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*req))
}

// UpdateLeaveRequest applies a typed partial edit.
func (h *Handler) UpdateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cmd, err := req.command()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update", err)
		return
	}

	updated, err := h.Leave.Edit(r.Context(), actorFrom(r.Context()), requestID(r), cmd)
	if err != nil {
		h.writeServiceError(w, "Failed to update leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*updated))
}

// command converts the body into an EditCommand.
func (req UpdateLeaveRequest) command() (leave.EditCommand, error) {
	var cmd leave.EditCommand
	if req.Type != nil || req.StartDate != nil || req.EndDate != nil || req.Duration != nil || req.Reason != nil {
		d := &leave.DetailsChange{Reason: req.Reason}
		if req.Type != nil {
			t := leave.LeaveType(*req.Type)
			d.Type = &t
		}
		if req.Duration != nil {
			m := leave.Duration(*req.Duration)
			d.Duration = &m
		}
		var err error
		if req.StartDate != nil {
			if d.StartDate, err = optionalDate(*req.StartDate); err != nil {
				return cmd, err
			}
		}
		if req.EndDate != nil {
			if d.EndDate, err = optionalDate(*req.EndDate); err != nil {
				return cmd, err
			}
		}
		cmd.Details = d
	}
	if req.Status != nil {
		cmd.Status = &leave.StatusChange{Status: leave.Status(*req.Status), Comments: req.Comments}
	}
	if cmd.Details == nil && cmd.Status == nil {
		return cmd, fmt.Errorf("%w: no fields to update", leave.ErrInvalidInput)
	}
	return cmd, nil
}

// ApproveLeaveRequest approves a pending request and debits the balance.
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Leave.Approve, "Failed to approve leave request")
}

// RejectLeaveRequest rejects a pending request.
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Leave.Reject, "Failed to reject leave request")
}

type decision func(ctx context.Context, actor leave.Actor, id leave.RequestID, comments string) (*leave.Request, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn decision, message string) {
	var req ApprovalRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	decided, err := fn(r.Context(), actorFrom(r.Context()), requestID(r), req.Comments)
	if err != nil {
		h.writeServiceError(w, message, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*decided))
}

// CancelLeaveRequest cancels a pending or approved request.
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.Leave.Cancel(r.Context(), actorFrom(r.Context()), requestID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to cancel leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(*cancelled))
}

// DeleteLeaveRequest removes a request record.
func (h *Handler) DeleteLeaveRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Leave.Delete(r.Context(), actorFrom(r.Context()), requestID(r)); err != nil {
		h.writeServiceError(w, "Failed to delete leave request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requestID(r *http.Request) leave.RequestID {
	return leave.RequestID(chi.URLParam(r, "id"))
}
