package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// PAID LEAVE HANDLERS
// =============================================================================

// GrantPaidLeave records a grant and credits annual leave unless the
// grant only records days already taken.
func (h *Handler) GrantPaidLeave(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" || req.Reason == "" {
		writeError(w, http.StatusBadRequest, "employee_id and reason are required", nil)
		return
	}

	g, err := h.Leave.GrantPaidLeave(r.Context(), actorFrom(r.Context()), leave.GrantCommand{
		EmployeeID:        leave.EmployeeID(req.EmployeeID),
		Type:              leave.GrantType(req.Type),
		Days:              req.Days,
		Reason:            req.Reason,
		Notes:             req.Notes,
		DeductFromBalance: req.DeductFromBalance,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to grant paid leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toGrantDTO(*g))
}

// ListGrants returns every grant, optionally for ?employee_id=.
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	h.writeGrantList(w, r, leave.EmployeeID(r.URL.Query().Get("employee_id")))
}

// ListMyGrants returns the caller's grants.
func (h *Handler) ListMyGrants(w http.ResponseWriter, r *http.Request) {
	h.writeGrantList(w, r, actorFrom(r.Context()).ID)
}

// ListEmployeeGrants returns one employee's grants.
func (h *Handler) ListEmployeeGrants(w http.ResponseWriter, r *http.Request) {
	h.writeGrantList(w, r, leave.EmployeeID(chi.URLParam(r, "id")))
}

func (h *Handler) writeGrantList(w http.ResponseWriter, r *http.Request, id leave.EmployeeID) {
	actor := actorFrom(r.Context())
	if id != "" && !actor.Privileged() && !actor.Owns(id) {
		writeError(w, http.StatusForbidden, "Failed to list paid leave", leave.ErrForbidden)
		return
	}
	grants, err := h.Leave.ListGrants(r.Context(), actor, leave.GrantFilter{EmployeeID: id})
	if err != nil {
		h.writeServiceError(w, "Failed to list paid leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTOs(grants))
}

// GrantStats summarises an employee's grants.
func (h *Handler) GrantStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Leave.GrantStats(r.Context(), actorFrom(r.Context()), leave.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, "Failed to get paid leave stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantStatsDTO(stats))
}

func (h *Handler) GetGrant(w http.ResponseWriter, r *http.Request) {
	g, err := h.Leave.GetGrant(r.Context(), actorFrom(r.Context()), grantID(r))
	if err != nil {
		h.writeServiceError(w, "Failed to get paid leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTO(*g))
}

// UpdateGrant edits reason and notes. Days and type are fixed once granted.
func (h *Handler) UpdateGrant(w http.ResponseWriter, r *http.Request) {
	var req UpdateGrantRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	g, err := h.Leave.UpdateGrant(r.Context(), actorFrom(r.Context()), grantID(r), leave.GrantUpdate{
		Reason: req.Reason,
		Notes:  req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update paid leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantDTO(*g))
}

func (h *Handler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	if err := h.Leave.DeleteGrant(r.Context(), actorFrom(r.Context()), grantID(r)); err != nil {
		h.writeServiceError(w, "Failed to delete paid leave", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func grantID(r *http.Request) leave.GrantID {
	return leave.GrantID(chi.URLParam(r, "id"))
}
