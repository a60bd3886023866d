package api

import (
	"net/http"

	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register creates an account and returns a session for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.Auth.Register(r.Context(), auth.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     leave.Role(req.Role),
	})
	if err != nil {
		h.writeServiceError(w, "Registration failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(session))
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "Login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(session))
}

// Profile returns the caller's employee record.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	e, err := h.Auth.Profile(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e))
}
