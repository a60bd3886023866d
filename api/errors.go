package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/holidays"
	"github.com/warp/leave-engine/leave"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var insufficient *leave.InsufficientBalanceError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, leave.ErrForbidden):
		return http.StatusForbidden
	case leave.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &insufficient), errors.Is(err, leave.ErrInvalidTransition), errors.Is(err, leave.ErrEmailTaken),
		errors.Is(err, leave.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, leave.ErrInvalidInput), errors.Is(err, holidays.ErrUnsupportedCountry):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with its mapped status. Server errors are
// logged and their details withheld.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.WithError(err).WithField("status", status).Error(message)
		writeError(w, status, message, nil)
		return
	}
	h.Log.WithFields(logrus.Fields{"status": status, "reason": err.Error()}).Debug(message)
	writeError(w, status, message, err)
}
