package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// LeaveReportExcel exports filtered requests as XLSX.
func (h *Handler) LeaveReportExcel(w http.ResponseWriter, r *http.Request) {
	f, rows, ok := h.leaveRows(w, r)
	if !ok {
		return
	}
	data, err := report.LeaveExcel(rows, f)
	if err != nil {
		h.writeServiceError(w, "Failed to build leave report", err)
		return
	}
	writeAttachment(w, xlsxContentType, h.filename("leave-report", "xlsx"), data)
}

// LeaveReportPDF exports filtered requests as PDF.
func (h *Handler) LeaveReportPDF(w http.ResponseWriter, r *http.Request) {
	f, rows, ok := h.leaveRows(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.LeavePDF(&buf, rows, f); err != nil {
		h.writeServiceError(w, "Failed to build leave report", err)
		return
	}
	writeAttachment(w, pdfContentType, h.filename("leave-report", "pdf"), buf.Bytes())
}

// BalanceReportExcel exports every employee's balances as XLSX.
func (h *Handler) BalanceReportExcel(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Reports.BalanceRows(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, "Failed to build balance report", err)
		return
	}
	data, err := report.BalanceExcel(employees)
	if err != nil {
		h.writeServiceError(w, "Failed to build balance report", err)
		return
	}
	writeAttachment(w, xlsxContentType, h.filename("balance-report", "xlsx"), data)
}

// BalanceReportPDF exports every employee's balances as PDF.
func (h *Handler) BalanceReportPDF(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Reports.BalanceRows(r.Context(), actorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, "Failed to build balance report", err)
		return
	}
	var buf bytes.Buffer
	if err := report.BalancePDF(&buf, employees); err != nil {
		h.writeServiceError(w, "Failed to build balance report", err)
		return
	}
	writeAttachment(w, pdfContentType, h.filename("balance-report", "pdf"), buf.Bytes())
}

func (h *Handler) leaveRows(w http.ResponseWriter, r *http.Request) (report.Filters, []report.LeaveRow, bool) {
	rf, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return report.Filters{}, nil, false
	}
	f := report.Filters{From: rf.From, To: rf.To, Status: rf.Status, Type: rf.Type, EmployeeID: rf.EmployeeID}
	rows, err := h.Reports.LeaveRows(r.Context(), actorFrom(r.Context()), f)
	if err != nil {
		h.writeServiceError(w, "Failed to build leave report", err)
		return f, nil, false
	}
	return f, rows, true
}

func (h *Handler) filename(name, ext string) string {
	return fmt.Sprintf("%s-%s.%s", name, h.Leave.Now().Format("2006-01-02"), ext)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// =============================================================================
// ANALYTICS HANDLERS
// =============================================================================

// Analytics returns organisation-wide statistics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	h.writeAnalytics(w, r, false)
}

// EmployeeAnalytics returns statistics over the caller's own requests,
// whatever their role.
func (h *Handler) EmployeeAnalytics(w http.ResponseWriter, r *http.Request) {
	h.writeAnalytics(w, r, true)
}

func (h *Handler) writeAnalytics(w http.ResponseWriter, r *http.Request, own bool) {
	q := r.URL.Query()
	f := report.AnalyticsFilter{
		EmployeeID: leave.EmployeeID(q.Get("employee_id")),
		Type:       leave.LeaveType(q.Get("type")),
		Status:     leave.Status(q.Get("status")),
	}
	actor := actorFrom(r.Context())
	if own {
		f.EmployeeID = actor.ID
		actor.Role = leave.RoleEmployee
	}
	var err error
	if f.CreatedFrom, err = optionalDate(q.Get("start_date")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	if f.CreatedTo, err = optionalDate(q.Get("end_date")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if f.CreatedTo != nil {
		// inclusive of the whole end day
		end := f.CreatedTo.AddDate(0, 0, 1).Add(-1)
		f.CreatedTo = &end
	}

	a, err := h.Reports.Analytics(r.Context(), actor, f)
	if err != nil {
		h.writeServiceError(w, "Failed to compute analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// =============================================================================
// EMAIL
// =============================================================================

// SendTestEmail delivers a test message synchronously.
func (h *Handler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req TestEmailRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if h.Mail == nil {
		writeError(w, http.StatusServiceUnavailable, "Email is not configured", nil)
		return
	}
	if err := h.Mail.SendTest(r.Context(), req.To); err != nil {
		h.writeServiceError(w, "Failed to send test email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Test email sent to " + req.To})
}
