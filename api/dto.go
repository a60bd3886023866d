/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the leave domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DATES AND DAYS:
  Calendar dates are "YYYY-MM-DD"; timestamps are RFC3339. Day amounts
  are decimals serialized as strings ("2.5").

VALIDATION:
  Validation is done in handlers and services, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

const dateLayout = "2006-01-02"

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   string      `json:"expires_at"`
	User        EmployeeDTO `json:"user"`
}

func toAuthResponse(s *auth.Session) AuthResponse {
	return AuthResponse{
		AccessToken: s.Token,
		ExpiresAt:   s.ExpiresAt.UTC().Format(time.RFC3339),
		User:        toEmployeeDTO(s.Employee),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Role               string      `json:"role"`
	Balances           BalancesDTO `json:"balances"`
	EmailNotifications bool        `json:"email_notifications"`
	CreatedAt          string      `json:"created_at,omitempty"`
}

type BalancesDTO struct {
	Annual    decimal.Decimal `json:"annual"`
	Sick      decimal.Decimal `json:"sick"`
	Personal  decimal.Decimal `json:"personal"`
	Emergency decimal.Decimal `json:"emergency"`
}

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                 string(e.ID),
		Name:               e.Name,
		Email:              e.Email,
		Role:               string(e.Role),
		Balances:           toBalancesDTO(e.Balances),
		EmailNotifications: e.EmailNotifications,
		CreatedAt:          formatStamp(e.CreatedAt),
	}
}

func toBalancesDTO(b leave.Balances) BalancesDTO {
	return BalancesDTO{Annual: b.Annual, Sick: b.Sick, Personal: b.Personal, Emergency: b.Emergency}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// CreateLeaveRequest submits leave. EmployeeID is only honoured for
// managers and admins; everyone else files for themselves.
type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Duration   string `json:"duration,omitempty"`
	Reason     string `json:"reason"`
}

// UpdateLeaveRequest is a partial update. Detail fields apply while the
// request is pending; Status needs a manager or admin.
type UpdateLeaveRequest struct {
	Type      *string `json:"type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Duration  *string `json:"duration,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	Status    *string `json:"status,omitempty"`
	Comments  string  `json:"comments,omitempty"`
}

type ApprovalRequest struct {
	Comments string `json:"comments,omitempty"`
}

type LeaveRequestDTO struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	Type             string          `json:"type"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Duration         string          `json:"duration"`
	TotalDays        decimal.Decimal `json:"total_days"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	ApprovedBy       string          `json:"approved_by,omitempty"`
	ApprovedAt       string          `json:"approved_at,omitempty"`
	ApprovalComments string          `json:"approval_comments,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

func toLeaveRequestDTO(r leave.Request) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:               string(r.ID),
		EmployeeID:       string(r.EmployeeID),
		Type:             string(r.Type),
		StartDate:        r.StartDate.Format(dateLayout),
		EndDate:          r.EndDate.Format(dateLayout),
		Duration:         string(r.Duration),
		TotalDays:        r.TotalDays,
		Reason:           r.Reason,
		Status:           string(r.Status),
		ApprovedBy:       string(r.ApprovedBy),
		ApprovalComments: r.ApprovalComments,
		CreatedAt:        formatStamp(r.CreatedAt),
		UpdatedAt:        formatStamp(r.UpdatedAt),
	}
	if r.ApprovedAt != nil {
		dto.ApprovedAt = formatStamp(*r.ApprovedAt)
	}
	return dto
}

func toLeaveRequestDTOs(rs []leave.Request) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, 0, len(rs))
	for _, r := range rs {
		dtos = append(dtos, toLeaveRequestDTO(r))
	}
	return dtos
}

// =============================================================================
// PAID LEAVE
// =============================================================================

type GrantRequest struct {
	EmployeeID        string          `json:"employee_id"`
	Type              string          `json:"type"`
	Days              decimal.Decimal `json:"days"`
	Reason            string          `json:"reason"`
	Notes             string          `json:"notes,omitempty"`
	DeductFromBalance bool            `json:"deduct_from_balance"`
}

type UpdateGrantRequest struct {
	Reason *string `json:"reason,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type GrantDTO struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	GrantedBy         string          `json:"granted_by"`
	Type              string          `json:"type"`
	Days              decimal.Decimal `json:"days"`
	Reason            string          `json:"reason"`
	Notes             string          `json:"notes,omitempty"`
	DeductFromBalance bool            `json:"deduct_from_balance"`
	GrantedAt         string          `json:"granted_at"`
	UpdatedAt         string          `json:"updated_at"`
}

func toGrantDTO(g leave.Grant) GrantDTO {
	return GrantDTO{
		ID:                string(g.ID),
		EmployeeID:        string(g.EmployeeID),
		GrantedBy:         string(g.GrantedBy),
		Type:              string(g.Type),
		Days:              g.Days,
		Reason:            g.Reason,
		Notes:             g.Notes,
		DeductFromBalance: g.DeductFromBalance,
		GrantedAt:         formatStamp(g.GrantedAt),
		UpdatedAt:         formatStamp(g.UpdatedAt),
	}
}

func toGrantDTOs(gs []leave.Grant) []GrantDTO {
	dtos := make([]GrantDTO, 0, len(gs))
	for _, g := range gs {
		dtos = append(dtos, toGrantDTO(g))
	}
	return dtos
}

type GrantStatsDTO struct {
	TotalDaysGranted decimal.Decimal     `json:"total_days_granted"`
	TotalRecords     int                 `json:"total_records"`
	TypeBreakdown    []GrantTypeStatsDTO `json:"type_breakdown"`
}

type GrantTypeStatsDTO struct {
	Type  string          `json:"type"`
	Days  decimal.Decimal `json:"days"`
	Count int             `json:"count"`
}

func toGrantStatsDTO(s leave.GrantStats) GrantStatsDTO {
	dto := GrantStatsDTO{
		TotalDaysGranted: s.TotalDaysGranted,
		TotalRecords:     s.TotalRecords,
		TypeBreakdown:    make([]GrantTypeStatsDTO, 0, len(s.TypeBreakdown)),
	}
	for _, t := range s.TypeBreakdown {
		dto.TypeBreakdown = append(dto.TypeBreakdown, GrantTypeStatsDTO{Type: string(t.Type), Days: t.Days, Count: t.Count})
	}
	return dto
}

// =============================================================================
// PUBLIC HOLIDAYS
// =============================================================================

type HolidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Country     string `json:"country,omitempty"`
}

type UpdateHolidayRequest struct {
	Name        *string `json:"name,omitempty"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"is_active,omitempty"`
}

type HolidayDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Country     string `json:"country"`
	Active      bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

func toHolidayDTO(h leave.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:          string(h.ID),
		Name:        h.Name,
		Date:        h.Date.Format(dateLayout),
		Description: h.Description,
		Country:     h.Country,
		Active:      h.Active,
		CreatedAt:   formatStamp(h.CreatedAt),
	}
}

func toHolidayDTOs(hs []leave.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, 0, len(hs))
	for _, h := range hs {
		dtos = append(dtos, toHolidayDTO(h))
	}
	return dtos
}

type FetchHolidaysResponse struct {
	Country  string       `json:"country"`
	Year     int          `json:"year"`
	Created  int          `json:"created"`
	Holidays []HolidayDTO `json:"holidays"`
}

// =============================================================================
// MISC
// =============================================================================

type TestEmailRequest struct {
	To string `json:"to"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
