/*
Package report builds leave exports and analytics.

PURPOSE:
  Read-only views over the leave store:
  - excel.go:     XLSX leave and balance reports
  - pdf.go:       PDF leave and balance reports
  - analytics.go: distributions, trends and summary statistics

ACCESS:
  Rows are loaded through leave.Service, so employees only ever see their
  own requests. Balance reports need a manager or admin.
*/
package report

import (
	"context"
	"time"

	"github.com/warp/leave-engine/leave"
)

// Filters narrows leave reports. From/To bound the leave dates.
type Filters struct {
	From       *time.Time
	To         *time.Time
	Status     leave.Status
	Type       leave.LeaveType
	EmployeeID leave.EmployeeID
}

func (f Filters) requestFilter() leave.RequestFilter {
	return leave.RequestFilter{
		EmployeeID: f.EmployeeID,
		Status:     f.Status,
		Type:       f.Type,
		From:       f.From,
		To:         f.To,
	}
}

// LeaveRow is a request joined with the names shown in reports.
type LeaveRow struct {
	leave.Request
	EmployeeName  string
	EmployeeEmail string
	ApproverName  string
}

type Service struct {
	Leave *leave.Service
}

func NewService(leaveSvc *leave.Service) *Service {
	return &Service{Leave: leaveSvc}
}

// LeaveRows returns the requests visible to actor, joined with names.
func (s *Service) LeaveRows(ctx context.Context, actor leave.Actor, f Filters) ([]LeaveRow, error) {
	requests, err := s.Leave.List(ctx, actor, f.requestFilter())
	if err != nil {
		return nil, err
	}
	names, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaveRow, 0, len(requests))
	for _, r := range requests {
		e := names[r.EmployeeID]
		rows = append(rows, LeaveRow{
			Request:       r,
			EmployeeName:  e.Name,
			EmployeeEmail: e.Email,
			ApproverName:  names[r.ApprovedBy].Name,
		})
	}
	return rows, nil
}

// BalanceRows lists every employee with their counters.
func (s *Service) BalanceRows(ctx context.Context, actor leave.Actor) ([]leave.Employee, error) {
	return s.Leave.ListEmployees(ctx, actor, leave.EmployeeFilter{})
}

// Analytics computes statistics over the requests visible to actor.
// Employees get figures for their own requests and balance only.
func (s *Service) Analytics(ctx context.Context, actor leave.Actor, f AnalyticsFilter) (*Analytics, error) {
	requests, err := s.Leave.List(ctx, actor, f.requestFilter())
	if err != nil {
		return nil, err
	}

	var employees []leave.Employee
	if actor.Privileged() {
		employees, err = s.Leave.ListEmployees(ctx, actor, leave.EmployeeFilter{})
	} else {
		var e *leave.Employee
		e, err = s.Leave.GetEmployee(ctx, actor, actor.ID)
		if e != nil {
			employees = []leave.Employee{*e}
		}
	}
	if err != nil {
		return nil, err
	}

	names, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	return Compute(requests, employees, names), nil
}

// directory maps every employee ID to its record, for name lookups.
func (s *Service) directory(ctx context.Context) (map[leave.EmployeeID]leave.Employee, error) {
	all, err := s.Leave.Store.ListEmployees(ctx, leave.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[leave.EmployeeID]leave.Employee, len(all))
	for _, e := range all {
		out[e.ID] = e
	}
	return out, nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func durationLabel(d leave.Duration) string {
	if d.IsHalfDay() {
		return "Half Day"
	}
	return "Full Day"
}

func period(f Filters) string {
	switch {
	case f.From != nil && f.To != nil:
		return "Period: " + formatDate(*f.From) + " to " + formatDate(*f.To)
	case f.From != nil:
		return "From " + formatDate(*f.From)
	case f.To != nil:
		return "Until " + formatDate(*f.To)
	}
	return "All Time"
}

type summary struct {
	total, approved, pending, rejected, cancelled int
}

func summarize(rows []LeaveRow) summary {
	s := summary{total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case leave.StatusApproved:
			s.approved++
		case leave.StatusPending:
			s.pending++
		case leave.StatusRejected:
			s.rejected++
		case leave.StatusCancelled:
			s.cancelled++
		}
	}
	return s
}
