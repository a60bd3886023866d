/*
seed.go - Demo data for development and demonstrations

PURPOSE:

	Populates an empty store with a small organisation so the frontend
	has something to show: one admin, one manager, two employees, and a
	few leave requests in different states.

ACCOUNTS (password "password123"):

	admin@example.com    admin
	manager@example.com  manager
	alice@example.com    employee
	bob@example.com      employee

HOW SEEDING WORKS:
 1. Skip if any employee exists
 2. Register accounts through auth (default balances from policy)
 3. File requests as the employees
 4. Approve and reject some of them as the manager

NOTE:

	Enabled with SEED_DEMO=true. Never runs against a populated store.

SEE ALSO:
  - cmd/server/main.go: calls SeedDemo at startup
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

const demoPassword = "password123"

type demoAccount struct {
	Name  string
	Email string
	Role  leave.Role
}

var demoAccounts = []demoAccount{
	{Name: "Ada Admin", Email: "admin@example.com", Role: leave.RoleAdmin},
	{Name: "Maria Manager", Email: "manager@example.com", Role: leave.RoleManager},
	{Name: "Alice Employee", Email: "alice@example.com", Role: leave.RoleEmployee},
	{Name: "Bob Employee", Email: "bob@example.com", Role: leave.RoleEmployee},
}

// SeedDemo loads the demo organisation into an empty store. It reports
// whether anything was written.
func SeedDemo(ctx context.Context, h *Handler) (bool, error) {
	existing, err := h.Leave.Store.ListEmployees(ctx, leave.EmployeeFilter{})
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	actors := make(map[string]leave.Actor, len(demoAccounts))
	for _, a := range demoAccounts {
		session, err := h.Auth.Register(ctx, auth.RegisterCommand{
			Name:     a.Name,
			Email:    a.Email,
			Password: demoPassword,
			Role:     a.Role,
		})
		if err != nil {
			return false, fmt.Errorf("failed to seed %s: %w", a.Email, err)
		}
		actors[a.Email] = leave.Actor{ID: session.Employee.ID, Role: session.Employee.Role}
	}

	alice := actors["alice@example.com"]
	bob := actors["bob@example.com"]
	manager := actors["manager@example.com"]
	monday := nextMonday(h.Leave.Now())

	steps := []struct {
		actor  leave.Actor
		cmd    leave.CreateCommand
		decide decision
		note   string
	}{
		{
			actor: alice,
			cmd:   leave.CreateCommand{Type: leave.TypeAnnual, StartDate: monday, EndDate: monday.AddDate(0, 0, 4), Reason: "Family trip"},
		},
		{
			actor:  alice,
			cmd:    leave.CreateCommand{Type: leave.TypePersonal, StartDate: monday.AddDate(0, 0, 14), EndDate: monday.AddDate(0, 0, 14), Duration: leave.DurationHalfMorning, Reason: "Appointment"},
			decide: h.Leave.Approve,
			note:   "Approved",
		},
		{
			actor:  bob,
			cmd:    leave.CreateCommand{Type: leave.TypeSick, StartDate: monday.AddDate(0, 0, 7), EndDate: monday.AddDate(0, 0, 8), Reason: "Flu"},
			decide: h.Leave.Approve,
			note:   "Get well soon",
		},
		{
			actor:  bob,
			cmd:    leave.CreateCommand{Type: leave.TypeAnnual, StartDate: monday.AddDate(0, 0, 21), EndDate: monday.AddDate(0, 0, 25), Reason: "Holiday"},
			decide: h.Leave.Reject,
			note:   "Release week, please pick other dates",
		},
	}
	for _, s := range steps {
		req, err := h.Leave.Create(ctx, s.actor, s.cmd)
		if err != nil {
			return true, fmt.Errorf("failed to seed request: %w", err)
		}
		if s.decide == nil {
			continue
		}
		if _, err := s.decide(ctx, manager, req.ID, s.note); err != nil {
			return true, fmt.Errorf("failed to seed decision: %w", err)
		}
	}

	if _, err := h.Leave.GrantPaidLeave(ctx, manager, leave.GrantCommand{
		EmployeeID: bob.ID,
		Type:       leave.GrantCompensation,
		Days:       decimal.NewFromInt(1),
		Reason:     "Weekend release support",
	}); err != nil {
		return true, fmt.Errorf("failed to seed paid leave: %w", err)
	}

	h.Log.WithFields(logrus.Fields{
		"employees": len(demoAccounts),
		"requests":  len(steps),
	}).Info("demo data seeded")
	return true, nil
}

// nextMonday returns the first Monday strictly after t, as a date.
func nextMonday(t time.Time) time.Time {
	d := leave.DateOnly(t)
	offset := (8 - int(d.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}
