/*
Package notify sends leave emails.

PURPOSE:
  Implements leave.Notifier over a Mailer:
  - RequestCreated:   every manager/admin with notifications enabled
  - RequestDecided:   the employee, on approval or rejection
  - PaidLeaveGranted: the employee

DELIVERY:
  Each notification renders an embedded HTML template and is sent on its
  own goroutine, so a slow SMTP server never holds up the API. Failures
  are logged. Close waits for every in-flight send.

USAGE:
  n, err := notify.New(store, notify.NewMailer(cfg.SMTP, log), cfg.FrontendURL)
  svc := leave.NewService(store, holidays, n, policy)
  defer n.Close()
*/
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/leave"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notifier implements leave.Notifier.
type Notifier struct {
	Store       leave.Store
	Mailer      Mailer
	FrontendURL string
	Log         logrus.FieldLogger
	Timeout     time.Duration

	templates *template.Template
	wg        sync.WaitGroup
}

var _ leave.Notifier = (*Notifier)(nil)

func New(store leave.Store, mailer Mailer, frontendURL string) (*Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Notifier{
		Store:       store,
		Mailer:      mailer,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		Log:         logrus.WithField("component", "notify"),
		Timeout:     30 * time.Second,
		templates:   tmpl,
	}, nil
}

// =============================================================================
// TEMPLATE DATA
// =============================================================================

type requestData struct {
	RecipientName string
	EmployeeName  string
	Type          leave.LeaveType
	StartDate     string
	EndDate       string
	Days          string
	Reason        string
	Status        leave.Status
	Comments      string
	Link          string
}

type grantData struct {
	EmployeeName string
	Type         leave.GrantType
	Days         string
	Reason       string
	Credited     bool
}

func newRequestData(r leave.Request, e leave.Employee) requestData {
	return requestData{
		EmployeeName: e.Name,
		Type:         r.Type,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		Days:         r.TotalDays.StringFixed(1),
		Reason:       r.Reason,
		Status:       r.Status,
		Comments:     r.ApprovalComments,
	}
}

// =============================================================================
// leave.Notifier
// =============================================================================

func (n *Notifier) RequestCreated(ctx context.Context, r leave.Request, employee leave.Employee) {
	n.dispatch(ctx, func(ctx context.Context) error {
		approvers, err := n.Store.ListEmployees(ctx, leave.EmployeeFilter{Roles: []leave.Role{leave.RoleManager, leave.RoleAdmin}})
		if err != nil {
			return fmt.Errorf("failed to list approvers: %w", err)
		}
		data := newRequestData(r, employee)
		data.Link = n.link("/leave-requests/" + string(r.ID))
		subject := fmt.Sprintf("New leave request from %s", employee.Name)

		var firstErr error
		for _, a := range approvers {
			if !a.EmailNotifications || a.ID == employee.ID {
				continue
			}
			data.RecipientName = a.Name
			if err := n.send(ctx, a.Email, subject, "request_created.html", data); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})
}

func (n *Notifier) RequestDecided(ctx context.Context, r leave.Request, employee leave.Employee) {
	if !employee.EmailNotifications {
		return
	}
	n.dispatch(ctx, func(ctx context.Context) error {
		data := newRequestData(r, employee)
		data.Link = n.link("/leave-requests")
		subject := fmt.Sprintf("Your leave request was %s", r.Status)
		return n.send(ctx, employee.Email, subject, "request_decided.html", data)
	})
}

func (n *Notifier) PaidLeaveGranted(ctx context.Context, g leave.Grant, employee leave.Employee) {
	if !employee.EmailNotifications {
		return
	}
	n.dispatch(ctx, func(ctx context.Context) error {
		data := grantData{
			EmployeeName: employee.Name,
			Type:         g.Type,
			Days:         g.Days.StringFixed(1),
			Reason:       g.Reason,
			Credited:     !g.DeductFromBalance,
		}
		return n.send(ctx, employee.Email, "Paid leave granted", "paid_leave_granted.html", data)
	})
}

// SendTest delivers a test message synchronously.
func (n *Notifier) SendTest(ctx context.Context, to string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: recipient is required", leave.ErrInvalidInput)
	}
	data := struct{ SentAt string }{SentAt: time.Now().UTC().Format(time.RFC1123)}
	return n.send(ctx, to, "Leave system test email", "test.html", data)
}

// Close waits for in-flight notifications.
func (n *Notifier) Close() {
	n.wg.Wait()
}

// =============================================================================
// HELPERS
// =============================================================================

// dispatch runs fn in the background, detached from ctx cancellation.
func (n *Notifier) dispatch(ctx context.Context, fn func(context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.Timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			n.Log.WithError(err).Error("failed to send notification")
		}
	}()
}

func (n *Notifier) send(ctx context.Context, to, subject, name string, data any) error {
	var body bytes.Buffer
	if err := n.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	if err := n.Mailer.Send(ctx, to, subject, body.String()); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}
	return nil
}

func (n *Notifier) link(path string) string {
	if n.FrontendURL == "" {
		return ""
	}
	return n.FrontendURL + path
}
