/*
Package sqlite provides a SQLite-backed implementation of the leave storage
interfaces.

PURPOSE:
  Implements leave.TxStore (employees with balances, leave requests,
  paid-leave grants) and leave.HolidayStore on a single SQLite file. The
  postgres package carries the same schema in the PostgreSQL dialect.

KEY TABLES:
  employees:       identity, role and the four balance counters
  leave_requests:  one row per request; status moves, totals are fixed
  paid_leave:      grants of extra paid leave
  public_holidays: holiday calendar, unique per (date, country, name)

NUMBERS AND DATES:
  Day amounts are stored as decimal TEXT ("2.5") and scanned back through
  decimal.Decimal's sql.Scanner. Calendar dates are "2006-01-02";
  timestamps are RFC3339 with nanoseconds, always UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx holds the write lock for the
  whole SQL transaction, so a read-check-write sequence (approve: load
  request, check transition, debit balance, save) cannot interleave with
  another writer. Statements inside a transaction go through the unlocked
  queries type; calling locked Store methods from inside fn deadlocks.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, holidays, notifier, policy)

SEE ALSO:
  - leave/store.go:    interface definitions
  - leave/store:       in-memory implementation for tests
  - store/postgres:    PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/leave-engine/leave"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = time.RFC3339Nano
)

// Store implements leave.TxStore and leave.HolidayStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'employee',
		annual_balance TEXT NOT NULL DEFAULT '0',
		sick_balance TEXT NOT NULL DEFAULT '0',
		personal_balance TEXT NOT NULL DEFAULT '0',
		emergency_balance TEXT NOT NULL DEFAULT '0',
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role ON employees(role);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration TEXT NOT NULL DEFAULT 'full_day',
		total_days TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		approved_by TEXT,
		approved_at TEXT,
		approval_comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_dates
		ON leave_requests(start_date, end_date);

	CREATE TABLE IF NOT EXISTS paid_leave (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		granted_by TEXT NOT NULL,
		grant_type TEXT NOT NULL,
		days TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		deduct_from_balance BOOLEAN NOT NULL DEFAULT FALSE,
		granted_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_paid_leave_employee
		ON paid_leave(employee_id, granted_at DESC);

	CREATE TABLE IF NOT EXISTS public_holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_public_holidays_country_date
		ON public_holidays(country, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_public_holidays_unique
		ON public_holidays(country, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOCKED ENTRY POINTS (leave.Store)
// =============================================================================

func (s *Store) read(fn func(q queries) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(queries{db: s.db})
}

func (s *Store) write(fn func(q queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(queries{db: s.db})
}

func (s *Store) CreateEmployee(ctx context.Context, e leave.Employee) error {
	return s.write(func(q queries) error { return q.CreateEmployee(ctx, e) })
}

func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (e *leave.Employee, err error) {
	err = s.read(func(q queries) error { e, err = q.GetEmployee(ctx, id); return err })
	return e, err
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (e *leave.Employee, err error) {
	err = s.read(func(q queries) error { e, err = q.GetEmployeeByEmail(ctx, email); return err })
	return e, err
}

func (s *Store) ListEmployees(ctx context.Context, f leave.EmployeeFilter) (es []leave.Employee, err error) {
	err = s.read(func(q queries) error { es, err = q.ListEmployees(ctx, f); return err })
	return es, err
}

func (s *Store) SaveBalances(ctx context.Context, id leave.EmployeeID, b leave.Balances) error {
	return s.write(func(q queries) error { return q.SaveBalances(ctx, id, b) })
}

func (s *Store) SaveRequest(ctx context.Context, r leave.Request) error {
	return s.write(func(q queries) error { return q.SaveRequest(ctx, r) })
}

func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (r *leave.Request, err error) {
	err = s.read(func(q queries) error { r, err = q.GetRequest(ctx, id); return err })
	return r, err
}

func (s *Store) ListRequests(ctx context.Context, f leave.RequestFilter) (rs []leave.Request, err error) {
	err = s.read(func(q queries) error { rs, err = q.ListRequests(ctx, f); return err })
	return rs, err
}

func (s *Store) DeleteRequest(ctx context.Context, id leave.RequestID) error {
	return s.write(func(q queries) error { return q.DeleteRequest(ctx, id) })
}

func (s *Store) SaveGrant(ctx context.Context, g leave.Grant) error {
	return s.write(func(q queries) error { return q.SaveGrant(ctx, g) })
}

func (s *Store) GetGrant(ctx context.Context, id leave.GrantID) (g *leave.Grant, err error) {
	err = s.read(func(q queries) error { g, err = q.GetGrant(ctx, id); return err })
	return g, err
}

func (s *Store) ListGrants(ctx context.Context, f leave.GrantFilter) (gs []leave.Grant, err error) {
	err = s.read(func(q queries) error { gs, err = q.ListGrants(ctx, f); return err })
	return gs, err
}

func (s *Store) DeleteGrant(ctx context.Context, id leave.GrantID) error {
	return s.write(func(q queries) error { return q.DeleteGrant(ctx, id) })
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// QUERIES - unlocked, bound to *sql.DB or *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

const employeeColumns = `id, name, email, password_hash, role,
	annual_balance, sick_balance, personal_balance, emergency_balance,
	email_notifications, created_at, updated_at`

func (q queries) CreateEmployee(ctx context.Context, e leave.Employee) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, strings.ToLower(e.Email), e.PasswordHash, e.Role,
		e.Balances.Annual.String(), e.Balances.Sick.String(),
		e.Balances.Personal.String(), e.Balances.Emergency.String(),
		e.EmailNotifications, stamp(e.CreatedAt), stamp(e.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return leave.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (q queries) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrEmployeeNotFound
	}
	return e, err
}

func (q queries) GetEmployeeByEmail(ctx context.Context, email string) (*leave.Employee, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = ?`,
		strings.ToLower(email))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrEmployeeNotFound
	}
	return e, err
}

func (q queries) ListEmployees(ctx context.Context, f leave.EmployeeFilter) ([]leave.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if len(f.Roles) > 0 {
		query += ` WHERE role IN (?` + strings.Repeat(", ?", len(f.Roles)-1) + `)`
		for _, r := range f.Roles {
			args = append(args, r)
		}
	}
	query += ` ORDER BY name ASC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (q queries) SaveBalances(ctx context.Context, id leave.EmployeeID, b leave.Balances) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE employees SET
			annual_balance = ?, sick_balance = ?, personal_balance = ?, emergency_balance = ?,
			updated_at = ?
		WHERE id = ?`,
		b.Annual.String(), b.Sick.String(), b.Personal.String(), b.Emergency.String(),
		stamp(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save balances: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

const requestColumns = `id, employee_id, leave_type, start_date, end_date, duration,
	total_days, reason, status, approved_by, approved_at, approval_comments,
	created_at, updated_at`

func (q queries) SaveRequest(ctx context.Context, r leave.Request) error {
	var approvedAt sql.NullString
	if r.ApprovedAt != nil {
		approvedAt = nullString(stamp(*r.ApprovedAt))
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			duration = excluded.duration,
			total_days = excluded.total_days,
			reason = excluded.reason,
			status = excluded.status,
			approved_by = excluded.approved_by,
			approved_at = excluded.approved_at,
			approval_comments = excluded.approval_comments,
			updated_at = excluded.updated_at`,
		r.ID, r.EmployeeID, r.Type, r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout),
		r.Duration, r.TotalDays.String(), r.Reason, r.Status,
		nullString(string(r.ApprovedBy)), approvedAt, r.ApprovalComments,
		stamp(r.CreatedAt), stamp(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

func (q queries) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	return r, err
}

func (q queries) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		where = append(where, cond)
		args = append(args, arg)
	}
	if f.EmployeeID != "" {
		add("employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}
	if f.Type != "" {
		add("leave_type = ?", f.Type)
	}
	if f.From != nil {
		add("start_date >= ?", f.From.Format(dateLayout))
	}
	if f.To != nil {
		add("end_date <= ?", f.To.Format(dateLayout))
	}

	query := `SELECT ` + requestColumns + ` FROM leave_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		// created-at bounds compare instants, not text
		if f.Matches(*r) {
			requests = append(requests, *r)
		}
	}
	return requests, rows.Err()
}

func (q queries) DeleteRequest(ctx context.Context, id leave.RequestID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	return err
}

const grantColumns = `id, employee_id, granted_by, grant_type, days, reason, notes,
	deduct_from_balance, granted_at, updated_at`

func (q queries) SaveGrant(ctx context.Context, g leave.Grant) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO paid_leave (`+grantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			reason = excluded.reason,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		g.ID, g.EmployeeID, g.GrantedBy, g.Type, g.Days.String(), g.Reason, g.Notes,
		g.DeductFromBalance, stamp(g.GrantedAt), stamp(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save paid leave: %w", err)
	}
	return nil
}

func (q queries) GetGrant(ctx context.Context, id leave.GrantID) (*leave.Grant, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+grantColumns+` FROM paid_leave WHERE id = ?`, id)
	g, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrGrantNotFound
	}
	return g, err
}

func (q queries) ListGrants(ctx context.Context, f leave.GrantFilter) ([]leave.Grant, error) {
	query := `SELECT ` + grantColumns + ` FROM paid_leave`
	var args []any
	if f.EmployeeID != "" {
		query += ` WHERE employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	query += ` ORDER BY granted_at DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid leave: %w", err)
	}
	defer rows.Close()

	var grants []leave.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

func (q queries) DeleteGrant(ctx context.Context, id leave.GrantID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM paid_leave WHERE id = ?`, id)
	return err
}

// =============================================================================
// HOLIDAYS (leave.HolidayStore)
// =============================================================================

const holidayColumns = `id, name, date, description, country, active, created_at, updated_at`

func (s *Store) SaveHoliday(ctx context.Context, h leave.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO public_holidays (`+holidayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			description = excluded.description,
			country = excluded.country,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		h.ID, h.Name, h.Date.Format(dateLayout), h.Description, h.Country, h.Active,
		stamp(h.CreatedAt), stamp(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) GetHoliday(ctx context.Context, id leave.HolidayID) (*leave.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+holidayColumns+` FROM public_holidays WHERE id = ?`, id)
	h, err := scanHoliday(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrHolidayNotFound
	}
	return h, err
}

func (s *Store) ListHolidays(ctx context.Context, f leave.HolidayFilter) ([]leave.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.Country != "" {
		where = append(where, "country = ?")
		args = append(args, f.Country)
	}
	if f.Year != 0 {
		where = append(where, "date >= ? AND date <= ?")
		args = append(args, fmt.Sprintf("%04d-01-01", f.Year), fmt.Sprintf("%04d-12-31", f.Year))
	}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	if f.ActiveOnly {
		where = append(where, "active = TRUE")
	}

	query := `SELECT ` + holidayColumns + ` FROM public_holidays`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []leave.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, *h)
	}
	return holidays, rows.Err()
}

func (s *Store) DeleteHoliday(ctx context.Context, id leave.HolidayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM public_holidays WHERE id = ?`, id)
	return err
}

func (s *Store) HolidayExists(ctx context.Context, date time.Time, country string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM public_holidays WHERE date = ? AND country = ?`,
		date.Format(dateLayout), country,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*leave.Employee, error) {
	var e leave.Employee
	var createdAt, updatedAt string
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.PasswordHash, &e.Role,
		&e.Balances.Annual, &e.Balances.Sick, &e.Balances.Personal, &e.Balances.Emergency,
		&e.EmailNotifications, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseStamp(createdAt)
	e.UpdatedAt = parseStamp(updatedAt)
	return &e, nil
}

func scanRequest(row scanner) (*leave.Request, error) {
	var r leave.Request
	var start, end, createdAt, updatedAt string
	var approvedBy, approvedAt sql.NullString
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Type, &start, &end, &r.Duration,
		&r.TotalDays, &r.Reason, &r.Status, &approvedBy, &approvedAt, &r.ApprovalComments,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.StartDate = parseDate(start)
	r.EndDate = parseDate(end)
	r.CreatedAt = parseStamp(createdAt)
	r.UpdatedAt = parseStamp(updatedAt)
	r.ApprovedBy = leave.EmployeeID(approvedBy.String)
	if approvedAt.Valid {
		t := parseStamp(approvedAt.String)
		r.ApprovedAt = &t
	}
	return &r, nil
}

func scanGrant(row scanner) (*leave.Grant, error) {
	var g leave.Grant
	var grantedAt, updatedAt string
	err := row.Scan(
		&g.ID, &g.EmployeeID, &g.GrantedBy, &g.Type, &g.Days, &g.Reason, &g.Notes,
		&g.DeductFromBalance, &grantedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.GrantedAt = parseStamp(grantedAt)
	g.UpdatedAt = parseStamp(updatedAt)
	return &g, nil
}

func scanHoliday(row scanner) (*leave.Holiday, error) {
	var h leave.Holiday
	var date, createdAt, updatedAt string
	err := row.Scan(&h.ID, &h.Name, &date, &h.Description, &h.Country, &h.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	h.Date = parseDate(date)
	h.CreatedAt = parseStamp(createdAt)
	h.UpdatedAt = parseStamp(updatedAt)
	return &h, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(s string) time.Time {
	t, _ := time.Parse(stampLayout, s)
	return t
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
