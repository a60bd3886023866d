/*
Package postgres provides a PostgreSQL implementation of the leave storage
interfaces on top of pgx.

PURPOSE:
  Same contract as store/sqlite (leave.TxStore + leave.HolidayStore) for
  deployments that run several server processes against one database.

CONCURRENCY:
  No process-local lock. WithTx opens a READ COMMITTED transaction and the
  queries bound to it load employees and requests with SELECT ... FOR
  UPDATE, so two approvals of the same request, or two debits of the same
  balance, serialize on the row lock.

MIGRATIONS:
  SQL files in migrations/ are embedded and applied in name order by
  Migrate, each in its own transaction, recorded in schema_migrations.

NUMBERS:
  Balances and day totals are NUMERIC(6,1). They cross the wire as text
  and are parsed with decimal.NewFromString.
*/
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements leave.TxStore and leave.HolidayStore using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for databaseURL and runs pending migrations.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the pool. It always returns nil.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies embedded migrations that are not yet recorded.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`,
	); err != nil {
		return err
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		version := strings.TrimSuffix(strings.TrimPrefix(file, "migrations/"), ".sql")

		var applied bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}

		sqlBytes, err := migrations.ReadFile(file)
		if err != nil {
			return err
		}

		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// leave.Store
// =============================================================================

func (s *Store) q() queries { return queries{db: s.pool} }

func (s *Store) CreateEmployee(ctx context.Context, e leave.Employee) error {
	return s.q().CreateEmployee(ctx, e)
}

func (s *Store) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	return s.q().GetEmployee(ctx, id)
}

func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*leave.Employee, error) {
	return s.q().GetEmployeeByEmail(ctx, email)
}

func (s *Store) ListEmployees(ctx context.Context, f leave.EmployeeFilter) ([]leave.Employee, error) {
	return s.q().ListEmployees(ctx, f)
}

func (s *Store) SaveBalances(ctx context.Context, id leave.EmployeeID, b leave.Balances) error {
	return s.q().SaveBalances(ctx, id, b)
}

func (s *Store) SaveRequest(ctx context.Context, r leave.Request) error {
	return s.q().SaveRequest(ctx, r)
}

func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	return s.q().GetRequest(ctx, id)
}

func (s *Store) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	return s.q().ListRequests(ctx, f)
}

func (s *Store) DeleteRequest(ctx context.Context, id leave.RequestID) error {
	return s.q().DeleteRequest(ctx, id)
}

func (s *Store) SaveGrant(ctx context.Context, g leave.Grant) error {
	return s.q().SaveGrant(ctx, g)
}

func (s *Store) GetGrant(ctx context.Context, id leave.GrantID) (*leave.Grant, error) {
	return s.q().GetGrant(ctx, id)
}

func (s *Store) ListGrants(ctx context.Context, f leave.GrantFilter) ([]leave.Grant, error) {
	return s.q().ListGrants(ctx, f)
}

func (s *Store) DeleteGrant(ctx context.Context, id leave.GrantID) error {
	return s.q().DeleteGrant(ctx, id)
}

// WithTx executes fn within a transaction whose loads take row locks.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(queries{db: tx, lock: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// =============================================================================
// QUERIES
// =============================================================================

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db   querier
	lock bool
}

func (q queries) forUpdate() string {
	if q.lock {
		return " FOR UPDATE"
	}
	return ""
}

const employeeColumns = `id, name, email, password_hash, role,
	annual_balance::text, sick_balance::text, personal_balance::text, emergency_balance::text,
	email_notifications, created_at, updated_at`

func (q queries) CreateEmployee(ctx context.Context, e leave.Employee) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO employees (id, name, email, password_hash, role,
			annual_balance, sick_balance, personal_balance, emergency_balance,
			email_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(e.ID), e.Name, strings.ToLower(e.Email), e.PasswordHash, string(e.Role),
		e.Balances.Annual.String(), e.Balances.Sick.String(),
		e.Balances.Personal.String(), e.Balances.Emergency.String(),
		e.EmailNotifications, e.CreatedAt, e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return leave.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (q queries) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	row := q.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`+q.forUpdate(), string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, leave.ErrEmployeeNotFound
	}
	return e, err
}

func (q queries) GetEmployeeByEmail(ctx context.Context, email string) (*leave.Employee, error) {
	row := q.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, strings.ToLower(email))
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, leave.ErrEmployeeNotFound
	}
	return e, err
}

func (q queries) ListEmployees(ctx context.Context, f leave.EmployeeFilter) ([]leave.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []any
	if len(f.Roles) > 0 {
		roles := make([]string, len(f.Roles))
		for i, r := range f.Roles {
			roles[i] = string(r)
		}
		query += ` WHERE role = ANY($1)`
		args = append(args, roles)
	}
	query += ` ORDER BY name ASC`

	rows, err := q.db.Query(ctx, query, args...)
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
	tag, err := q.db.Exec(ctx, `
		UPDATE employees SET
			annual_balance = $1::numeric, sick_balance = $2::numeric,
			personal_balance = $3::numeric, emergency_balance = $4::numeric,
			updated_at = now()
		WHERE id = $5`,
		b.Annual.String(), b.Sick.String(), b.Personal.String(), b.Emergency.String(), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to save balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

const requestColumns = `id, employee_id, leave_type, start_date, end_date, duration,
	total_days::text, reason, status, approved_by, approved_at, approval_comments,
	created_at, updated_at`

func (q queries) SaveRequest(ctx context.Context, r leave.Request) error {
	var approvedBy *string
	if r.ApprovedBy != "" {
		s := string(r.ApprovedBy)
		approvedBy = &s
	}

	_, err := q.db.Exec(ctx, `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, duration,
			total_days, reason, status, approved_by, approved_at, approval_comments,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			leave_type = EXCLUDED.leave_type,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			duration = EXCLUDED.duration,
			total_days = EXCLUDED.total_days,
			reason = EXCLUDED.reason,
			status = EXCLUDED.status,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			approval_comments = EXCLUDED.approval_comments,
			updated_at = EXCLUDED.updated_at`,
		string(r.ID), string(r.EmployeeID), string(r.Type), r.StartDate, r.EndDate, string(r.Duration),
		r.TotalDays.String(), r.Reason, string(r.Status), approvedBy, r.ApprovedAt, r.ApprovalComments,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

func (q queries) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	row := q.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`+q.forUpdate(), string(id))
	r, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	return r, err
}

func (q queries) ListRequests(ctx context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.EmployeeID != "" {
		add("employee_id = $%d", string(f.EmployeeID))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Type != "" {
		add("leave_type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("start_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("end_date <= $%d", *f.To)
	}
	if f.CreatedFrom != nil {
		add("created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= $%d", *f.CreatedTo)
	}

	query := `SELECT ` + requestColumns + ` FROM leave_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.db.Query(ctx, query, args...)
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
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func (q queries) DeleteRequest(ctx context.Context, id leave.RequestID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, string(id))
	return err
}

const grantColumns = `id, employee_id, granted_by, grant_type, days::text, reason, notes,
	deduct_from_balance, granted_at, updated_at`

func (q queries) SaveGrant(ctx context.Context, g leave.Grant) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO paid_leave (id, employee_id, granted_by, grant_type, days, reason, notes,
			deduct_from_balance, granted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			reason = EXCLUDED.reason,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at`,
		string(g.ID), string(g.EmployeeID), string(g.GrantedBy), string(g.Type), g.Days.String(),
		g.Reason, g.Notes, g.DeductFromBalance, g.GrantedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save paid leave: %w", err)
	}
	return nil
}

func (q queries) GetGrant(ctx context.Context, id leave.GrantID) (*leave.Grant, error) {
	row := q.db.QueryRow(ctx, `SELECT `+grantColumns+` FROM paid_leave WHERE id = $1`, string(id))
	g, err := scanGrant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, leave.ErrGrantNotFound
	}
	return g, err
}

func (q queries) ListGrants(ctx context.Context, f leave.GrantFilter) ([]leave.Grant, error) {
	query := `SELECT ` + grantColumns + ` FROM paid_leave`
	var args []any
	if f.EmployeeID != "" {
		query += ` WHERE employee_id = $1`
		args = append(args, string(f.EmployeeID))
	}
	query += ` ORDER BY granted_at DESC`

	rows, err := q.db.Query(ctx, query, args...)
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
	_, err := q.db.Exec(ctx, `DELETE FROM paid_leave WHERE id = $1`, string(id))
	return err
}

// =============================================================================
// HOLIDAYS (leave.HolidayStore)
// =============================================================================

const holidayColumns = `id, name, date, description, country, active, created_at, updated_at`

func (s *Store) SaveHoliday(ctx context.Context, h leave.Holiday) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO public_holidays (`+holidayColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			date = EXCLUDED.date,
			description = EXCLUDED.description,
			country = EXCLUDED.country,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`,
		string(h.ID), h.Name, leave.DateOnly(h.Date), h.Description, h.Country, h.Active,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) GetHoliday(ctx context.Context, id leave.HolidayID) (*leave.Holiday, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+holidayColumns+` FROM public_holidays WHERE id = $1`, string(id))
	h, err := scanHoliday(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, leave.ErrHolidayNotFound
	}
	return h, err
}

func (s *Store) ListHolidays(ctx context.Context, f leave.HolidayFilter) ([]leave.Holiday, error) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Country != "" {
		add("country = $%d", f.Country)
	}
	if f.Year != 0 {
		add("EXTRACT(YEAR FROM date) = $%d", f.Year)
	}
	if f.From != nil {
		add("date >= $%d", leave.DateOnly(*f.From))
	}
	if f.To != nil {
		add("date <= $%d", leave.DateOnly(*f.To))
	}
	if f.ActiveOnly {
		where = append(where, "active")
	}

	query := `SELECT ` + holidayColumns + ` FROM public_holidays`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date ASC, name ASC`

	rows, err := s.pool.Query(ctx, query, args...)
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
	_, err := s.pool.Exec(ctx, `DELETE FROM public_holidays WHERE id = $1`, string(id))
	return err
}

func (s *Store) HolidayExists(ctx context.Context, date time.Time, country string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM public_holidays WHERE date = $1 AND country = $2)`,
		leave.DateOnly(date), country,
	).Scan(&exists)
	return exists, err
}

// =============================================================================
// SCANNING
// =============================================================================

func scanEmployee(row pgx.Row) (*leave.Employee, error) {
	var e leave.Employee
	var id, role string
	var annual, sick, personal, emergency string
	err := row.Scan(
		&id, &e.Name, &e.Email, &e.PasswordHash, &role,
		&annual, &sick, &personal, &emergency,
		&e.EmailNotifications, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ID = leave.EmployeeID(id)
	e.Role = leave.Role(role)
	if e.Balances, err = parseBalances(annual, sick, personal, emergency); err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func scanRequest(row pgx.Row) (*leave.Request, error) {
	var r leave.Request
	var id, employeeID, leaveType, duration, totalDays, status string
	var approvedBy *string
	err := row.Scan(
		&id, &employeeID, &leaveType, &r.StartDate, &r.EndDate, &duration,
		&totalDays, &r.Reason, &status, &approvedBy, &r.ApprovedAt, &r.ApprovalComments,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = leave.RequestID(id)
	r.EmployeeID = leave.EmployeeID(employeeID)
	r.Type = leave.LeaveType(leaveType)
	r.Duration = leave.Duration(duration)
	r.Status = leave.Status(status)
	if approvedBy != nil {
		r.ApprovedBy = leave.EmployeeID(*approvedBy)
	}
	if r.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return nil, fmt.Errorf("invalid total_days %q: %w", totalDays, err)
	}
	r.StartDate = leave.DateOnly(r.StartDate)
	r.EndDate = leave.DateOnly(r.EndDate)
	return &r, nil
}

func scanGrant(row pgx.Row) (*leave.Grant, error) {
	var g leave.Grant
	var id, employeeID, grantedBy, grantType, days string
	err := row.Scan(
		&id, &employeeID, &grantedBy, &grantType, &days, &g.Reason, &g.Notes,
		&g.DeductFromBalance, &g.GrantedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.ID = leave.GrantID(id)
	g.EmployeeID = leave.EmployeeID(employeeID)
	g.GrantedBy = leave.EmployeeID(grantedBy)
	g.Type = leave.GrantType(grantType)
	if g.Days, err = decimal.NewFromString(days); err != nil {
		return nil, fmt.Errorf("invalid days %q: %w", days, err)
	}
	return &g, nil
}

func scanHoliday(row pgx.Row) (*leave.Holiday, error) {
	var h leave.Holiday
	var id string
	err := row.Scan(&id, &h.Name, &h.Date, &h.Description, &h.Country, &h.Active, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	h.ID = leave.HolidayID(id)
	h.Date = leave.DateOnly(h.Date)
	return &h, nil
}

func parseBalances(annual, sick, personal, emergency string) (leave.Balances, error) {
	var b leave.Balances
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&b.Annual, annual}, {&b.Sick, sick}, {&b.Personal, personal}, {&b.Emergency, emergency},
	} {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return leave.Balances{}, fmt.Errorf("invalid balance %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
