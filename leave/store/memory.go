// Package store provides an in-memory leave.TxStore and leave.HolidayStore.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[leave.EmployeeID]leave.Employee
	requests  map[leave.RequestID]leave.Request
	grants    map[leave.GrantID]leave.Grant
	holidays  map[leave.HolidayID]leave.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[leave.EmployeeID]leave.Employee),
		requests:  make(map[leave.RequestID]leave.Request),
		grants:    make(map[leave.GrantID]leave.Grant),
		holidays:  make(map[leave.HolidayID]leave.Holiday),
	}
}

// view implements leave.Store without locking; callers hold mu.
type view struct {
	m *Memory
}

func (m *Memory) read(fn func(v view) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(view{m: m})
}

func (m *Memory) write(fn func(v view) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(view{m: m})
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) CreateEmployee(ctx context.Context, e leave.Employee) error {
	return m.write(func(v view) error { return v.CreateEmployee(ctx, e) })
}

func (m *Memory) GetEmployee(ctx context.Context, id leave.EmployeeID) (e *leave.Employee, err error) {
	err = m.read(func(v view) error { e, err = v.GetEmployee(ctx, id); return err })
	return e, err
}

func (m *Memory) GetEmployeeByEmail(ctx context.Context, email string) (e *leave.Employee, err error) {
	err = m.read(func(v view) error { e, err = v.GetEmployeeByEmail(ctx, email); return err })
	return e, err
}

func (m *Memory) ListEmployees(ctx context.Context, f leave.EmployeeFilter) (es []leave.Employee, err error) {
	err = m.read(func(v view) error { es, err = v.ListEmployees(ctx, f); return err })
	return es, err
}

func (m *Memory) SaveBalances(ctx context.Context, id leave.EmployeeID, b leave.Balances) error {
	return m.write(func(v view) error { return v.SaveBalances(ctx, id, b) })
}

func (v view) CreateEmployee(_ context.Context, e leave.Employee) error {
	for _, other := range v.m.employees {
		if strings.EqualFold(other.Email, e.Email) {
			return leave.ErrEmailTaken
		}
	}
	v.m.employees[e.ID] = e
	return nil
}

func (v view) GetEmployee(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	e, ok := v.m.employees[id]
	if !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	return &e, nil
}

func (v view) GetEmployeeByEmail(_ context.Context, email string) (*leave.Employee, error) {
	for _, e := range v.m.employees {
		if strings.EqualFold(e.Email, email) {
			e := e
			return &e, nil
		}
	}
	return nil, leave.ErrEmployeeNotFound
}

func (v view) ListEmployees(_ context.Context, f leave.EmployeeFilter) ([]leave.Employee, error) {
	var result []leave.Employee
	for _, e := range v.m.employees {
		if f.Matches(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v view) SaveBalances(_ context.Context, id leave.EmployeeID, b leave.Balances) error {
	e, ok := v.m.employees[id]
	if !ok {
		return leave.ErrEmployeeNotFound
	}
	e.Balances = b
	e.UpdatedAt = time.Now().UTC()
	v.m.employees[id] = e
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) SaveRequest(ctx context.Context, r leave.Request) error {
	return m.write(func(v view) error { return v.SaveRequest(ctx, r) })
}

func (m *Memory) GetRequest(ctx context.Context, id leave.RequestID) (r *leave.Request, err error) {
	err = m.read(func(v view) error { r, err = v.GetRequest(ctx, id); return err })
	return r, err
}

func (m *Memory) ListRequests(ctx context.Context, f leave.RequestFilter) (rs []leave.Request, err error) {
	err = m.read(func(v view) error { rs, err = v.ListRequests(ctx, f); return err })
	return rs, err
}

func (m *Memory) DeleteRequest(ctx context.Context, id leave.RequestID) error {
	return m.write(func(v view) error { return v.DeleteRequest(ctx, id) })
}

func (v view) SaveRequest(_ context.Context, r leave.Request) error {
	v.m.requests[r.ID] = r
	return nil
}

func (v view) GetRequest(_ context.Context, id leave.RequestID) (*leave.Request, error) {
	r, ok := v.m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &r, nil
}

func (v view) ListRequests(_ context.Context, f leave.RequestFilter) ([]leave.Request, error) {
	var result []leave.Request
	for _, r := range v.m.requests {
		if f.Matches(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (v view) DeleteRequest(_ context.Context, id leave.RequestID) error {
	delete(v.m.requests, id)
	return nil
}

// =============================================================================
// GRANTS
// =============================================================================

func (m *Memory) SaveGrant(ctx context.Context, g leave.Grant) error {
	return m.write(func(v view) error { return v.SaveGrant(ctx, g) })
}

func (m *Memory) GetGrant(ctx context.Context, id leave.GrantID) (g *leave.Grant, err error) {
	err = m.read(func(v view) error { g, err = v.GetGrant(ctx, id); return err })
	return g, err
}

func (m *Memory) ListGrants(ctx context.Context, f leave.GrantFilter) (gs []leave.Grant, err error) {
	err = m.read(func(v view) error { gs, err = v.ListGrants(ctx, f); return err })
	return gs, err
}

func (m *Memory) DeleteGrant(ctx context.Context, id leave.GrantID) error {
	return m.write(func(v view) error { return v.DeleteGrant(ctx, id) })
}

func (v view) SaveGrant(_ context.Context, g leave.Grant) error {
	v.m.grants[g.ID] = g
	return nil
}

func (v view) GetGrant(_ context.Context, id leave.GrantID) (*leave.Grant, error) {
	g, ok := v.m.grants[id]
	if !ok {
		return nil, leave.ErrGrantNotFound
	}
	return &g, nil
}

func (v view) ListGrants(_ context.Context, f leave.GrantFilter) ([]leave.Grant, error) {
	var result []leave.Grant
	for _, g := range v.m.grants {
		if f.EmployeeID == "" || g.EmployeeID == f.EmployeeID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GrantedAt.After(result[j].GrantedAt) })
	return result, nil
}

func (v view) DeleteGrant(_ context.Context, id leave.GrantID) error {
	delete(v.m.grants, id)
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h leave.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) GetHoliday(_ context.Context, id leave.HolidayID) (*leave.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.holidays[id]
	if !ok {
		return nil, leave.ErrHolidayNotFound
	}
	return &h, nil
}

func (m *Memory) ListHolidays(_ context.Context, f leave.HolidayFilter) ([]leave.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []leave.Holiday
	for _, h := range m.holidays {
		if f.Matches(h) {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id leave.HolidayID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holidays, id)
	return nil
}

func (m *Memory) HolidayExists(_ context.Context, date time.Time, country string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	day := leave.DateOnly(date)
	for _, h := range m.holidays {
		if h.Country == country && leave.DateOnly(h.Date).Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// WithTx executes fn while holding the write lock. State is snapshotted
// first and restored if fn returns an error.
func (m *Memory) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(view{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	employees map[leave.EmployeeID]leave.Employee
	requests  map[leave.RequestID]leave.Request
	grants    map[leave.GrantID]leave.Grant
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		employees: make(map[leave.EmployeeID]leave.Employee, len(m.employees)),
		requests:  make(map[leave.RequestID]leave.Request, len(m.requests)),
		grants:    make(map[leave.GrantID]leave.Grant, len(m.grants)),
	}
	for k, v := range m.employees {
		s.employees[k] = v
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.grants {
		s.grants[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.employees = s.employees
	m.requests = s.requests
	m.grants = s.grants
}
