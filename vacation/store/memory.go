// Package store provides in-memory vacation.TxStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/vacationflow/vacation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex
	d  *data
}

type balanceKey struct {
	UserID string
	Year   int
}

type data struct {
	users       map[string]vacation.User
	logins      map[string]string // login -> user ID
	departments map[string]vacation.Department
	balances    map[balanceKey]vacation.Balance
	requests    map[string]vacation.Request
	history     map[string][]vacation.HistoryEntry // request ID -> entries
}

func newData() *data {
	return &data{
		users:       make(map[string]vacation.User),
		logins:      make(map[string]string),
		departments: make(map[string]vacation.Department),
		balances:    make(map[balanceKey]vacation.Balance),
		requests:    make(map[string]vacation.Request),
		history:     make(map[string][]vacation.HistoryEntry),
	}
}

func NewMemory() *Memory {
	return &Memory{d: newData()}
}

var _ vacation.TxStore = (*Memory)(nil)

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d = newData()
	return nil
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole of fn, so transactions serialize.
func (m *Memory) WithTx(_ context.Context, fn func(vacation.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.clone()
	if err := fn(&view{d: m.d}); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.logins {
		c.logins[k] = v
	}
	for k, v := range d.departments {
		c.departments[k] = v
	}
	for k, v := range d.balances {
		c.balances[k] = v
	}
	for k, v := range d.requests {
		c.requests[k] = v
	}
	for k, v := range d.history {
		c.history[k] = append([]vacation.HistoryEntry(nil), v...)
	}
	return c
}

// =============================================================================
// LOCKED ACCESSORS - Memory delegates to data under the mutex
// =============================================================================

func (m *Memory) read(fn func(v *view)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(&view{d: m.d})
}

func (m *Memory) write(fn func(v *view) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&view{d: m.d})
}

func (m *Memory) CreateUser(ctx context.Context, u vacation.User) error {
	return m.write(func(v *view) error { return v.CreateUser(ctx, u) })
}

func (m *Memory) GetUser(ctx context.Context, id string) (u *vacation.User, err error) {
	m.read(func(v *view) { u, err = v.GetUser(ctx, id) })
	return
}

func (m *Memory) GetUserByLogin(ctx context.Context, login string) (u *vacation.User, err error) {
	m.read(func(v *view) { u, err = v.GetUserByLogin(ctx, login) })
	return
}

func (m *Memory) ListUsers(ctx context.Context) (us []vacation.User, err error) {
	m.read(func(v *view) { us, err = v.ListUsers(ctx) })
	return
}

func (m *Memory) ListUsersByDepartment(ctx context.Context, departmentID string) (us []vacation.User, err error) {
	m.read(func(v *view) { us, err = v.ListUsersByDepartment(ctx, departmentID) })
	return
}

func (m *Memory) CreateDepartment(ctx context.Context, dept vacation.Department) error {
	return m.write(func(v *view) error { return v.CreateDepartment(ctx, dept) })
}

func (m *Memory) GetDepartment(ctx context.Context, id string) (dept *vacation.Department, err error) {
	m.read(func(v *view) { dept, err = v.GetDepartment(ctx, id) })
	return
}

func (m *Memory) ListDepartments(ctx context.Context) (ds []vacation.Department, err error) {
	m.read(func(v *view) { ds, err = v.ListDepartments(ctx) })
	return
}

func (m *Memory) InsertBalanceIfAbsent(ctx context.Context, b vacation.Balance) error {
	return m.write(func(v *view) error { return v.InsertBalanceIfAbsent(ctx, b) })
}

func (m *Memory) GetBalance(ctx context.Context, userID string, year int) (b *vacation.Balance, err error) {
	m.read(func(v *view) { b, err = v.GetBalance(ctx, userID, year) })
	return
}

func (m *Memory) AddUsedDays(ctx context.Context, userID string, year int, delta int) error {
	return m.write(func(v *view) error { return v.AddUsedDays(ctx, userID, year, delta) })
}

func (m *Memory) UpdateBalance(ctx context.Context, userID string, year int, upd vacation.BalanceUpdate) error {
	return m.write(func(v *view) error { return v.UpdateBalance(ctx, userID, year, upd) })
}

func (m *Memory) ListBalances(ctx context.Context, year int) (bs []vacation.Balance, err error) {
	m.read(func(v *view) { bs, err = v.ListBalances(ctx, year) })
	return
}

func (m *Memory) CreateRequest(ctx context.Context, r vacation.Request) error {
	return m.write(func(v *view) error { return v.CreateRequest(ctx, r) })
}

func (m *Memory) GetRequest(ctx context.Context, id string) (r *vacation.Request, err error) {
	m.read(func(v *view) { r, err = v.GetRequest(ctx, id) })
	return
}

func (m *Memory) UpdateRequestStatus(ctx context.Context, r vacation.Request) error {
	return m.write(func(v *view) error { return v.UpdateRequestStatus(ctx, r) })
}

func (m *Memory) ListRequests(ctx context.Context, f vacation.RequestFilter) (rs []vacation.Request, err error) {
	m.read(func(v *view) { rs, err = v.ListRequests(ctx, f) })
	return
}

func (m *Memory) AppendHistory(ctx context.Context, h vacation.HistoryEntry) error {
	return m.write(func(v *view) error { return v.AppendHistory(ctx, h) })
}

func (m *Memory) ListHistory(ctx context.Context, requestID string) (hs []vacation.HistoryEntry, err error) {
	m.read(func(v *view) { hs, err = v.ListHistory(ctx, requestID) })
	return
}

// =============================================================================
// VIEW - Unlocked access, used directly inside WithTx
// =============================================================================

type view struct {
	d *data
}

func (v *view) CreateUser(_ context.Context, u vacation.User) error {
	if _, taken := v.d.logins[u.Login]; taken {
		return vacation.ErrConflict
	}
	v.d.users[u.ID] = u
	v.d.logins[u.Login] = u.ID
	return nil
}

func (v *view) GetUser(_ context.Context, id string) (*vacation.User, error) {
	u, ok := v.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (v *view) GetUserByLogin(ctx context.Context, login string) (*vacation.User, error) {
	id, ok := v.d.logins[login]
	if !ok {
		return nil, nil
	}
	return v.GetUser(ctx, id)
}

func (v *view) ListUsers(_ context.Context) ([]vacation.User, error) {
	return v.filterUsers(func(vacation.User) bool { return true }), nil
}

func (v *view) ListUsersByDepartment(_ context.Context, departmentID string) ([]vacation.User, error) {
	return v.filterUsers(func(u vacation.User) bool { return u.DepartmentID == departmentID }), nil
}

func (v *view) filterUsers(keep func(vacation.User) bool) []vacation.User {
	result := make([]vacation.User, 0)
	for _, u := range v.d.users {
		if keep(u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Login < result[j].Login })
	return result
}

func (v *view) CreateDepartment(_ context.Context, dept vacation.Department) error {
	if _, exists := v.d.departments[dept.ID]; exists {
		return vacation.ErrConflict
	}
	v.d.departments[dept.ID] = dept
	return nil
}

func (v *view) GetDepartment(_ context.Context, id string) (*vacation.Department, error) {
	dept, ok := v.d.departments[id]
	if !ok {
		return nil, nil
	}
	return &dept, nil
}

func (v *view) ListDepartments(_ context.Context) ([]vacation.Department, error) {
	result := make([]vacation.Department, 0, len(v.d.departments))
	for _, dept := range v.d.departments {
		result = append(result, dept)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (v *view) InsertBalanceIfAbsent(_ context.Context, b vacation.Balance) error {
	k := balanceKey{UserID: b.UserID, Year: b.Year}
	if _, exists := v.d.balances[k]; !exists {
		v.d.balances[k] = b
	}
	return nil
}

func (v *view) GetBalance(_ context.Context, userID string, year int) (*vacation.Balance, error) {
	b, ok := v.d.balances[balanceKey{UserID: userID, Year: year}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (v *view) AddUsedDays(_ context.Context, userID string, year int, delta int) error {
	k := balanceKey{UserID: userID, Year: year}
	b, ok := v.d.balances[k]
	if !ok {
		return &vacation.NotFoundError{Kind: "balance", ID: userID}
	}
	b.UsedDays += delta
	v.d.balances[k] = b
	return nil
}

func (v *view) UpdateBalance(_ context.Context, userID string, year int, upd vacation.BalanceUpdate) error {
	k := balanceKey{UserID: userID, Year: year}
	b, ok := v.d.balances[k]
	if !ok {
		return &vacation.NotFoundError{Kind: "balance", ID: userID}
	}
	if upd.TotalDays != nil {
		b.TotalDays = *upd.TotalDays
	}
	if upd.UsedDays != nil {
		b.UsedDays = *upd.UsedDays
	}
	v.d.balances[k] = b
	return nil
}

func (v *view) ListBalances(_ context.Context, year int) ([]vacation.Balance, error) {
	result := make([]vacation.Balance, 0)
	for k, b := range v.d.balances {
		if k.Year == year {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (v *view) CreateRequest(_ context.Context, r vacation.Request) error {
	if _, exists := v.d.requests[r.ID]; exists {
		return vacation.ErrConflict
	}
	v.d.requests[r.ID] = r
	return nil
}

func (v *view) GetRequest(_ context.Context, id string) (*vacation.Request, error) {
	r, ok := v.d.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (v *view) UpdateRequestStatus(_ context.Context, r vacation.Request) error {
	cur, ok := v.d.requests[r.ID]
	if !ok {
		return &vacation.NotFoundError{Kind: "request", ID: r.ID}
	}
	cur.Status = r.Status
	cur.ManagerComment = r.ManagerComment
	cur.UpdatedAt = r.UpdatedAt
	v.d.requests[r.ID] = cur
	return nil
}

func (v *view) ListRequests(_ context.Context, f vacation.RequestFilter) ([]vacation.Request, error) {
	result := make([]vacation.Request, 0)
	for _, r := range v.d.requests {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.DepartmentID != "" && v.d.users[r.UserID].DepartmentID != f.DepartmentID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.StartFrom != nil && r.Period.Start.Before(*f.StartFrom) {
			continue
		}
		if f.StartTo != nil && r.Period.Start.After(*f.StartTo) {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (v *view) AppendHistory(_ context.Context, h vacation.HistoryEntry) error {
	v.d.history[h.RequestID] = append(v.d.history[h.RequestID], h)
	return nil
}

func (v *view) ListHistory(_ context.Context, requestID string) ([]vacation.HistoryEntry, error) {
	return append([]vacation.HistoryEntry{}, v.d.history[requestID]...), nil
}
