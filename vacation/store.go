/*
store.go - Persistence interface for the vacation engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:   Users, departments, balances, requests and history
  TxStore: Store plus WithTx for atomic multi-entity writes

LOOKUPS:
  Get* methods return (nil, nil) when the row does not exist. The domain
  layer turns that into a NotFoundError with the right kind.

ATOMIC BALANCE MUTATION:
  AddUsedDays MUST be a single atomic increment at the storage layer
  (UPDATE ... SET used_days = used_days + ?), never a read-then-write in
  application code. Concurrent approvals for the same (user, year) then
  never lose an update.

HISTORY:
  History is append-only. There is no update or delete.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - vacation/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: Balance operations on top of BalanceStore
  - request.go: Uses WithTx for transitions
*/
package vacation

import "context"

// =============================================================================
// ENTITY STORES
// =============================================================================

type UserStore interface {
	// CreateUser fails with ErrConflict when the login is taken.
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersByDepartment(ctx context.Context, departmentID string) ([]User, error)
}

type DepartmentStore interface {
	CreateDepartment(ctx context.Context, d Department) error
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
}

type BalanceStore interface {
	// InsertBalanceIfAbsent is a no-op when (UserID, Year) already exists.
	InsertBalanceIfAbsent(ctx context.Context, b Balance) error
	GetBalance(ctx context.Context, userID string, year int) (*Balance, error)

	// AddUsedDays atomically adds delta (may be negative) to used_days.
	// Returns ErrNotFound when the (user, year) row is missing.
	AddUsedDays(ctx context.Context, userID string, year int, delta int) error

	// UpdateBalance overwrites the non-nil fields. ErrNotFound when missing.
	UpdateBalance(ctx context.Context, userID string, year int, upd BalanceUpdate) error

	// ListBalances returns all balances for a year.
	ListBalances(ctx context.Context, year int) ([]Balance, error)
}

// RequestFilter narrows ListRequests. Zero fields don't filter.
type RequestFilter struct {
	UserID       string
	DepartmentID string // owner's department
	Status       Status
	StartFrom    *TimePoint // start_date >= StartFrom
	StartTo      *TimePoint // start_date <= StartTo
}

type RequestStore interface {
	CreateRequest(ctx context.Context, r Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)

	// UpdateRequestStatus persists Status, ManagerComment and UpdatedAt.
	// Everything else on a request is immutable after creation.
	UpdateRequestStatus(ctx context.Context, r Request) error

	// ListRequests returns matches ordered by CreatedAt, newest first.
	ListRequests(ctx context.Context, f RequestFilter) ([]Request, error)
}

type HistoryStore interface {
	AppendHistory(ctx context.Context, h HistoryEntry) error
	// ListHistory returns entries for a request, oldest first.
	ListHistory(ctx context.Context, requestID string) ([]HistoryEntry, error)
}

// Store aggregates every entity store.
type Store interface {
	UserStore
	DepartmentStore
	BalanceStore
	RequestStore
	HistoryStore
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
