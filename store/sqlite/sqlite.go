/*
Package sqlite provides a SQLite-backed implementation of vacation.TxStore.

PURPOSE:
  Persists users, departments, yearly balances, vacation requests and
  their decision history. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  users:           Accounts with role and department
  departments:     Name and max simultaneous vacations
  balances:        One row per (user_id, year)
  requests:        Vacation requests and their current status
  request_history: Append-only transition log

ATOMIC BALANCE MUTATION:
  AddUsedDays is a single statement:
    UPDATE balances SET used_days = used_days + ? WHERE user_id = ? AND year = ?
  No read-modify-write happens in Go, so concurrent approvals never lose
  an increment. Balance creation uses INSERT ... ON CONFLICT DO NOTHING
  guarded by UNIQUE(user_id, year).

CONCURRENCY:
  The pool is capped at one connection; WithTx additionally serializes
  transactions on a mutex. Inside WithTx every call MUST go through the
  tx-scoped Store handed to fn, never the outer Store, or it would wait
  for the connection the transaction holds.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and a busy timeout.

USAGE:
  store, err := sqlite.New("./data/vacations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := vacation.NewRequestService(store, notifier)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - vacation/store.go: Interface definitions
  - vacation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/vacationflow/vacation"
)

// timestampLayout sorts lexically in chronological order for UTC values.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements vacation.Store over any querier.
type queries struct {
	q querier
}

// Store implements vacation.TxStore using SQLite.
type Store struct {
	queries
	db *sql.DB
	mu sync.Mutex
}

var _ vacation.TxStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and makes
	// SQLite's single-writer rule explicit.
	db.SetMaxOpenConns(1)

	store := &Store{queries: queries{q: db}, db: db}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		max_simultaneous_vacations INTEGER NOT NULL DEFAULT 2,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'employee',
		full_name TEXT NOT NULL,
		email TEXT,
		department_id TEXT,
		manager_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_department
		ON users(department_id);

	CREATE TABLE IF NOT EXISTS balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		total_days INTEGER NOT NULL DEFAULT 28,
		used_days INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(user_id, year)
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		vacation_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		work_days INTEGER NOT NULL,
		comment TEXT,
		manager_comment TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user
		ON requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON requests(status);
	-- Overlap checks and reports scan by start date
	CREATE INDEX IF NOT EXISTS idx_requests_start
		ON requests(start_date);

	-- Append-only: no UPDATE or DELETE statements are ever issued
	CREATE TABLE IF NOT EXISTS request_history (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		action TEXT NOT NULL,
		comment TEXT,
		acted_by TEXT NOT NULL,
		acted_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_request
		ON request_history(request_id, acted_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (vacation.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store vacation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Reset deletes all data. Used by tests, the seed command and the demo reset endpoint.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"request_history", "requests", "balances", "users", "departments"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// USER STORE
// =============================================================================

const userColumns = "id, login, password_hash, role, full_name, email, department_id, manager_id, created_at"

func (q *queries) CreateUser(ctx context.Context, u vacation.User) error {
	_, err := q.q.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Login, u.PasswordHash, string(u.Role), u.FullName,
		nullString(u.Email), nullString(u.DepartmentID), nullString(u.ManagerID),
		formatTime(u.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: login %q already registered", vacation.ErrConflict, u.Login)
	}
	return err
}

func (q *queries) GetUser(ctx context.Context, id string) (*vacation.User, error) {
	row := q.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (q *queries) GetUserByLogin(ctx context.Context, login string) (*vacation.User, error) {
	row := q.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE login = ?", login)
	return scanUser(row)
}

func (q *queries) ListUsers(ctx context.Context) ([]vacation.User, error) {
	return q.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY login")
}

func (q *queries) ListUsersByDepartment(ctx context.Context, departmentID string) ([]vacation.User, error) {
	return q.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE department_id = ? ORDER BY login", departmentID)
}

func (q *queries) queryUsers(ctx context.Context, query string, args ...any) ([]vacation.User, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]vacation.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (*vacation.User, error) {
	var u vacation.User
	var role, createdAt string
	var email, departmentID, managerID sql.NullString

	err := sc.Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &u.FullName,
		&email, &departmentID, &managerID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.Role = vacation.Role(role)
	u.Email = email.String
	u.DepartmentID = departmentID.String
	u.ManagerID = managerID.String
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// =============================================================================
// DEPARTMENT STORE
// =============================================================================

func (q *queries) CreateDepartment(ctx context.Context, d vacation.Department) error {
	_, err := q.q.ExecContext(ctx,
		"INSERT INTO departments (id, name, max_simultaneous_vacations, created_at) VALUES (?, ?, ?, ?)",
		d.ID, d.Name, d.MaxSimultaneousVacations, formatTime(d.CreatedAt),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: department %q already exists", vacation.ErrConflict, d.Name)
	}
	return err
}

func (q *queries) GetDepartment(ctx context.Context, id string) (*vacation.Department, error) {
	var d vacation.Department
	var createdAt string

	err := q.q.QueryRowContext(ctx,
		"SELECT id, name, max_simultaneous_vacations, created_at FROM departments WHERE id = ?", id,
	).Scan(&d.ID, &d.Name, &d.MaxSimultaneousVacations, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

func (q *queries) ListDepartments(ctx context.Context) ([]vacation.Department, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT id, name, max_simultaneous_vacations, created_at FROM departments ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	depts := make([]vacation.Department, 0)
	for rows.Next() {
		var d vacation.Department
		var createdAt string
		if err := rows.Scan(&d.ID, &d.Name, &d.MaxSimultaneousVacations, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt = parseTime(createdAt)
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

// =============================================================================
// BALANCE STORE
// =============================================================================

const balanceColumns = "id, user_id, year, total_days, used_days, created_at"

func (q *queries) InsertBalanceIfAbsent(ctx context.Context, b vacation.Balance) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO balances (`+balanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year) DO NOTHING
	`, b.ID, b.UserID, b.Year, b.TotalDays, b.UsedDays, formatTime(b.CreatedAt))
	return err
}

func (q *queries) GetBalance(ctx context.Context, userID string, year int) (*vacation.Balance, error) {
	row := q.q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user_id = ? AND year = ?", userID, year)
	return scanBalance(row)
}

func (q *queries) AddUsedDays(ctx context.Context, userID string, year int, delta int) error {
	res, err := q.q.ExecContext(ctx,
		"UPDATE balances SET used_days = used_days + ? WHERE user_id = ? AND year = ?",
		delta, userID, year,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "balance", userID)
}

func (q *queries) UpdateBalance(ctx context.Context, userID string, year int, upd vacation.BalanceUpdate) error {
	var sets []string
	var args []any
	if upd.TotalDays != nil {
		sets = append(sets, "total_days = ?")
		args = append(args, *upd.TotalDays)
	}
	if upd.UsedDays != nil {
		sets = append(sets, "used_days = ?")
		args = append(args, *upd.UsedDays)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, userID, year)

	res, err := q.q.ExecContext(ctx,
		"UPDATE balances SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND year = ?", args...)
	if err != nil {
		return err
	}
	return requireRow(res, "balance", userID)
}

func (q *queries) ListBalances(ctx context.Context, year int) ([]vacation.Balance, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE year = ? ORDER BY user_id", year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]vacation.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func scanBalance(sc scanner) (*vacation.Balance, error) {
	var b vacation.Balance
	var createdAt string
	err := sc.Scan(&b.ID, &b.UserID, &b.Year, &b.TotalDays, &b.UsedDays, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.CreatedAt = parseTime(createdAt)
	return &b, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

const requestColumns = "r.id, r.user_id, r.start_date, r.end_date, r.vacation_type, r.status, " +
	"r.work_days, r.comment, r.manager_comment, r.created_at, r.updated_at"

func (q *queries) CreateRequest(ctx context.Context, r vacation.Request) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO requests
		(id, user_id, start_date, end_date, vacation_type, status, work_days,
		 comment, manager_comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.UserID,
		r.Period.Start.String(), r.Period.End.String(),
		string(r.Type), string(r.Status), r.WorkDays,
		nullString(r.Comment), nullString(r.ManagerComment),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: request %s already exists", vacation.ErrConflict, r.ID)
	}
	return err
}

func (q *queries) GetRequest(ctx context.Context, id string) (*vacation.Request, error) {
	row := q.q.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM requests r WHERE r.id = ?", id)
	return scanRequest(row)
}

func (q *queries) UpdateRequestStatus(ctx context.Context, r vacation.Request) error {
	res, err := q.q.ExecContext(ctx,
		"UPDATE requests SET status = ?, manager_comment = ?, updated_at = ? WHERE id = ?",
		string(r.Status), nullString(r.ManagerComment), formatTime(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, "request", r.ID)
}

func (q *queries) ListRequests(ctx context.Context, f vacation.RequestFilter) ([]vacation.Request, error) {
	query := "SELECT " + requestColumns + " FROM requests r"
	var where []string
	var args []any

	if f.DepartmentID != "" {
		query += " JOIN users u ON u.id = r.user_id"
		where = append(where, "u.department_id = ?")
		args = append(args, f.DepartmentID)
	}
	if f.UserID != "" {
		where = append(where, "r.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, string(f.Status))
	}
	if f.StartFrom != nil {
		where = append(where, "r.start_date >= ?")
		args = append(args, f.StartFrom.String())
	}
	if f.StartTo != nil {
		where = append(where, "r.start_date <= ?")
		args = append(args, f.StartTo.String())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id"

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]vacation.Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(sc scanner) (*vacation.Request, error) {
	var r vacation.Request
	var start, end, vt, status, createdAt, updatedAt string
	var comment, managerComment sql.NullString

	err := sc.Scan(&r.ID, &r.UserID, &start, &end, &vt, &status, &r.WorkDays,
		&comment, &managerComment, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	period, err := vacation.ParsePeriod(start, end)
	if err != nil {
		return nil, fmt.Errorf("corrupt request %s: %w", r.ID, err)
	}
	r.Period = period
	r.Type = vacation.Type(vt)
	r.Status = vacation.Status(status)
	r.Comment = comment.String
	r.ManagerComment = managerComment.String
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// =============================================================================
// HISTORY STORE
// =============================================================================

func (q *queries) AppendHistory(ctx context.Context, h vacation.HistoryEntry) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO request_history (id, request_id, action, comment, acted_by, acted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.ID, h.RequestID, string(h.Action), nullString(h.Comment), h.ActedBy, formatTime(h.ActedAt))
	return err
}

func (q *queries) ListHistory(ctx context.Context, requestID string) ([]vacation.HistoryEntry, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, request_id, action, comment, acted_by, acted_at
		FROM request_history
		WHERE request_id = ?
		ORDER BY acted_at, rowid
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]vacation.HistoryEntry, 0)
	for rows.Next() {
		var h vacation.HistoryEntry
		var action, actedAt string
		var comment sql.NullString
		if err := rows.Scan(&h.ID, &h.RequestID, &action, &comment, &h.ActedBy, &actedAt); err != nil {
			return nil, err
		}
		h.Action = vacation.HistoryAction(action)
		h.Comment = comment.String
		h.ActedAt = parseTime(actedAt)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timestampLayout, s)
	return t
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &vacation.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
