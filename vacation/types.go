/*
Package vacation is the vacation request engine: balances, the request
lifecycle, department overlap detection and the authorization policy.

ENTITIES:
  User:         Employee, manager or HR member, belongs to one department
  Department:   Capacity constraint (max simultaneous vacations)
  Balance:      Per user/year allotment and consumption, in work days
  Request:      A vacation request with its lifecycle status
  HistoryEntry: Append-only audit record, one per status transition

OWNERSHIP:
  Balances and requests belong to a user but are mutated only through
  RequestService and Ledger operations invoked by authorized actors.

SEE ALSO:
  - calendar.go: Date arithmetic
  - ledger.go: Balance accounting
  - overlap.go: Department capacity warnings
  - request.go: Lifecycle state machine
  - access.go: Authorization policy
*/
package vacation

import (
	"fmt"
	"time"
)

// DefaultTotalDays is the allotment of a lazily created balance.
const DefaultTotalDays = 28

// DefaultMaxSimultaneous is the capacity used when a department sets none.
const DefaultMaxSimultaneous = 2

// =============================================================================
// ENUMS
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type Type string

const (
	TypeAnnual Type = "annual"
	TypeUnpaid Type = "unpaid"
)

// ParseType validates a wire-format vacation type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeAnnual, TypeUnpaid:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown vacation type %q", ErrValidation, s)
}

// ConsumesBalance reports whether approval draws on the annual balance.
func (t Type) ConsumesBalance() bool { return t == TypeAnnual }

// =============================================================================
// ENTITIES
// =============================================================================

type User struct {
	ID           string
	Login        string
	PasswordHash string
	Role         Role
	FullName     string
	Email        string
	DepartmentID string
	ManagerID    string
	CreatedAt    time.Time
}

// Actor returns the identity used for authorization decisions.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

type Department struct {
	ID                       string
	Name                     string
	MaxSimultaneousVacations int
	CreatedAt                time.Time
}

type Balance struct {
	ID        string
	UserID    string
	Year      int
	TotalDays int
	UsedDays  int
	CreatedAt time.Time
}

// Available is total_days - used_days. May be negative after an override
// or a lost race between approvals.
func (b Balance) Available() int { return b.TotalDays - b.UsedDays }

// BalanceUpdate is a partial administrative overwrite. Nil fields are kept.
type BalanceUpdate struct {
	TotalDays *int
	UsedDays  *int
}

func (u BalanceUpdate) Empty() bool { return u.TotalDays == nil && u.UsedDays == nil }

type Request struct {
	ID             string
	UserID         string
	Period         Period
	Type           Type
	Status         Status
	WorkDays       int // fixed at creation
	Comment        string
	ManagerComment string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HistoryAction mirrors the status a transition moved to.
type HistoryAction string

const (
	ActionApproved  HistoryAction = "approved"
	ActionRejected  HistoryAction = "rejected"
	ActionCancelled HistoryAction = "cancelled"
)

type HistoryEntry struct {
	ID        string
	RequestID string
	Action    HistoryAction
	Comment   string
	ActedBy   string
	ActedAt   time.Time
}

// OverlapWarning says that on Date the department would have Count people
// away, which meets or exceeds MaxAllowed.
type OverlapWarning struct {
	Date       TimePoint
	Count      int      // approved occupants + the candidate
	Employees  []string // user IDs of approved occupants
	MaxAllowed int
}
