/*
request.go - Vacation request lifecycle

PURPOSE:
  Handles the full lifecycle of a vacation request:
  1. Creation: Validate dates and balance, fix work_days, persist pending
  2. Decision: Approve or reject (manager of the department, or HR)
  3. Cancellation: Owner or HR, restores reserved days when approved

STATE MACHINE:
  ┌─────────┐  decide   ┌──────────┐  cancel   ┌───────────┐
  │ pending │ ────────▶ │ approved │ ────────▶ │ cancelled │
  └─────────┘           └──────────┘           └───────────┘
       │    decide      ┌──────────┐  cancel         ▲
       ├──────────────▶ │ rejected │ ────────────────┤
       │                └──────────┘                 │
       └─────────────────────── cancel ──────────────┘

  rejected accepts no decision; cancelled accepts nothing at all.

BALANCE SIDE EFFECTS (annual requests only):
  approve:               Reserve(work_days) on the owner's current-year balance
  cancel after approval: Release(work_days)
  everything else:       no balance impact

  work_days is computed once at creation. Approval and cancellation use
  the stored value even if the calendar rules change later.

ATOMICITY:
  Every transition runs inside TxStore.WithTx: the status re-check, the
  status write, the history entry and the balance mutation commit or roll
  back together. Two concurrent approvals of the same request cannot both
  reserve days.

NOTIFICATIONS:
  After a decision commits, the Notifier is invoked. Its failure is logged
  and swallowed; the transition is complete once persisted.

EXAMPLE:
  svc := NewRequestService(store, notifier)
  req, err := svc.CreateRequest(ctx, employee, CreateInput{
      StartDate: "2024-06-03", EndDate: "2024-06-07", Type: "annual",
  })
  req, err = svc.Decide(ctx, manager, req.ID, StatusApproved, "enjoy")
  req, err = svc.Cancel(ctx, employee, req.ID)

SEE ALSO:
  - ledger.go: Reserve/Release
  - access.go: Authorize
  - overlap.go: CheckOverlap
*/
package vacation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// CancelComment is recorded on every cancellation history entry.
const CancelComment = "vacation cancelled"

// =============================================================================
// REQUEST SERVICE
// =============================================================================

type RequestService struct {
	Store    TxStore
	Notifier Notifier // optional
	Now      func() time.Time
}

func NewRequestService(store TxStore, notifier Notifier) *RequestService {
	return &RequestService{Store: store, Notifier: notifier, Now: time.Now}
}

// ledger returns a Ledger over s sharing the service clock.
func (rs *RequestService) ledger(s BalanceStore) *Ledger {
	return &Ledger{Store: s, Now: rs.Now}
}

// Ledger exposes the balance ledger over the service store.
func (rs *RequestService) Ledger() *Ledger { return rs.ledger(rs.Store) }

// CreateInput is the caller-supplied part of a new request.
type CreateInput struct {
	StartDate string
	EndDate   string
	Type      string
	Comment   string
}

// CreateRequest validates and persists a pending request for actor.
// Insufficient balance on an annual request is an InsufficientBalanceError
// and nothing is persisted.
func (rs *RequestService) CreateRequest(ctx context.Context, actor Actor, in CreateInput) (*Request, error) {
	if err := Authorize(actor, OpCreateRequest, Target{OwnerID: actor.ID}); err != nil {
		return nil, err
	}

	vt, err := ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	period, err := ParsePeriod(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	workDays := period.WorkDays()

	now := rs.Now().UTC()
	if vt.ConsumesBalance() {
		balance, err := rs.Ledger().GetOrCreate(ctx, actor.ID, now.Year())
		if err != nil {
			return nil, err
		}
		if workDays > balance.Available() {
			return nil, &InsufficientBalanceError{
				UserID:    actor.ID,
				Year:      balance.Year,
				Available: balance.Available(),
				Requested: workDays,
			}
		}
	}

	req := Request{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Period:    period,
		Type:      vt,
		Status:    StatusPending,
		WorkDays:  workDays,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := rs.Store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}
	return &req, nil
}

// Decide approves or rejects a pending request.
func (rs *RequestService) Decide(ctx context.Context, actor Actor, requestID string, decision Status, comment string) (*Request, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected, got %q", ErrValidation, decision)
	}
	// Employees can never decide; deny before touching storage.
	if actor.Role != RoleManager && actor.Role != RoleHR {
		return nil, ErrForbidden
	}

	_, owner, err := rs.loadForActor(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, OpDecideRequest, Target{OwnerID: owner.ID, DepartmentID: owner.DepartmentID}); err != nil {
		return nil, err
	}

	now := rs.Now().UTC()
	var updated Request
	err = rs.Store.WithTx(ctx, func(tx Store) error {
		cur, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("request", requestID)
		}
		if cur.Status != StatusPending {
			return &StateError{RequestID: cur.ID, From: cur.Status, Action: actionVerb(decision)}
		}

		updated = *cur
		updated.Status = decision
		updated.ManagerComment = comment
		updated.UpdatedAt = now
		if err := tx.UpdateRequestStatus(ctx, updated); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		if err := tx.AppendHistory(ctx, HistoryEntry{
			ID:        uuid.NewString(),
			RequestID: updated.ID,
			Action:    HistoryAction(decision),
			Comment:   comment,
			ActedBy:   actor.ID,
			ActedAt:   now,
		}); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		if decision == StatusApproved && updated.Type.ConsumesBalance() {
			return rs.ledger(tx).Reserve(ctx, updated.UserID, now.Year(), updated.WorkDays)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.notifyDecision(ctx, owner, updated)
	return &updated, nil
}

// Cancel moves a request to cancelled. Cancelling twice is a StateError
// with no history entry and no balance change.
func (rs *RequestService) Cancel(ctx context.Context, actor Actor, requestID string) (*Request, error) {
	req, err := rs.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, rs.missing(actor, "request", requestID)
	}
	if err := Authorize(actor, OpCancelRequest, Target{OwnerID: req.UserID}); err != nil {
		return nil, err
	}

	now := rs.Now().UTC()
	var updated Request
	err = rs.Store.WithTx(ctx, func(tx Store) error {
		cur, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("request", requestID)
		}
		if cur.Status == StatusCancelled {
			return &StateError{RequestID: cur.ID, From: cur.Status, Action: "cancel"}
		}

		prior := cur.Status
		updated = *cur
		updated.Status = StatusCancelled
		updated.UpdatedAt = now
		if err := tx.UpdateRequestStatus(ctx, updated); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		if prior == StatusApproved && updated.Type.ConsumesBalance() {
			if err := rs.ledger(tx).Release(ctx, updated.UserID, now.Year(), updated.WorkDays); err != nil {
				return err
			}
		}

		if err := tx.AppendHistory(ctx, HistoryEntry{
			ID:        uuid.NewString(),
			RequestID: updated.ID,
			Action:    ActionCancelled,
			Comment:   CancelComment,
			ActedBy:   actor.ID,
			ActedAt:   now,
		}); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a single request visible to actor.
func (rs *RequestService) Get(ctx context.Context, actor Actor, requestID string) (*Request, error) {
	req, owner, err := rs.loadForActor(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, OpViewRequest, Target{OwnerID: owner.ID, DepartmentID: owner.DepartmentID}); err != nil {
		return nil, err
	}
	return req, nil
}

// History returns the transition log of a request, oldest first.
func (rs *RequestService) History(ctx context.Context, actor Actor, requestID string) ([]HistoryEntry, error) {
	if _, err := rs.Get(ctx, actor, requestID); err != nil {
		return nil, err
	}
	return rs.Store.ListHistory(ctx, requestID)
}

// ListOwn returns actor's requests, newest first.
func (rs *RequestService) ListOwn(ctx context.Context, actor Actor) ([]Request, error) {
	return rs.Store.ListRequests(ctx, RequestFilter{UserID: actor.ID})
}

// ListDepartment returns every request in actor's department.
func (rs *RequestService) ListDepartment(ctx context.Context, actor Actor) ([]Request, error) {
	if err := Authorize(actor, OpViewDepartmentRequests, Target{DepartmentID: actor.DepartmentID}); err != nil {
		return nil, err
	}
	return rs.Store.ListRequests(ctx, RequestFilter{DepartmentID: actor.DepartmentID})
}

// ListAll returns every request. HR only.
func (rs *RequestService) ListAll(ctx context.Context, actor Actor) ([]Request, error) {
	if err := Authorize(actor, OpViewAllRequests, Target{}); err != nil {
		return nil, err
	}
	return rs.Store.ListRequests(ctx, RequestFilter{})
}

// CheckDepartmentOverlap runs CheckOverlap for a candidate range against
// the approved requests of actor's department.
func (rs *RequestService) CheckDepartmentOverlap(ctx context.Context, actor Actor, startDate, endDate string) ([]OverlapWarning, error) {
	period, err := ParsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	user, err := rs.Store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, notFound("user", actor.ID)
	}
	// No department, nobody to overlap with.
	if user.DepartmentID == "" {
		return []OverlapWarning{}, nil
	}

	maxAllowed := DefaultMaxSimultaneous
	dept, err := rs.Store.GetDepartment(ctx, user.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load department: %w", err)
	}
	if dept != nil {
		maxAllowed = dept.MaxSimultaneousVacations
	}

	approved, err := rs.Store.ListRequests(ctx, RequestFilter{
		DepartmentID: user.DepartmentID,
		Status:       StatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load department requests: %w", err)
	}
	return CheckOverlap(period, approved, maxAllowed), nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadForActor loads a request and its owner. Missing rows are NotFound
// for HR and a plain denial for everyone else.
func (rs *RequestService) loadForActor(ctx context.Context, actor Actor, requestID string) (*Request, *User, error) {
	req, err := rs.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, nil, rs.missing(actor, "request", requestID)
	}
	owner, err := rs.Store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if owner == nil {
		return nil, nil, rs.missing(actor, "user", req.UserID)
	}
	return req, owner, nil
}

func (rs *RequestService) missing(actor Actor, kind, id string) error {
	if actor.Role == RoleHR {
		return notFound(kind, id)
	}
	return ErrForbidden
}

func (rs *RequestService) notifyDecision(ctx context.Context, owner *User, req Request) {
	if rs.Notifier == nil {
		return
	}
	err := rs.Notifier.NotifyStatus(ctx, StatusNotification{
		RequestID:      req.ID,
		UserID:         owner.ID,
		FullName:       owner.FullName,
		Email:          owner.Email,
		Period:         req.Period,
		Status:         req.Status,
		ManagerComment: req.ManagerComment,
	})
	if err != nil {
		log.Printf("[Lifecycle] notification for request %s failed: %v", req.ID, err)
	}
}

func actionVerb(decision Status) string {
	if decision == StatusApproved {
		return "approve"
	}
	return "reject"
}
