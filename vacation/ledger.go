/*
ledger.go - Per user/year vacation balance accounting

PURPOSE:
  The Ledger answers "how many days does this employee have left this
  year?" and applies the two lifecycle side effects on a balance:
  Reserve on approval, Release on cancellation of an approved request.

BALANCE LIFECYCLE:
  Balances are created lazily: the first GetOrCreate for (user, year)
  inserts {total: 28, used: 0}. Every later call returns the same row.

ATOMICITY:
  Reserve and Release never read-modify-write in Go. They issue one
  AddUsedDays on the store, which increments used_days in place guarded
  by the (user, year) key. No clamping happens here: availability is
  validated at request creation, and an administrative override may also
  push used_days past total_days on purpose.

EXAMPLE:
  ledger := NewLedger(store)
  b, _ := ledger.GetOrCreate(ctx, "u-1", 2024)  // {28, 0}
  _ = ledger.Reserve(ctx, "u-1", 2024, 5)       // used 5
  _ = ledger.Release(ctx, "u-1", 2024, 5)       // used 0

SEE ALSO:
  - store.go: BalanceStore contract
  - request.go: Calls Reserve/Release inside transitions
*/
package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	Store BalanceStore
	Now   func() time.Time
}

func NewLedger(store BalanceStore) *Ledger {
	return &Ledger{Store: store, Now: time.Now}
}

// GetOrCreate returns the (user, year) balance, creating the default one
// on first access. Idempotent.
func (l *Ledger) GetOrCreate(ctx context.Context, userID string, year int) (*Balance, error) {
	b, err := l.Store.GetBalance(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if b != nil {
		return b, nil
	}

	fresh := Balance{
		ID:        uuid.NewString(),
		UserID:    userID,
		Year:      year,
		TotalDays: DefaultTotalDays,
		CreatedAt: l.Now().UTC(),
	}
	if err := l.Store.InsertBalanceIfAbsent(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}

	// Re-read: a concurrent caller may have inserted first.
	b, err = l.Store.GetBalance(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if b == nil {
		return nil, notFound("balance", userID)
	}
	return b, nil
}

// Get returns an existing balance without creating one.
func (l *Ledger) Get(ctx context.Context, userID string, year int) (*Balance, error) {
	b, err := l.Store.GetBalance(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	if b == nil {
		return nil, notFound("balance", userID)
	}
	return b, nil
}

// Available is total_days - used_days.
func Available(b Balance) int { return b.Available() }

// Reserve adds days to used_days. The balance row is created first if
// needed so an approval never fails on a missing balance.
func (l *Ledger) Reserve(ctx context.Context, userID string, year int, days int) error {
	if _, err := l.GetOrCreate(ctx, userID, year); err != nil {
		return err
	}
	if err := l.Store.AddUsedDays(ctx, userID, year, days); err != nil {
		return fmt.Errorf("failed to reserve %d days: %w", days, err)
	}
	return nil
}

// Release subtracts days from used_days. No floor at zero.
func (l *Ledger) Release(ctx context.Context, userID string, year int, days int) error {
	if _, err := l.GetOrCreate(ctx, userID, year); err != nil {
		return err
	}
	if err := l.Store.AddUsedDays(ctx, userID, year, -days); err != nil {
		return fmt.Errorf("failed to release %d days: %w", days, err)
	}
	return nil
}

// Update applies an administrative overwrite and returns the new balance.
// No bounds validation: HR may set any values.
func (l *Ledger) Update(ctx context.Context, userID string, year int, upd BalanceUpdate) (*Balance, error) {
	if !upd.Empty() {
		if err := l.Store.UpdateBalance(ctx, userID, year, upd); err != nil {
			return nil, fmt.Errorf("failed to update balance: %w", err)
		}
	}
	return l.Get(ctx, userID, year)
}

// CurrentYear is the balance year operations default to.
func (l *Ledger) CurrentYear() int { return l.Now().UTC().Year() }
