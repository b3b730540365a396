/*
scheduler.go - Balance provisioning scheduler

PURPOSE:
  Periodically makes sure every user has a balance row for the current
  year, so that after New Year nobody hits a missing balance on the
  first approval or release.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Uses Ledger.GetOrCreate, so existing balances are never touched

USAGE:
  p := NewBalanceProvisioner(store)
  p.Start()
  // ... later
  p.Stop()

SEE ALSO:
  - vacation/ledger.go: GetOrCreate
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/vacationflow/vacation"
)

// ProvisionResult counts one pass.
type ProvisionResult struct {
	Year    int
	Users   int
	Created int
	Failed  int
}

// BalanceProvisioner creates missing current-year balances.
type BalanceProvisioner struct {
	Store         vacation.Store
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBalanceProvisioner creates a provisioner checking hourly.
func NewBalanceProvisioner(store vacation.Store) *BalanceProvisioner {
	return &BalanceProvisioner{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (bp *BalanceProvisioner) Start() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if !bp.Enabled || bp.CheckInterval <= 0 {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if bp.ticker != nil {
		return
	}

	bp.ticker = time.NewTicker(bp.CheckInterval)
	bp.stop = make(chan struct{})
	bp.wg.Add(1)

	go bp.run()

	log.Printf("[Scheduler] Started with check interval: %v", bp.CheckInterval)
}

// Stop stops the scheduler and waits for a running pass to finish.
func (bp *BalanceProvisioner) Stop() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.ticker != nil {
		bp.ticker.Stop()
		close(bp.stop)
		bp.wg.Wait()
		bp.ticker = nil
		log.Println("[Scheduler] Stopped")
	}
}

func (bp *BalanceProvisioner) run() {
	defer bp.wg.Done()

	bp.RunNow(context.Background())

	for {
		select {
		case <-bp.ticker.C:
			bp.RunNow(context.Background())
		case <-bp.stop:
			return
		}
	}
}

// RunNow performs one provisioning pass.
func (bp *BalanceProvisioner) RunNow(ctx context.Context) ProvisionResult {
	now := bp.Now().UTC()
	res := ProvisionResult{Year: now.Year()}

	users, err := bp.Store.ListUsers(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing users: %v", err)
		return res
	}
	existing, err := bp.Store.ListBalances(ctx, res.Year)
	if err != nil {
		log.Printf("[Scheduler] Error listing balances: %v", err)
		return res
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.UserID] = true
	}

	ledger := &vacation.Ledger{Store: bp.Store, Now: func() time.Time { return now }}
	for _, u := range users {
		res.Users++
		if have[u.ID] {
			continue
		}
		if _, err := ledger.GetOrCreate(ctx, u.ID, res.Year); err != nil {
			log.Printf("[Scheduler] Error provisioning balance for %s: %v", u.ID, err)
			res.Failed++
			continue
		}
		res.Created++
	}

	if res.Created > 0 || res.Failed > 0 {
		log.Printf("[Scheduler] Completed %d: %d created, %d failed, %d users", res.Year, res.Created, res.Failed, res.Users)
	}
	return res
}

// NextRunTime returns when the next scheduled check will occur.
func (bp *BalanceProvisioner) NextRunTime() time.Time {
	return bp.Now().Add(bp.CheckInterval)
}
