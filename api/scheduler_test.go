package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacationflow/vacation"
	"github.com/warp/vacationflow/vacation/store"
)

func TestBalanceProvisioner_CreatesMissingBalances(t *testing.T) {
	// GIVEN: Two users, one with a balance for the new year already
	// WHEN: A pass runs on New Year's day
	// THEN: Only the missing balance is created and the existing one is kept
	ctx := context.Background()
	mem := store.NewMemory()
	now := time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)

	for _, id := range []string{"u1", "u2"} {
		require.NoError(t, mem.CreateUser(ctx, vacation.User{ID: id, Login: id, Role: vacation.RoleEmployee}))
	}
	require.NoError(t, mem.InsertBalanceIfAbsent(ctx, vacation.Balance{ID: "b1", UserID: "u1", Year: 2025, TotalDays: 31, UsedDays: 4}))

	p := NewBalanceProvisioner(mem)
	p.Now = func() time.Time { return now }

	res := p.RunNow(ctx)
	assert.Equal(t, ProvisionResult{Year: 2025, Users: 2, Created: 1}, res)

	b1, err := mem.GetBalance(ctx, "u1", 2025)
	require.NoError(t, err)
	assert.Equal(t, 31, b1.TotalDays)
	assert.Equal(t, 4, b1.UsedDays)

	b2, err := mem.GetBalance(ctx, "u2", 2025)
	require.NoError(t, err)
	require.NotNil(t, b2)
	assert.Equal(t, vacation.DefaultTotalDays, b2.TotalDays)

	// Second pass is a no-op
	assert.Equal(t, ProvisionResult{Year: 2025, Users: 2}, p.RunNow(ctx))
}

func TestBalanceProvisioner_StartStop(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.CreateUser(context.Background(), vacation.User{ID: "u1", Login: "u1", Role: vacation.RoleEmployee}))

	p := NewBalanceProvisioner(mem)
	p.CheckInterval = time.Hour
	p.Start()
	p.Start() // second start is ignored
	p.Stop()
	p.Stop()

	// Start runs one pass before returning control to the ticker
	b, err := mem.GetBalance(context.Background(), "u1", time.Now().UTC().Year())
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBalanceProvisioner_Disabled(t *testing.T) {
	p := NewBalanceProvisioner(store.NewMemory())
	p.CheckInterval = 0
	p.Start()
	p.Stop()
	assert.Nil(t, p.ticker)
}
