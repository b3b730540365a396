package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacationflow/auth"
	"github.com/warp/vacationflow/seed"
	"github.com/warp/vacationflow/store/sqlite"
	"github.com/warp/vacationflow/vacation"
)

func TestLoad_CreatesDemoDataOnce(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: Seeding twice
	// THEN: Data is created once and the second call is skipped
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	res, err := seed.Load(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Departments: 3, Users: 7, Balances: 7}, res)

	again, err := seed.Load(ctx, store, now)
	require.NoError(t, err)
	assert.True(t, again.Skipped)

	depts, err := store.ListDepartments(ctx)
	require.NoError(t, err)
	capacity := map[string]int{}
	for _, d := range depts {
		capacity[d.Name] = d.MaxSimultaneousVacations
	}
	assert.Equal(t, map[string]int{"Разработка": 2, "Продажи": 2, "HR": 1}, capacity)

	dev1, err := store.GetUserByLogin(ctx, "developer1")
	require.NoError(t, err)
	mgr, err := store.GetUserByLogin(ctx, "dev_manager")
	require.NoError(t, err)
	assert.Equal(t, mgr.ID, dev1.ManagerID)
	assert.Equal(t, mgr.DepartmentID, dev1.DepartmentID)
	assert.True(t, auth.CheckPassword(seed.DemoPassword, dev1.PasswordHash))

	balances, err := store.ListBalances(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, balances, 7)
	for _, b := range balances {
		assert.Equal(t, vacation.DefaultTotalDays, b.TotalDays)
	}
}
