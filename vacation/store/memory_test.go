package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacationflow/vacation"
	"github.com/warp/vacationflow/vacation/store"
)

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A balance with 5 used days
	// WHEN: A transaction adds days and then fails
	// THEN: The increment is rolled back
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.InsertBalanceIfAbsent(ctx, vacation.Balance{ID: "b1", UserID: "u1", Year: 2024, TotalDays: 28, UsedDays: 5}))

	boom := errors.New("boom")
	err := mem.WithTx(ctx, func(tx vacation.Store) error {
		require.NoError(t, tx.AddUsedDays(ctx, "u1", 2024, 3))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := mem.GetBalance(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 5, b.UsedDays)
}

func TestMemory_WithTx_Commits(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.InsertBalanceIfAbsent(ctx, vacation.Balance{ID: "b1", UserID: "u1", Year: 2024, TotalDays: 28}))

	err := mem.WithTx(ctx, func(tx vacation.Store) error {
		return tx.AddUsedDays(ctx, "u1", 2024, 4)
	})
	require.NoError(t, err)

	b, _ := mem.GetBalance(ctx, "u1", 2024)
	assert.Equal(t, 4, b.UsedDays)
}

func TestMemory_InsertBalanceIfAbsent_KeepsExisting(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.InsertBalanceIfAbsent(ctx, vacation.Balance{ID: "b1", UserID: "u1", Year: 2024, TotalDays: 28, UsedDays: 7}))
	require.NoError(t, mem.InsertBalanceIfAbsent(ctx, vacation.Balance{ID: "b2", UserID: "u1", Year: 2024, TotalDays: 28}))

	b, err := mem.GetBalance(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, 7, b.UsedDays)

	err = mem.AddUsedDays(ctx, "u1", 2023, 1)
	assert.True(t, vacation.IsNotFound(err))
}

func TestMemory_CreateUser_DuplicateLogin(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.CreateUser(ctx, vacation.User{ID: "1", Login: "alice"}))
	err := mem.CreateUser(ctx, vacation.User{ID: "2", Login: "alice"})
	assert.True(t, vacation.IsConflict(err))

	u, err := mem.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	missing, err := mem.GetUser(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemory_ListRequests_FiltersAndOrder(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.CreateUser(ctx, vacation.User{ID: "a", Login: "a", DepartmentID: "dev"}))
	require.NoError(t, mem.CreateUser(ctx, vacation.User{ID: "b", Login: "b", DepartmentID: "sales"}))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, user, start string, status vacation.Status, offset int) {
		p, err := vacation.ParsePeriod(start, start)
		require.NoError(t, err)
		require.NoError(t, mem.CreateRequest(ctx, vacation.Request{
			ID: id, UserID: user, Period: p, Status: status, Type: vacation.TypeAnnual,
			CreatedAt: base.Add(time.Duration(offset) * time.Hour),
		}))
	}
	mk("r1", "a", "2024-03-01", vacation.StatusApproved, 1)
	mk("r2", "a", "2024-05-01", vacation.StatusPending, 2)
	mk("r3", "b", "2024-04-01", vacation.StatusApproved, 3)

	all, err := mem.ListRequests(ctx, vacation.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ID, "newest first")

	dev, err := mem.ListRequests(ctx, vacation.RequestFilter{DepartmentID: "dev", Status: vacation.StatusApproved})
	require.NoError(t, err)
	require.Len(t, dev, 1)
	assert.Equal(t, "r1", dev[0].ID)

	from, _ := vacation.ParseDate("2024-04-01")
	to, _ := vacation.ParseDate("2024-04-30")
	april, err := mem.ListRequests(ctx, vacation.RequestFilter{StartFrom: &from, StartTo: &to})
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.Equal(t, "r3", april[0].ID)
}

func TestMemory_UpdateRequestStatus_OnlyMutableFields(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	p, _ := vacation.ParsePeriod("2024-06-03", "2024-06-07")
	require.NoError(t, mem.CreateRequest(ctx, vacation.Request{ID: "r1", UserID: "u", Period: p, WorkDays: 5, Status: vacation.StatusPending}))

	err := mem.UpdateRequestStatus(ctx, vacation.Request{ID: "r1", Status: vacation.StatusApproved, ManagerComment: "ok", WorkDays: 99})
	require.NoError(t, err)

	r, err := mem.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusApproved, r.Status)
	assert.Equal(t, "ok", r.ManagerComment)
	assert.Equal(t, 5, r.WorkDays)
	assert.Equal(t, "u", r.UserID)

	err = mem.UpdateRequestStatus(ctx, vacation.Request{ID: "ghost"})
	assert.True(t, vacation.IsNotFound(err))
}
