/*
Package seed loads demo data for development and demonstrations.

DATA:
  Departments: Разработка (max 2), Продажи (max 2), HR (max 1)
  Users:       hr_admin (hr), dev_manager, sales_manager (managers),
               developer1, developer2, sales1, sales2 (employees)
  Password:    DemoPassword for everyone
  Balances:    default current-year balance per user

IDEMPOTENCE:
  Load is a no-op when the hr_admin login already exists. Reset the
  store first to reload from scratch.

NOTE:
  Only use in development/demo environments.
*/
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/warp/vacationflow/auth"
	"github.com/warp/vacationflow/vacation"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// Result reports what Load created.
type Result struct {
	Skipped     bool
	Departments int
	Users       int
	Balances    int
}

type department struct {
	key  string
	name string
	max  int
}

type person struct {
	login    string
	role     vacation.Role
	fullName string
	email    string
	dept     string
	manager  string // login of the manager
}

var departments = []department{
	{key: "dev", name: "Разработка", max: 2},
	{key: "sales", name: "Продажи", max: 2},
	{key: "hr", name: "HR", max: 1},
}

// Managers come before their reports.
var people = []person{
	{login: "hr_admin", role: vacation.RoleHR, fullName: "Елена Смирнова", email: "hr@example.com", dept: "hr"},
	{login: "dev_manager", role: vacation.RoleManager, fullName: "Алексей Иванов", email: "dev_manager@example.com", dept: "dev"},
	{login: "sales_manager", role: vacation.RoleManager, fullName: "Мария Петрова", email: "sales_manager@example.com", dept: "sales"},
	{login: "developer1", role: vacation.RoleEmployee, fullName: "Дмитрий Соколов", email: "dev1@example.com", dept: "dev", manager: "dev_manager"},
	{login: "developer2", role: vacation.RoleEmployee, fullName: "Анна Кузнецова", email: "dev2@example.com", dept: "dev", manager: "dev_manager"},
	{login: "sales1", role: vacation.RoleEmployee, fullName: "Сергей Морозов", email: "sales1@example.com", dept: "sales", manager: "sales_manager"},
	{login: "sales2", role: vacation.RoleEmployee, fullName: "Ольга Новикова", email: "sales2@example.com", dept: "sales", manager: "sales_manager"},
}

// Load creates the demo departments, users and balances in one
// transaction.
func Load(ctx context.Context, store vacation.TxStore, now time.Time) (Result, error) {
	existing, err := store.GetUserByLogin(ctx, people[0].login)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check existing data: %w", err)
	}
	if existing != nil {
		log.Printf("[Seed] demo data already present, skipping")
		return Result{Skipped: true}, nil
	}

	// One hash for everyone keeps seeding fast.
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now = now.UTC()
	var res Result
	err = store.WithTx(ctx, func(tx vacation.Store) error {
		deptIDs := make(map[string]string, len(departments))
		for _, d := range departments {
			id := uuid.NewString()
			if err := tx.CreateDepartment(ctx, vacation.Department{
				ID:                       id,
				Name:                     d.name,
				MaxSimultaneousVacations: d.max,
				CreatedAt:                now,
			}); err != nil {
				return fmt.Errorf("failed to create department %s: %w", d.name, err)
			}
			deptIDs[d.key] = id
			res.Departments++
		}

		userIDs := make(map[string]string, len(people))
		ledger := &vacation.Ledger{Store: tx, Now: func() time.Time { return now }}
		for _, p := range people {
			id := uuid.NewString()
			if err := tx.CreateUser(ctx, vacation.User{
				ID:           id,
				Login:        p.login,
				PasswordHash: hash,
				Role:         p.role,
				FullName:     p.fullName,
				Email:        p.email,
				DepartmentID: deptIDs[p.dept],
				ManagerID:    userIDs[p.manager],
				CreatedAt:    now,
			}); err != nil {
				return fmt.Errorf("failed to create user %s: %w", p.login, err)
			}
			userIDs[p.login] = id
			res.Users++

			if _, err := ledger.GetOrCreate(ctx, id, now.Year()); err != nil {
				return err
			}
			res.Balances++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Printf("[Seed] created %d departments, %d users, %d balances", res.Departments, res.Users, res.Balances)
	return res, nil
}
