/*
Package report builds HR reports and department calendars from the
vacation store.

REPORTS:
  Vacations:  one row per request, optionally limited to requests whose
              start date falls in [from, to], with user and department
              names joined in and a user-facing type label.
  WriteCSV:   the same rows as UTF-8 CSV with a byte-order mark so
              spreadsheet tools pick the right encoding.
  Balances:   per-user balance with utilization (see summary.go).
  Calendar:   approved requests of the caller's department as events.

ACCESS:
  Everything except Calendar requires vacation.OpViewReports (HR).
*/
package report

import (
	"context"
	"fmt"

	"github.com/warp/vacationflow/vacation"
)

// TypeLabel is the user-facing name of a vacation type.
func TypeLabel(t vacation.Type) string {
	if t == vacation.TypeAnnual {
		return "Ежегодный"
	}
	return "Без сохранения ЗП"
}

// Row is one line of the vacation report.
type Row struct {
	RequestID      string
	Employee       string
	Email          string
	Department     string
	StartDate      string
	EndDate        string
	Type           string
	WorkDays       int
	Status         vacation.Status
	Comment        string
	ManagerComment string
}

type Service struct {
	Store vacation.Store
}

func NewService(store vacation.Store) *Service {
	return &Service{Store: store}
}

// Vacations returns the report rows. The date filter applies only when
// both from and to are given.
func (s *Service) Vacations(ctx context.Context, actor vacation.Actor, from, to string) ([]Row, error) {
	if err := vacation.Authorize(actor, vacation.OpViewReports, vacation.Target{}); err != nil {
		return nil, err
	}

	var filter vacation.RequestFilter
	if from != "" && to != "" {
		period, err := vacation.ParsePeriod(from, to)
		if err != nil {
			return nil, err
		}
		filter.StartFrom = &period.Start
		filter.StartTo = &period.End
	}

	requests, err := s.Store.ListRequests(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	users, depts, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(requests))
	for _, r := range requests {
		u := users[r.UserID]
		rows = append(rows, Row{
			RequestID:      r.ID,
			Employee:       u.FullName,
			Email:          u.Email,
			Department:     depts[u.DepartmentID].Name,
			StartDate:      r.Period.Start.String(),
			EndDate:        r.Period.End.String(),
			Type:           TypeLabel(r.Type),
			WorkDays:       r.WorkDays,
			Status:         r.Status,
			Comment:        r.Comment,
			ManagerComment: r.ManagerComment,
		})
	}
	return rows, nil
}

// directory loads users and departments keyed by ID.
func (s *Service) directory(ctx context.Context) (map[string]vacation.User, map[string]vacation.Department, error) {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load users: %w", err)
	}
	depts, err := s.Store.ListDepartments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load departments: %w", err)
	}

	byUser := make(map[string]vacation.User, len(users))
	for _, u := range users {
		byUser[u.ID] = u
	}
	byDept := make(map[string]vacation.Department, len(depts))
	for _, d := range depts {
		byDept[d.ID] = d
	}
	return byUser, byDept, nil
}

// =============================================================================
// DEPARTMENT CALENDAR
// =============================================================================

// Event is an approved vacation placed on the department calendar.
type Event struct {
	RequestID string
	UserID    string
	Title     string // owner's full name
	Start     string
	End       string
	Type      vacation.Type
	WorkDays  int
}

// Calendar returns the approved vacations of the caller's department.
func (s *Service) Calendar(ctx context.Context, actor vacation.Actor) ([]Event, error) {
	events := make([]Event, 0)
	if actor.DepartmentID == "" {
		return events, nil
	}

	users, err := s.Store.ListUsersByDepartment(ctx, actor.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load department users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}

	approved, err := s.Store.ListRequests(ctx, vacation.RequestFilter{
		DepartmentID: actor.DepartmentID,
		Status:       vacation.StatusApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	for _, r := range approved {
		events = append(events, Event{
			RequestID: r.ID,
			UserID:    r.UserID,
			Title:     names[r.UserID],
			Start:     r.Period.Start.String(),
			End:       r.Period.End.String(),
			Type:      r.Type,
			WorkDays:  r.WorkDays,
		})
	}
	return events, nil
}
