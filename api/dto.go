/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Field names
  are snake_case on the wire.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done by the domain services, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go, requests.go, reports.go: Use these types
*/
package api

import (
	"time"

	"github.com/warp/vacationflow/report"
	"github.com/warp/vacationflow/vacation"
)

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	DepartmentID string `json:"department_id"`
	ManagerID    string `json:"manager_id"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO never carries the password hash.
type UserDTO struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	DepartmentID string    `json:"department_id,omitempty"`
	ManagerID    string    `json:"manager_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserDTO(u vacation.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Login:        u.Login,
		Role:         string(u.Role),
		FullName:     u.FullName,
		Email:        u.Email,
		DepartmentID: u.DepartmentID,
		ManagerID:    u.ManagerID,
		CreatedAt:    u.CreatedAt,
	}
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

type CreateDepartmentRequest struct {
	Name                     string `json:"name"`
	MaxSimultaneousVacations *int   `json:"max_simultaneous_vacations"`
}

type DepartmentDTO struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	MaxSimultaneousVacations int       `json:"max_simultaneous_vacations"`
	CreatedAt                time.Time `json:"created_at"`
}

func toDepartmentDTO(d vacation.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:                       d.ID,
		Name:                     d.Name,
		MaxSimultaneousVacations: d.MaxSimultaneousVacations,
		CreatedAt:                d.CreatedAt,
	}
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Year          int       `json:"year"`
	TotalDays     int       `json:"total_days"`
	UsedDays      int       `json:"used_days"`
	AvailableDays int       `json:"available_days"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBalanceDTO(b vacation.Balance) BalanceDTO {
	return BalanceDTO{
		ID:            b.ID,
		UserID:        b.UserID,
		Year:          b.Year,
		TotalDays:     b.TotalDays,
		UsedDays:      b.UsedDays,
		AvailableDays: b.Available(),
		CreatedAt:     b.CreatedAt,
	}
}

// UpdateBalanceRequest is a partial overwrite; absent fields are kept.
type UpdateBalanceRequest struct {
	TotalDays *int `json:"total_days"`
	UsedDays  *int `json:"used_days"`
}

// =============================================================================
// VACATION REQUESTS
// =============================================================================

type CreateVacationRequest struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	VacationType string `json:"vacation_type"`
	Comment      string `json:"comment"`
}

type DecideRequest struct {
	Status         string `json:"status"`
	ManagerComment string `json:"manager_comment"`
}

type OverlapCheckRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// VacationRequestDTO is a request, optionally enriched with its owner.
type VacationRequestDTO struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	VacationType   string    `json:"vacation_type"`
	Status         string    `json:"status"`
	WorkDays       int       `json:"work_days"`
	Comment        string    `json:"comment,omitempty"`
	ManagerComment string    `json:"manager_comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	UserName     string `json:"user_name,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

func toRequestDTO(r vacation.Request) VacationRequestDTO {
	return VacationRequestDTO{
		ID:             r.ID,
		UserID:         r.UserID,
		StartDate:      r.Period.Start.String(),
		EndDate:        r.Period.End.String(),
		VacationType:   string(r.Type),
		Status:         string(r.Status),
		WorkDays:       r.WorkDays,
		Comment:        r.Comment,
		ManagerComment: r.ManagerComment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type HistoryDTO struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	Comment   string    `json:"comment,omitempty"`
	ActedBy   string    `json:"acted_by"`
	ActedAt   time.Time `json:"acted_at"`
}

func toHistoryDTO(h vacation.HistoryEntry) HistoryDTO {
	return HistoryDTO{
		ID:        h.ID,
		RequestID: h.RequestID,
		Action:    string(h.Action),
		Comment:   h.Comment,
		ActedBy:   h.ActedBy,
		ActedAt:   h.ActedAt,
	}
}

type OverlapWarningDTO struct {
	Date       string   `json:"date"`
	Count      int      `json:"count"`
	Employees  []string `json:"employees"`
	MaxAllowed int      `json:"max_allowed"`
}

func toOverlapDTO(w vacation.OverlapWarning) OverlapWarningDTO {
	return OverlapWarningDTO{
		Date:       w.Date.String(),
		Count:      w.Count,
		Employees:  w.Employees,
		MaxAllowed: w.MaxAllowed,
	}
}

// =============================================================================
// REPORTS AND CALENDAR
// =============================================================================

type ReportRowDTO struct {
	RequestID      string `json:"request_id"`
	Employee       string `json:"employee"`
	Email          string `json:"email"`
	Department     string `json:"department"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Type           string `json:"type"`
	WorkDays       int    `json:"work_days"`
	Status         string `json:"status"`
	Comment        string `json:"comment"`
	ManagerComment string `json:"manager_comment"`
}

func toReportRowDTO(r report.Row) ReportRowDTO {
	return ReportRowDTO{
		RequestID:      r.RequestID,
		Employee:       r.Employee,
		Email:          r.Email,
		Department:     r.Department,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Type:           r.Type,
		WorkDays:       r.WorkDays,
		Status:         string(r.Status),
		Comment:        r.Comment,
		ManagerComment: r.ManagerComment,
	}
}

type BalanceReportRowDTO struct {
	UserID      string `json:"user_id"`
	Employee    string `json:"employee"`
	Department  string `json:"department"`
	TotalDays   int    `json:"total_days"`
	UsedDays    int    `json:"used_days"`
	Available   int    `json:"available_days"`
	Utilization string `json:"utilization"`
}

type BalanceReportDTO struct {
	Year        int                   `json:"year"`
	Rows        []BalanceReportRowDTO `json:"rows"`
	TotalDays   int                   `json:"total_days"`
	UsedDays    int                   `json:"used_days"`
	Utilization string                `json:"utilization"`
}

func toBalanceReportDTO(s *report.BalanceSummary) BalanceReportDTO {
	dto := BalanceReportDTO{
		Year:        s.Year,
		Rows:        make([]BalanceReportRowDTO, 0, len(s.Rows)),
		TotalDays:   s.TotalDays,
		UsedDays:    s.UsedDays,
		Utilization: s.Utilization.StringFixed(2),
	}
	for _, r := range s.Rows {
		dto.Rows = append(dto.Rows, BalanceReportRowDTO{
			UserID:      r.UserID,
			Employee:    r.Employee,
			Department:  r.Department,
			TotalDays:   r.TotalDays,
			UsedDays:    r.UsedDays,
			Available:   r.Available,
			Utilization: r.Utilization.StringFixed(2),
		})
	}
	return dto
}

// CalendarEventDTO follows the FullCalendar event object.
type CalendarEventDTO struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Start           string             `json:"start"`
	End             string             `json:"end"`
	BackgroundColor string             `json:"backgroundColor"`
	BorderColor     string             `json:"borderColor"`
	ExtendedProps   CalendarEventProps `json:"extendedProps"`
}

type CalendarEventProps struct {
	UserID       string `json:"user_id"`
	VacationType string `json:"vacation_type"`
	WorkDays     int    `json:"work_days"`
}

const approvedColor = "#10B981"

func toCalendarEventDTO(e report.Event) CalendarEventDTO {
	return CalendarEventDTO{
		ID:              e.RequestID,
		Title:           e.Title,
		Start:           e.Start,
		End:             e.End,
		BackgroundColor: approvedColor,
		BorderColor:     approvedColor,
		ExtendedProps: CalendarEventProps{
			UserID:       e.UserID,
			VacationType: string(e.Type),
			WorkDays:     e.WorkDays,
		},
	}
}

// =============================================================================
// DEMO DATA
// =============================================================================

type SeedResultDTO struct {
	Skipped     bool `json:"skipped"`
	Departments int  `json:"departments"`
	Users       int  `json:"users"`
	Balances    int  `json:"balances"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
