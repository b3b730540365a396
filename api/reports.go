package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/warp/vacationflow/report"
	"github.com/warp/vacationflow/seed"
	"github.com/warp/vacationflow/vacation"
)

// =============================================================================
// REPORTS (HR)
// =============================================================================

// VacationReport lists requests, optionally filtered by start date when
// both start_date and end_date are given.
func (h *Handler) VacationReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Reports.Vacations(r.Context(), currentActor(r), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	dtos := make([]ReportRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toReportRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportCSV streams the vacation report as an Excel-friendly CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Reports.Vacations(r.Context(), currentActor(r), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	// Buffer so a write failure can still become a 500.
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=vacation_report.csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// BalanceReport summarizes balances for ?year= (default: current year).
func (h *Handler) BalanceReport(w http.ResponseWriter, r *http.Request) {
	year := h.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			writeError(w, http.StatusBadRequest, "year must be a positive integer", err)
			return
		}
		year = y
	}

	summary, err := h.Reports.Balances(r.Context(), currentActor(r), year)
	if err != nil {
		writeDomainError(w, "Failed to build balance report", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceReportDTO(summary))
}

// =============================================================================
// CALENDAR
// =============================================================================

// DepartmentCalendar returns the approved vacations of the caller's
// department as calendar events.
func (h *Handler) DepartmentCalendar(w http.ResponseWriter, r *http.Request) {
	events, err := h.Reports.Calendar(r.Context(), currentActor(r))
	if err != nil {
		writeDomainError(w, "Failed to load calendar", err)
		return
	}

	dtos := make([]CalendarEventDTO, len(events))
	for i, e := range events {
		dtos[i] = toCalendarEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DEMO DATA (dev mode)
// =============================================================================

type resetter interface {
	Reset(ctx context.Context) error
}

// LoadDemoData seeds the demo departments and users. HR only.
func (h *Handler) LoadDemoData(w http.ResponseWriter, r *http.Request) {
	if err := vacation.Authorize(currentActor(r), vacation.OpManageDemoData, vacation.Target{}); err != nil {
		writeDomainError(w, "Only HR can load demo data", err)
		return
	}

	res, err := seed.Load(r.Context(), h.Store, h.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load demo data", err)
		return
	}

	writeJSON(w, http.StatusOK, SeedResultDTO{
		Skipped:     res.Skipped,
		Departments: res.Departments,
		Users:       res.Users,
		Balances:    res.Balances,
	})
}

// ResetDatabase clears all data. HR only; the caller's own account is
// deleted too.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := vacation.Authorize(currentActor(r), vacation.OpManageDemoData, vacation.Target{}); err != nil {
		writeDomainError(w, "Only HR can reset data", err)
		return
	}

	rs, ok := h.Store.(resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return
	}
	if err := rs.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
