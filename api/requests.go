package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/vacationflow/vacation"
)

// Vacation request endpoints:
//
//	POST /api/vacation-requests                 Create (pending)
//	GET  /api/vacation-requests/my              Own requests
//	GET  /api/vacation-requests/department      Department requests (manager/HR)
//	GET  /api/vacation-requests/all             Every request (HR)
//	GET  /api/vacation-requests/{id}            One request
//	PUT  /api/vacation-requests/{id}            Approve or reject
//	POST /api/vacation-requests/{id}/cancel     Cancel
//	GET  /api/vacation-requests/{id}/history    Decision history
//	POST /api/vacation-requests/check-overlap   Capacity warnings for a range

// CreateVacationRequest submits a request for the caller.
func (h *Handler) CreateVacationRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateVacationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.Requests.CreateRequest(r.Context(), currentActor(r), vacation.CreateInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      req.VacationType,
		Comment:   req.Comment,
	})
	if err != nil {
		writeDomainError(w, "Failed to create vacation request", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ListMyRequests returns the caller's requests, newest first.
func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListOwn(r.Context(), currentActor(r))
	if err != nil {
		writeDomainError(w, "Failed to list vacation requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ListDepartmentRequests returns the requests of the caller's department
// with owner names attached.
func (h *Handler) ListDepartmentRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListDepartment(r.Context(), currentActor(r))
	if err != nil {
		writeDomainError(w, "Failed to list department requests", err)
		return
	}
	dtos, err := h.enrich(r.Context(), reqs, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load request owners", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAllRequests returns every request with owner and department. HR only.
func (h *Handler) ListAllRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListAll(r.Context(), currentActor(r))
	if err != nil {
		writeDomainError(w, "Failed to list vacation requests", err)
		return
	}
	dtos, err := h.enrich(r.Context(), reqs, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load request owners", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetVacationRequest returns a single request visible to the caller.
func (h *Handler) GetVacationRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Requests.Get(r.Context(), currentActor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to load vacation request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// DecideVacationRequest approves or rejects a pending request.
func (h *Handler) DecideVacationRequest(w http.ResponseWriter, r *http.Request) {
	var body DecideRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := h.Requests.Decide(r.Context(), currentActor(r), chi.URLParam(r, "id"),
		vacation.Status(body.Status), body.ManagerComment)
	if err != nil {
		writeDomainError(w, "Failed to update vacation request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

// CancelVacationRequest cancels a request and returns it.
func (h *Handler) CancelVacationRequest(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.Requests.Cancel(r.Context(), currentActor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to cancel vacation request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*cancelled))
}

// GetRequestHistory returns the decisions taken on a request, oldest first.
func (h *Handler) GetRequestHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Requests.History(r.Context(), currentActor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to load request history", err)
		return
	}

	dtos := make([]HistoryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CheckOverlap reports the dates in a range where the caller's department
// is already at capacity.
func (h *Handler) CheckOverlap(w http.ResponseWriter, r *http.Request) {
	var body OverlapCheckRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	warnings, err := h.Requests.CheckDepartmentOverlap(r.Context(), currentActor(r), body.StartDate, body.EndDate)
	if err != nil {
		writeDomainError(w, "Failed to check overlap", err)
		return
	}

	dtos := make([]OverlapWarningDTO, len(warnings))
	for i, wn := range warnings {
		dtos[i] = toOverlapDTO(wn)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func toRequestDTOs(reqs []vacation.Request) []VacationRequestDTO {
	dtos := make([]VacationRequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toRequestDTO(req)
	}
	return dtos
}

// enrich attaches owner name and email, and the owner's department when
// withDepartment is set. Owners that no longer exist are left blank.
func (h *Handler) enrich(ctx context.Context, reqs []vacation.Request, withDepartment bool) ([]VacationRequestDTO, error) {
	users := make(map[string]*vacation.User)
	dtos := make([]VacationRequestDTO, len(reqs))
	for i, req := range reqs {
		owner, seen := users[req.UserID]
		if !seen {
			u, err := h.Store.GetUser(ctx, req.UserID)
			if err != nil {
				return nil, err
			}
			users[req.UserID] = u
			owner = u
		}

		dto := toRequestDTO(req)
		if owner != nil {
			dto.UserName = owner.FullName
			dto.UserEmail = owner.Email
			if withDepartment {
				dto.DepartmentID = owner.DepartmentID
			}
		}
		dtos[i] = dto
	}
	return dtos, nil
}
