/*
handlers.go - HTTP API handlers for the vacation request engine

PURPOSE:
  Exposes the vacation engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the domain services.

ENDPOINTS:
  Auth:
    POST   /api/auth/register             Register user (+ current-year balance)
    POST   /api/auth/login                Issue token
    GET    /api/auth/me                   Current user

  Departments:
    GET    /api/departments               List departments
    POST   /api/departments               Create department (HR)

  Balances:
    GET    /api/vacation-balance/my       Own balance, created on first read
    GET    /api/vacation-balance/{userID} Someone's balance (manager/HR)
    PUT    /api/vacation-balance/{userID} Overwrite balance (HR)

  Requests, reports and calendar: see requests.go and reports.go.

ARCHITECTURE:
  Handler struct holds the services. Authorization decisions live in
  vacation.Authorize; handlers only translate errors to statuses.

ERROR HANDLING:
  Errors are returned as JSON {error, details}:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid token
  - 403: Operation not permitted for the caller
  - 404: Resource not found
  - 409: Invalid state transition, duplicate
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/vacationflow/auth"
	"github.com/warp/vacationflow/report"
	"github.com/warp/vacationflow/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    vacation.TxStore
	Requests *vacation.RequestService
	Auth     *auth.Service
	Reports  *report.Service

	// DevMode exposes the demo data endpoints.
	DevMode bool
	Now     func() time.Time
}

// NewHandler wires the services around one store.
func NewHandler(store vacation.TxStore, requests *vacation.RequestService, authSvc *auth.Service) *Handler {
	return &Handler{
		Store:    store,
		Requests: requests,
		Auth:     authSvc,
		Reports:  report.NewService(store),
		Now:      time.Now,
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

type ctxKey int

const userKey ctxKey = iota

// RequireAuth resolves the bearer token and stores the user in the context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		user, err := h.Auth.Authenticate(r.Context(), token)
		if err != nil {
			writeDomainError(w, "Invalid token", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser is set by RequireAuth; handlers behind it may rely on it.
func currentUser(r *http.Request) *vacation.User {
	u, _ := r.Context().Value(userKey).(*vacation.User)
	return u
}

func currentActor(r *http.Request) vacation.Actor {
	if u := currentUser(r); u != nil {
		return u.Actor()
	}
	return vacation.Actor{}
}

// Register creates a user account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Auth.Register(r.Context(), auth.RegisterInput{
		Login:        req.Login,
		Password:     req.Password,
		Role:         req.Role,
		FullName:     req.FullName,
		Email:        req.Email,
		DepartmentID: req.DepartmentID,
		ManagerID:    req.ManagerID,
	})
	if err != nil {
		writeDomainError(w, "Failed to register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(*user))
}

// Login exchanges credentials for a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.Auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeDomainError(w, "Invalid login or password", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserDTO(*user)})
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(*currentUser(r)))
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

// ListDepartments returns all departments.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list departments", err)
		return
	}

	dtos := make([]DepartmentDTO, len(depts))
	for i, d := range depts {
		dtos[i] = toDepartmentDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDepartment adds a department. HR only.
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	if err := vacation.Authorize(currentActor(r), vacation.OpManageDepartments, vacation.Target{}); err != nil {
		writeDomainError(w, "Only HR can create departments", err)
		return
	}

	var req CreateDepartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	maxAllowed := vacation.DefaultMaxSimultaneous
	if req.MaxSimultaneousVacations != nil {
		maxAllowed = *req.MaxSimultaneousVacations
	}
	if maxAllowed < 1 {
		writeError(w, http.StatusBadRequest, "max_simultaneous_vacations must be at least 1", nil)
		return
	}

	dept := vacation.Department{
		ID:                       uuid.NewString(),
		Name:                     name,
		MaxSimultaneousVacations: maxAllowed,
		CreatedAt:                h.Now().UTC(),
	}
	if err := h.Store.CreateDepartment(r.Context(), dept); err != nil {
		writeDomainError(w, "Failed to create department", err)
		return
	}

	writeJSON(w, http.StatusCreated, toDepartmentDTO(dept))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetMyBalance returns the caller's current-year balance, creating it with
// the default allotment on first read.
func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	ledger := h.Requests.Ledger()
	b, err := ledger.GetOrCreate(r.Context(), currentUser(r).ID, ledger.CurrentYear())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// GetUserBalance returns another user's current-year balance. Unlike
// GetMyBalance it never creates one.
func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	target, ok := h.balanceTarget(w, r, userID, vacation.OpViewBalance)
	if !ok {
		return
	}

	ledger := h.Requests.Ledger()
	b, err := ledger.Get(r.Context(), target.ID, ledger.CurrentYear())
	if err != nil {
		writeDomainError(w, "Balance not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// UpdateUserBalance overwrites total and/or used days. HR only. A user
// without a current-year balance is 404; nothing is created.
func (h *Handler) UpdateUserBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	target, ok := h.balanceTarget(w, r, userID, vacation.OpUpdateBalance)
	if !ok {
		return
	}

	var req UpdateBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ledger := h.Requests.Ledger()
	b, err := ledger.Update(r.Context(), target.ID, ledger.CurrentYear(), vacation.BalanceUpdate{
		TotalDays: req.TotalDays,
		UsedDays:  req.UsedDays,
	})
	if err != nil {
		writeDomainError(w, "Failed to update balance", err)
		return
	}

	log.Printf("[Balance] %s updated balance of %s for %d", currentUser(r).ID, target.ID, b.Year)
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// balanceTarget loads the balance owner and authorizes op against it.
// Denied callers get 403 before existence is revealed.
func (h *Handler) balanceTarget(w http.ResponseWriter, r *http.Request, userID string, op vacation.Operation) (*vacation.User, bool) {
	actor := currentActor(r)

	owner, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user", err)
		return nil, false
	}
	target := vacation.Target{OwnerID: userID}
	if owner != nil {
		target.DepartmentID = owner.DepartmentID
	}
	if err := vacation.Authorize(actor, op, target); err != nil {
		writeDomainError(w, "Access denied", err)
		return nil, false
	}
	if owner == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return nil, false
	}
	return owner, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case vacation.IsValidation(err):
		return http.StatusBadRequest
	case vacation.IsForbidden(err):
		return http.StatusForbidden
	case vacation.IsNotFound(err):
		return http.StatusNotFound
	case vacation.IsStateError(err), vacation.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}
