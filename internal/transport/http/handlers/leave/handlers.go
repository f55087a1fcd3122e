package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campushr/internal/domain/auth"
	"campushr/internal/domain/leave"
	"campushr/internal/platform/metrics"
	"campushr/internal/transport/http/api"
	"campushr/internal/transport/http/middleware"
	"campushr/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionStore
	Metrics *metrics.Metrics
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore, m *metrics.Metrics) *Handler {
	return &Handler{Service: service, Perms: perms, Metrics: m}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/applications", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/applications", h.handleListOwn)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/applications/{applicationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/applications/{applicationID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/applications/{applicationID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/applications/{applicationID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/pending", h.handlePending)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveAdjust, h.Perms)).Post("/balances/adjust", h.handleAdjustBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveAdjust, h.Perms)).Get("/balances/adjustments", h.handleListAdjustments)
	})
}

type submitRequest struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

type decisionRequest struct {
	Comments string `json:"comments"`
	Reason   string `json:"reason"`
}

type adjustRequest struct {
	StaffID   string  `json:"staffId"`
	LeaveType string  `json:"leaveType"`
	Year      int     `json:"year"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "startDate must be YYYY-MM-DD", reqID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "endDate must be YYYY-MM-DD", reqID)
		return
	}

	app, err := h.Service.Submit(r.Context(), user.TenantID, leave.Submission{
		ApplicantID:   user.StaffID,
		ApplicantName: user.FullName,
		LeaveType:     payload.LeaveType,
		StartDate:     start,
		EndDate:       end,
		Reason:        payload.Reason,
	})
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	api.Created(w, app, reqID)
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	apps, err := h.Service.ApplicationsFor(r.Context(), user.TenantID, user.StaffID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list applications", reqID)
		return
	}
	api.Success(w, apps, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	app, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "applicationID"))
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	if app.ApplicantID != user.StaffID && !auth.ApproverRoles[user.RoleName] && user.RoleName != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "not your application", reqID)
		return
	}
	api.Success(w, app, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	app, err := h.Service.Approve(r.Context(), user.TenantID, chi.URLParam(r, "applicationID"), user.RoleName, user.FullName, payload.Comments)
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CountLeaveDecision("approved")
	}
	api.Success(w, app, reqID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	app, err := h.Service.Reject(r.Context(), user.TenantID, chi.URLParam(r, "applicationID"), user.RoleName, user.FullName, payload.Reason)
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CountLeaveDecision("rejected")
	}
	api.Success(w, app, reqID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	if err := h.Service.Cancel(r.Context(), user.TenantID, chi.URLParam(r, "applicationID"), user.StaffID); err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CountLeaveDecision("cancelled")
	}
	api.Success(w, map[string]string{"status": leave.StatusCancelled}, reqID)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	apps, err := h.Service.PendingApplicationsFor(r.Context(), user.TenantID, user.RoleName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_pending_failed", "failed to list pending applications", reqID)
		return
	}
	api.Success(w, apps, reqID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID := user.StaffID
	if raw := r.URL.Query().Get("staffId"); raw != "" {
		if !auth.ApproverRoles[user.RoleName] && user.RoleName != auth.RoleAdmin {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another staff member's balance", reqID)
			return
		}
		staffID = raw
	}
	if staffID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "staffId required", reqID)
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := shared.ParseDate(raw + "-01-01")
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "year must be numeric", reqID)
			return
		}
		year = parsed.Year()
	}

	balance, err := h.Service.Balance(r.Context(), user.TenantID, staffID, year)
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	api.Success(w, balance, reqID)
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Year == 0 {
		payload.Year = time.Now().Year()
	}

	err := h.Service.AdjustBalance(r.Context(), user.TenantID, payload.StaffID, payload.LeaveType, payload.Reason, user.UserID, payload.Year, payload.Amount)
	if err != nil {
		h.failLeave(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "adjusted"}, reqID)
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID := r.URL.Query().Get("staffId")
	if staffID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "staffId required", reqID)
		return
	}

	adjustments, err := h.Service.Adjustments(r.Context(), user.TenantID, staffID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_adjustments_failed", "failed to list adjustments", reqID)
		return
	}
	api.Success(w, adjustments, reqID)
}

func (h *Handler) failLeave(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "application not found", reqID)
	case errors.Is(err, leave.ErrValidation):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "validation failed", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, leave.ErrInvalidState), errors.Is(err, leave.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_operation_failed", "leave operation failed", reqID)
	}
}
