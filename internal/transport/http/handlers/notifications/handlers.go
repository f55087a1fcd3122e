package notificationshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campushr/internal/domain/auth"
	"campushr/internal/domain/notifications"
	"campushr/internal/transport/http/api"
	"campushr/internal/transport/http/middleware"
	"campushr/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *notifications.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms)).Get("/unread-count", h.handleUnreadCount)
		r.With(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms)).Post("/{notificationID}/read", h.handleMarkRead)
		r.With(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms)).Post("/read-all", h.handleMarkAllRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 20, 100)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.Service.List(r.Context(), user.TenantID, user.UserID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to count notifications", reqID)
		return
	}
	api.Success(w, map[string]int{"unread": count}, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	err := h.Service.MarkRead(r.Context(), user.TenantID, user.UserID, chi.URLParam(r, "notificationID"))
	if errors.Is(err, notifications.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notification read", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, reqID)
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Service.MarkAllRead(r.Context(), user.TenantID, user.UserID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notifications read", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, reqID)
}
