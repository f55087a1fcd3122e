package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"campushr/internal/domain/auth"
	"campushr/internal/transport/http/api"
	"campushr/internal/transport/http/middleware"
)

type Handler struct {
	Store    *auth.Store
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(store *auth.Store, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	UserID    string `json:"userId"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	StaffID   string `json:"staffId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", reqID)
		return
	}

	creds, err := h.Store.UserByEmail(r.Context(), payload.Email)
	if errors.Is(err, auth.ErrNoUser) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}
	if err := auth.CheckPassword(creds.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	claims := auth.Claims{
		UserID:   creds.UserID,
		TenantID: creds.TenantID,
		RoleID:   creds.RoleID,
		RoleName: creds.RoleName,
		StaffID:  creds.StaffID,
		FullName: creds.FullName,
	}
	token, err := auth.GenerateToken(h.Secret, claims, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.TokenTTL).UTC().Format(time.RFC3339),
		UserID:    creds.UserID,
		FullName:  creds.FullName,
		Role:      creds.RoleName,
		StaffID:   creds.StaffID,
	}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	api.Success(w, user, reqID)
}
