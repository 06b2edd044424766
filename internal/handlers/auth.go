package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
	pkghttp "github.com/menubox/menubox/pkg/http"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Me(ctx context.Context, uid string) (*models.User, error)
}

// AuthHandler handles signup, login and profile reads
type AuthHandler struct {
	service  AuthServiceInterface
	audit    *pkglogger.AuditLogger
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, audit *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		audit:    audit,
		ipConfig: ipConfig,
	}
}

// SignupRequest represents the request body for owner signup
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup registers a restaurant owner and starts email verification
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Signup(r.Context(), req.Email, req.Password)

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	h.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "signup",
		IPAddress: ip,
		Success:   err == nil,
	})

	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, resp)
}

// Login authenticates an owner or super-admin
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	event := pkglogger.AuditEvent{
		EventType: "login",
		IPAddress: ip,
		Success:   err == nil,
	}
	if err != nil {
		event.FailureReason = "invalid credentials"
	} else {
		event.UserID = resp.User.ID
	}
	h.audit.LogAuthAttempt(event)

	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Me returns the caller's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, user)
}
