package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/menubox/menubox/internal/auth"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// VerificationServiceInterface defines the interface for the verification protocol
type VerificationServiceInterface interface {
	Resend(ctx context.Context, callerUID, uid string) error
	Redeem(ctx context.Context, callerUID, uid, inputCode string) error
	Status(ctx context.Context, uid string) (bool, error)
}

// VerificationHandler exposes the verification protocol over HTTP. The
// target uid always comes from the request body and is checked against the
// session identity inside the protocol, so a stale session surfaces as
// not_signed_in rather than acting on the wrong account.
type VerificationHandler struct {
	service VerificationServiceInterface
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(service VerificationServiceInterface) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// ResendRequest represents the request body for requesting a new code
type ResendRequest struct {
	UID string `json:"uid" validate:"required"`
}

// RedeemRequest represents the request body for submitting a code
type RedeemRequest struct {
	UID  string `json:"uid" validate:"required"`
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// StatusResponse reports whether the caller has verified their email
type StatusResponse struct {
	Verified bool `json:"verified"`
}

// Resend issues a replacement verification code
func (h *VerificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Resend(r.Context(), claims.UserID, req.UID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// Redeem submits a code for verification
func (h *VerificationHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Redeem(r.Context(), claims.UserID, req.UID, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// Status reports the caller's verification state
func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	verified, err := h.service.Status(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Verified: verified})
}
