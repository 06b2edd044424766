package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/menubox/menubox/internal/models"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// writeServiceError maps service-layer errors onto the HTTP error taxonomy.
// Every verification protocol outcome has a stable machine-readable code the
// client keys its copy off.
func writeServiceError(w http.ResponseWriter, err error) {
	var tooSoon *models.TooSoonError

	switch {
	case errors.As(err, &tooSoon):
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(tooSoon.RetryAfter.Seconds())+1))
		pkghttp.WriteErrorWithDetails(w, http.StatusTooManyRequests, "too_soon",
			"a code was sent recently, wait before requesting another", tooSoon.Error())
	case errors.Is(err, models.ErrTooManyRequests):
		pkghttp.WriteError(w, http.StatusTooManyRequests, "too_many_requests",
			"resend limit reached, try again later")
	case errors.Is(err, models.ErrNotSignedIn):
		pkghttp.WriteError(w, http.StatusUnauthorized, "not_signed_in", "please sign in again")
	case errors.Is(err, models.ErrRecordNotFound):
		pkghttp.WriteError(w, http.StatusNotFound, "record_not_found", "no verification in progress")
	case errors.Is(err, models.ErrAlreadyVerified):
		pkghttp.WriteError(w, http.StatusConflict, "already_verified", "this account is already verified")
	case errors.Is(err, models.ErrCodeExpired):
		pkghttp.WriteError(w, http.StatusGone, "code_expired", "the code has expired, request a new one")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_code", "incorrect code, try again")
	case errors.Is(err, models.ErrEmailDispatch):
		pkghttp.WriteError(w, http.StatusBadGateway, "email_dispatch_failed",
			"could not send the email, try resending later")
	case errors.Is(err, models.ErrPlanInactive):
		pkghttp.WriteError(w, http.StatusForbidden, "plan_inactive", "this menu is currently unavailable")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "resource already exists")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "invalid request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "invalid credentials")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "forbidden")
	default:
		pkghttp.WriteInternalError(w, "internal server error")
	}
}
