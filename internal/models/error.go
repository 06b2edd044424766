package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Verification protocol outcomes
	ErrNotSignedIn     = errors.New("caller identity does not match target user")
	ErrRecordNotFound  = errors.New("verification record not found")
	ErrAlreadyVerified = errors.New("already verified")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooSoon         = errors.New("resend requested before cooldown elapsed")
	ErrTooManyRequests = errors.New("resend quota exhausted for current window")

	// Email dispatch failed after the verification record was committed.
	// The issued code is still redeemable; the caller may resend after cooldown.
	ErrEmailDispatch = errors.New("verification email dispatch failed")

	// Tenant plan state errors
	ErrPlanInactive = errors.New("restaurant plan is not active")
)

// TooSoonError carries the remaining cooldown so callers can show a countdown.
// It matches ErrTooSoon under errors.Is.
type TooSoonError struct {
	RetryAfter time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("resend available in %ds", int(e.RetryAfter.Seconds()))
}

func (e *TooSoonError) Is(target error) bool {
	return target == ErrTooSoon
}
