package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/menubox/menubox/internal/models"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

// Fixed policy parameters of the verification protocol. These are part of
// the protocol contract, not deployment configuration.
const (
	CodeLength        = 6
	CodeTTL           = 10 * time.Minute
	ResendCooldown    = 60 * time.Second
	SendWindow        = 60 * time.Minute
	MaxSendsPerWindow = 5
)

var maxCode = big.NewInt(1_000_000)

// GenerateCode produces a uniformly random 6-digit decimal code. The code is
// the sole secret protecting redemption, so it is drawn from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, maxCode)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

// HashCode returns the hex-encoded SHA-256 digest of a code. Only digests
// are stored; equality of digests is how redemption matches codes.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// VerificationStore is the transactional record store contract. Mutate and
// Redeem must apply fn to the latest committed record and write the result
// as one atomic unit; concurrent calls for the same uid must serialize.
type VerificationStore interface {
	Upsert(ctx context.Context, rec *models.VerificationRecord) error
	Get(ctx context.Context, uid string) (*models.VerificationRecord, error)
	Mutate(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error)
	Redeem(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error)
}

// VerifiedReader reads the user profile's verified flag
type VerifiedReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// EmailGateway delivers a plaintext code to an address. Failures are
// surfaced to the caller; the protocol never retries and never rolls back
// the record write that preceded the send.
type EmailGateway interface {
	Send(ctx context.Context, to, code, appName string) error
}

// VerificationService owns the verification state machine: code issuance at
// signup, cooldown- and quota-limited resends, and at-most-once redemption.
type VerificationService struct {
	store   VerificationStore
	users   VerifiedReader
	gateway EmailGateway
	logger  *slog.Logger
	appName string

	// seams for deterministic tests
	now          func() time.Time
	generateCode func() (string, error)
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	store VerificationStore,
	users VerifiedReader,
	gateway EmailGateway,
	logger *slog.Logger,
	appName string,
) *VerificationService {
	return &VerificationService{
		store:        store,
		users:        users,
		gateway:      gateway,
		logger:       logger,
		appName:      appName,
		now:          time.Now,
		generateCode: GenerateCode,
	}
}

// Issue creates the verification record for a freshly signed-up owner and
// dispatches the first code. The record write commits before the email is
// attempted; a dispatch failure is reported as ErrEmailDispatch and leaves
// the committed record redeemable.
func (s *VerificationService) Issue(ctx context.Context, uid, email string) error {
	code, err := s.generateCode()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	now := s.now()
	rec := &models.VerificationRecord{
		UID:                  uid,
		Email:                email,
		CodeHash:             HashCode(code),
		Used:                 false,
		ExpiresAt:            now.Add(CodeTTL),
		LastSentAt:           now,
		SendCountWindowStart: now,
		SendCountInWindow:    1,
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		s.logger.Error("failed to create verification record",
			slog.String("uid", uid),
			slog.Any("error", err))
		return fmt.Errorf("failed to create verification record: %w", err)
	}

	if err := s.gateway.Send(ctx, email, code, s.appName); err != nil {
		s.logger.Error("verification email dispatch failed",
			slog.String("uid", uid),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("%w: %s", models.ErrEmailDispatch, err)
	}

	s.logger.Info("verification code issued",
		slog.String("uid", uid),
		slog.String("email", pkglogger.SanitizedEmail(email)))

	return nil
}

// Resend issues a replacement code, invalidating the previous one. All
// checks and counter updates happen inside one atomic mutation, so two
// concurrent resends cannot both pass the cooldown or quota against stale
// state. The email is sent only after the mutation commits.
func (s *VerificationService) Resend(ctx context.Context, callerUID, uid string) error {
	if callerUID == "" || callerUID != uid {
		return models.ErrNotSignedIn
	}

	code, err := s.generateCode()
	if err != nil {
		s.logger.Error("failed to generate verification code", slog.Any("error", err))
		return models.ErrInternalServer
	}
	newHash := HashCode(code)

	rec, err := s.store.Mutate(ctx, uid, func(rec *models.VerificationRecord) error {
		if rec.Used {
			return models.ErrAlreadyVerified
		}

		now := s.now()

		if elapsed := now.Sub(rec.LastSentAt); elapsed < ResendCooldown {
			return &models.TooSoonError{RetryAfter: ResendCooldown - elapsed}
		}

		count := rec.SendCountInWindow
		windowStart := rec.SendCountWindowStart
		if now.Sub(windowStart) > SendWindow {
			count = 0
			windowStart = now
		}

		if count >= MaxSendsPerWindow {
			return models.ErrTooManyRequests
		}

		rec.CodeHash = newHash
		rec.ExpiresAt = now.Add(CodeTTL)
		rec.LastSentAt = now
		rec.SendCountWindowStart = windowStart
		rec.SendCountInWindow = count + 1
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.gateway.Send(ctx, rec.Email, code, s.appName); err != nil {
		s.logger.Error("verification email dispatch failed",
			slog.String("uid", uid),
			slog.String("email", pkglogger.SanitizedEmail(rec.Email)),
			slog.Any("error", err))
		return fmt.Errorf("%w: %s", models.ErrEmailDispatch, err)
	}

	s.logger.Info("verification code resent",
		slog.String("uid", uid),
		slog.Int("send_count_in_window", rec.SendCountInWindow))

	return nil
}

// Redeem checks a submitted code and, on success, marks the record used and
// the user profile verified in the same atomic unit. Check order is fixed:
// used before expiry before hash, so a correct-but-late code reports
// expiry, and a reused valid code reports already-verified.
func (s *VerificationService) Redeem(ctx context.Context, callerUID, uid, inputCode string) error {
	if callerUID == "" || callerUID != uid {
		return models.ErrNotSignedIn
	}

	inputHash := HashCode(inputCode)

	_, err := s.store.Redeem(ctx, uid, func(rec *models.VerificationRecord) error {
		if rec.Used {
			return models.ErrAlreadyVerified
		}

		now := s.now()
		if now.After(rec.ExpiresAt) {
			return models.ErrCodeExpired
		}

		if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(inputHash)) != 1 {
			return models.ErrInvalidCode
		}

		verifiedAt := now
		rec.Used = true
		rec.VerifiedAt = &verifiedAt
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("email verified", slog.String("uid", uid))
	return nil
}

// Status reports whether the user has passed verification. Accounts that
// predate the verification flow count as verified.
func (s *VerificationService) Status(ctx context.Context, uid string) (bool, error) {
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return false, err
	}
	return user.Verified(), nil
}
