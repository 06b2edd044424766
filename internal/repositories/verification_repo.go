package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/menubox/menubox/internal/database"
	"github.com/menubox/menubox/internal/models"
)

// VerificationRepository handles verification record data access. Every
// mutation of an existing record goes through a row-locked transaction so
// that concurrent callers never act on stale cooldown or quota state.
type VerificationRepository struct {
	db *database.DB
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *database.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func scanVerificationRow(row rowScanner) (*models.VerificationRecord, error) {
	var rec models.VerificationRecord

	err := row.Scan(
		&rec.UID, &rec.Email, &rec.CodeHash, &rec.Used,
		&rec.ExpiresAt, &rec.LastSentAt,
		&rec.SendCountWindowStart, &rec.SendCountInWindow,
		&rec.CreatedAt, &rec.VerifiedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rec, nil
}

const verificationColumns = `uid, email, code_hash, used, expires_at, last_sent_at,
	send_count_window_start, send_count_in_window, created_at, verified_at`

// Upsert writes the record for a user, creating it or replacing the active
// code state in place. created_at is preserved on conflict.
func (r *VerificationRepository) Upsert(ctx context.Context, rec *models.VerificationRecord) error {
	query := `
		INSERT INTO email_verifications
			(uid, email, code_hash, used, expires_at, last_sent_at, send_count_window_start, send_count_in_window)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			code_hash = EXCLUDED.code_hash,
			used = EXCLUDED.used,
			expires_at = EXCLUDED.expires_at,
			last_sent_at = EXCLUDED.last_sent_at,
			send_count_window_start = EXCLUDED.send_count_window_start,
			send_count_in_window = EXCLUDED.send_count_in_window
	`

	_, err := r.db.Pool.Exec(ctx, query,
		rec.UID, rec.Email, rec.CodeHash, rec.Used,
		rec.ExpiresAt, rec.LastSentAt,
		rec.SendCountWindowStart, rec.SendCountInWindow,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert verification record: %w", database.MapPostgresError(err))
	}

	return nil
}

// Get retrieves the record for a user without locking it
func (r *VerificationRepository) Get(ctx context.Context, uid string) (*models.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + ` FROM email_verifications WHERE uid = $1`

	rec, err := scanVerificationRow(r.db.Pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Mutate loads the user's record under a row lock, applies fn to it, and
// writes the mutated state back, all in one transaction. If fn returns an
// error nothing is written. Concurrent Mutate calls for the same uid
// serialize on the row lock, so fn always sees the latest committed state.
func (r *VerificationRepository) Mutate(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error) {
	var rec *models.VerificationRecord

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		rec, err = lockVerificationRow(ctx, tx, uid)
		if err != nil {
			return err
		}

		if err := fn(rec); err != nil {
			return err
		}

		return writeVerificationRow(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Redeem is Mutate plus the user profile flip: when fn accepts the record,
// the record update and users.is_verified are committed as one atomic unit.
func (r *VerificationRepository) Redeem(ctx context.Context, uid string, fn func(rec *models.VerificationRecord) error) (*models.VerificationRecord, error) {
	var rec *models.VerificationRecord

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		rec, err = lockVerificationRow(ctx, tx, uid)
		if err != nil {
			return err
		}

		if err := fn(rec); err != nil {
			return err
		}

		if err := writeVerificationRow(ctx, tx, rec); err != nil {
			return err
		}

		result, err := tx.Exec(ctx,
			`UPDATE users SET is_verified = TRUE, verified_at = $2, updated_at = NOW() WHERE id = $1`,
			uid, rec.VerifiedAt)
		if err != nil {
			return fmt.Errorf("failed to mark user verified: %w", database.MapPostgresError(err))
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func lockVerificationRow(ctx context.Context, tx pgx.Tx, uid string) (*models.VerificationRecord, error) {
	query := `SELECT ` + verificationColumns + ` FROM email_verifications WHERE uid = $1 FOR UPDATE`

	rec, err := scanVerificationRow(tx.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func writeVerificationRow(ctx context.Context, tx pgx.Tx, rec *models.VerificationRecord) error {
	query := `
		UPDATE email_verifications SET
			code_hash = $2,
			used = $3,
			expires_at = $4,
			last_sent_at = $5,
			send_count_window_start = $6,
			send_count_in_window = $7,
			verified_at = $8
		WHERE uid = $1
	`

	_, err := tx.Exec(ctx, query,
		rec.UID, rec.CodeHash, rec.Used,
		rec.ExpiresAt, rec.LastSentAt,
		rec.SendCountWindowStart, rec.SendCountInWindow,
		rec.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write verification record: %w", database.MapPostgresError(err))
	}
	return nil
}
