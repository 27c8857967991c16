// VillageVitals | 2026
// repository.go

package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/villagevitals/backend/internal/core"
)

type Repository interface {
	// Create persists a fresh code for email expiring TTL from now.
	// Previously issued codes for the same email are left untouched;
	// each stays independently valid until its own expiry or use.
	Create(ctx context.Context, email, code string) error

	// Consume validates (email, code) against the most recently created
	// matching row that is unused and unexpired, marking it used in the
	// same statement. Returns false when no such row exists.
	Consume(ctx context.Context, email, code string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, code string) error {
	query := `
		INSERT INTO otp_codes (email, otp_code, expires_at)
		VALUES ($1, $2, $3)`

	expiresAt := time.Now().Add(TTL)

	if _, err := r.db.ExecContext(ctx, query, email, code, expiresAt); err != nil {
		return fmt.Errorf("create otp: %w", err)
	}

	return nil
}

// Consume is a single conditional UPDATE rather than select-then-mark:
// the `used = FALSE` guard on the outer statement makes concurrent
// validations of the same row serialize at the store, so exactly one
// caller wins.
func (r *repository) Consume(
	ctx context.Context,
	email, code string,
) (bool, error) {
	query := `
		UPDATE otp_codes
		SET used = TRUE
		WHERE id = (
			SELECT id FROM otp_codes
			WHERE email = $1
				AND otp_code = $2
				AND used = FALSE
				AND expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
		)
		AND used = FALSE
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, query, email, code)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	return true, nil
}
