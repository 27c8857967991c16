// VillageVitals | 2026
// schema.go

// Package schema creates the VillageVitals tables on demand. Every
// statement is idempotent, so initialization can run on each deploy.
package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/villagevitals/backend/internal/core"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL CHECK (role IN ('community', 'health-worker', 'admin')),
		is_verified BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS otp_codes (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		otp_code VARCHAR(6) NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		used BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_otp_codes_email_code
		ON otp_codes (email, otp_code, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS health_reports (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id),
		village_name VARCHAR(255),
		symptoms TEXT,
		severity VARCHAR(50) CHECK (severity IN ('low', 'medium', 'high', 'critical')),
		location_lat DECIMAL,
		location_lng DECIMAL,
		status VARCHAR(50) DEFAULT 'active' CHECK (status IN ('active', 'resolved', 'under_review')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS water_quality_reports (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id),
		location VARCHAR(255),
		ph_level DECIMAL,
		turbidity DECIMAL,
		contamination_level VARCHAR(50) CHECK (contamination_level IN ('safe', 'moderate', 'unsafe', 'critical')),
		location_lat DECIMAL,
		location_lng DECIMAL,
		status VARCHAR(50) DEFAULT 'active' CHECK (status IN ('active', 'resolved', 'under_review')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id),
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) CHECK (type IN ('health', 'water', 'emergency', 'general')),
		severity VARCHAR(50) CHECK (severity IN ('info', 'warning', 'critical', 'emergency')),
		target_audience VARCHAR(50) CHECK (target_audience IN ('all', 'health-workers', 'community', 'admins')),
		location VARCHAR(255),
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Initialize runs every schema statement in order inside one
// transaction, so a half-created schema never survives a failure.
// Tables that already exist are left untouched.
func Initialize(ctx context.Context, db *sqlx.DB) error {
	return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
		}
		return nil
	})
}
