// VillageVitals | 2026
// entity.go

package account

import (
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const (
	RoleCommunity    = "community"
	RoleHealthWorker = "health-worker"
	RoleAdmin        = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleCommunity, RoleHealthWorker, RoleAdmin:
		return true
	}
	return false
}
