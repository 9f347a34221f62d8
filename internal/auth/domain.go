package auth

import (
	"time"

	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// User represents a user account. Accounts arrive through one of two
// credential schemes: password registration, or shadow provisioning on first
// sight of an externally issued identity token (no password hash in that
// case).
type User struct {
	ID              int64
	Email           string
	FullName        string
	PasswordHash    string
	Role            tenancy.Role
	OrganizationID  *int64
	IsActive        bool
	ExternalSubject *string
	LastSeenAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ResetToken is a single-use, time-boxed password reset token. Only the
// SHA-256 of the token material is stored.
type ResetToken struct {
	ID         int64
	UserID     int64
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
