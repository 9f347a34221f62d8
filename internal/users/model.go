// Package users implements user management within an organization: listing,
// inviting, and deactivating members. Org owners manage their own
// organization; super admins may target any organization.
package users

import (
	"time"

	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// User is an organization member. The password hash never leaves the
// repository layer.
type User struct {
	ID             int64        `json:"id"`
	OrganizationID *int64       `json:"organization_id,omitempty"`
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	Role           tenancy.Role `json:"role"`
	IsActive       bool         `json:"is_active"`
	LastSeenAt     *time.Time   `json:"last_seen_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
