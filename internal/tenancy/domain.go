// Package tenancy implements the authorization gate: role ordering, principal
// resolution, and the per-request organization/subscription check that scopes
// every business operation to the caller's organization.
package tenancy

import "time"

// Role is the ordered access level of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleOrgOwner   Role = "org_owner"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleOrder = map[Role]int{
	RoleUser:       1,
	RoleOrgOwner:   2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Valid reports whether the role is a known role.
func (r Role) Valid() bool {
	_, ok := roleOrder[r]
	return ok
}

// AtLeast reports whether the role meets the required level. Roles form a
// total order; this is the single comparison used by the whole gate.
func (r Role) AtLeast(required Role) bool {
	return roleOrder[r] >= roleOrder[required]
}

// SubscriptionStatus is the lifecycle state of an organization subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Organization is the tenancy boundary. Every business entity carries its ID.
type Organization struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription is the billing state of an organization.
type Subscription struct {
	OrganizationID int64
	Status         SubscriptionStatus
	PeriodEnd      *time.Time
	Indefinite     bool
	UpdatedAt      time.Time
}

// ActiveAt reports whether the subscription permits tenant operations at the
// given instant. Cancelled and expired subscriptions never do; an active one
// lapses once its period end passes, unless marked indefinite.
func (s Subscription) ActiveAt(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	if s.Indefinite || s.PeriodEnd == nil {
		return true
	}
	return now.Before(*s.PeriodEnd)
}

// Principal is the authenticated caller as seen by the gate.
type Principal struct {
	UserID         int64
	Email          string
	Role           Role
	OrganizationID *int64
}

// IsSuperAdmin reports whether the principal bypasses tenancy and
// subscription checks entirely.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}
