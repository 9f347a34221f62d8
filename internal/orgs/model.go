// Package orgs manages organizations and their subscriptions. Mutations are
// super-admin territory; org owners can read their own organization for the
// account screen.
package orgs

import "time"

// Organization is a tenant.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription is the billing record of one organization. PeriodEnd is nil
// for open-ended subscriptions; Indefinite marks a subscription that never
// lapses regardless of the period end.
type Subscription struct {
	OrganizationID int64      `json:"organization_id"`
	Status         string     `json:"status"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
	Indefinite     bool       `json:"indefinite"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
