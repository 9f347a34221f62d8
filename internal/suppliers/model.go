// Package suppliers manages the selling parties purchase orders go out to.
package suppliers

import "time"

// Supplier is an organization-scoped selling party.
type Supplier struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ContactName    string    `json:"contact_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	PaymentTerms   string    `json:"payment_terms"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
