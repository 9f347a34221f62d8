// Package customers manages the buying parties quotes are issued to.
package customers

import "time"

// Customer is an organization-scoped buying party.
type Customer struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ContactName    string    `json:"contact_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
