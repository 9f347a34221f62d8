package orgs

import "time"

type OrganizationPayload struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,max=64,lowercase"`
}

type SubscriptionPayload struct {
	Status     string     `json:"status" validate:"required,oneof=active expired cancelled"`
	PeriodEnd  *time.Time `json:"period_end,omitempty"`
	Indefinite bool       `json:"indefinite"`
}

type ListRequest struct {
	Search string
	Limit  int
	Offset int
}
