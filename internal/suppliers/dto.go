package suppliers

type SupplierPayload struct {
	Code         string `json:"code" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=200"`
	ContactName  string `json:"contact_name" validate:"max=120"`
	Email        string `json:"email" validate:"omitempty,email,max=254"`
	Phone        string `json:"phone" validate:"max=32"`
	Address      string `json:"address" validate:"max=500"`
	PaymentTerms string `json:"payment_terms" validate:"max=120"`
}

type ListRequest struct {
	Search string
	Limit  int
	Offset int
}
