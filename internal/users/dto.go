package users

import "github.com/tradewind-erp/tradewind/internal/tenancy"

type CreateUserRequest struct {
	Email    string       `json:"email" validate:"required,email,max=254"`
	FullName string       `json:"full_name" validate:"required,max=200"`
	Role     tenancy.Role `json:"role" validate:"required"`
	Password string       `json:"password" validate:"required,min=8,max=128"`
}

type UpdateUserRequest struct {
	FullName *string       `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Role     *tenancy.Role `json:"role,omitempty"`
}

type ListRequest struct {
	Search string
	Limit  int
	Offset int
}
