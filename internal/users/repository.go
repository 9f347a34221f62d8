package users

import "context"

// Repository persists organization members.
type Repository interface {
	List(ctx context.Context, orgID int64, req ListRequest) ([]User, int, error)
	Get(ctx context.Context, orgID, id int64) (*User, error)
	Create(ctx context.Context, user User, passwordHash string) (int64, error)
	Update(ctx context.Context, user User) error
	SetActive(ctx context.Context, orgID, id int64, active bool) error
}
