package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

// SessionRevoker terminates all live sessions of a user. Deactivation must
// lock the account out immediately, not at next login.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID int64) error
}

type Service struct {
	repo    Repository
	revoker SessionRevoker
}

func NewService(repo Repository, revoker SessionRevoker) *Service {
	return &Service{repo: repo, revoker: revoker}
}

// resolveOrg picks the organization the actor operates on. Org owners are
// pinned to their own organization; super admins may target any org.
func resolveOrg(actor *tenancy.Principal, requested int64) (int64, error) {
	if actor == nil {
		return 0, httpx.ErrUnauthorized
	}
	if actor.IsSuperAdmin() {
		if requested > 0 {
			return requested, nil
		}
		if actor.OrganizationID != nil {
			return *actor.OrganizationID, nil
		}
		return 0, fmt.Errorf("%w: organization required", httpx.ErrValidation)
	}
	if actor.OrganizationID == nil {
		return 0, fmt.Errorf("%w: no organization", httpx.ErrForbidden)
	}
	if requested > 0 && requested != *actor.OrganizationID {
		return 0, fmt.Errorf("%w: cannot manage another organization", httpx.ErrForbidden)
	}
	return *actor.OrganizationID, nil
}

// maxAssignableRole caps what a member can be given. Org owners hand out
// roles up to org_owner; only super admins can mint admins.
func maxAssignableRole(actor *tenancy.Principal) tenancy.Role {
	if actor != nil && actor.IsSuperAdmin() {
		return tenancy.RoleAdmin
	}
	return tenancy.RoleOrgOwner
}

func (s *Service) List(ctx context.Context, actor *tenancy.Principal, requestedOrg int64, req ListRequest) ([]User, int, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, orgID, req)
}

func (s *Service) Get(ctx context.Context, actor *tenancy.Principal, requestedOrg, id int64) (*User, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, actor *tenancy.Principal, requestedOrg int64, req CreateUserRequest) (*User, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, req.Role)
	}
	if req.Role.AtLeast(maxAssignableRole(actor)) && req.Role != maxAssignableRole(actor) {
		return nil, fmt.Errorf("%w: cannot assign role %s", httpx.ErrForbidden, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, User{
		OrganizationID: &orgID,
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           req.Role,
	}, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Update(ctx context.Context, actor *tenancy.Principal, requestedOrg, id int64, req UpdateUserRequest) (*User, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		existing.FullName = *req.FullName
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, *req.Role)
		}
		if req.Role.AtLeast(maxAssignableRole(actor)) && *req.Role != maxAssignableRole(actor) {
			return nil, fmt.Errorf("%w: cannot assign role %s", httpx.ErrForbidden, *req.Role)
		}
		existing.Role = *req.Role
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

// Deactivate disables the account and revokes its sessions so access ends
// with this call rather than at session expiry.
func (s *Service) Deactivate(ctx context.Context, actor *tenancy.Principal, requestedOrg, id int64) (*User, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, err
	}
	if actor.UserID == id {
		return nil, fmt.Errorf("%w: cannot deactivate yourself", httpx.ErrValidation)
	}
	if err := s.repo.SetActive(ctx, orgID, id, false); err != nil {
		return nil, err
	}
	if err := s.revoker.RevokeUserSessions(ctx, id); err != nil {
		return nil, fmt.Errorf("revoke sessions: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Activate(ctx context.Context, actor *tenancy.Principal, requestedOrg, id int64) (*User, error) {
	orgID, err := resolveOrg(actor, requestedOrg)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, orgID, id, true); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orgID, id)
}
