package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

type memoryUserRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]User), hashes: make(map[int64]string), nextID: 1000}
}

func (r *memoryUserRepo) List(ctx context.Context, orgID int64, req ListRequest) ([]User, int, error) {
	var users []User
	for _, u := range r.users {
		if u.OrganizationID != nil && *u.OrganizationID == orgID {
			users = append(users, u)
		}
	}
	return users, len(users), nil
}

func (r *memoryUserRepo) Get(ctx context.Context, orgID, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok || u.OrganizationID == nil || *u.OrganizationID != orgID {
		return nil, httpx.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, u User, passwordHash string) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return 0, httpx.ErrDuplicate
		}
	}
	u.ID = r.nextID
	u.IsActive = true
	r.nextID++
	r.users[u.ID] = u
	r.hashes[u.ID] = passwordHash
	return u.ID, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.users[u.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryUserRepo) SetActive(ctx context.Context, orgID, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok || u.OrganizationID == nil || *u.OrganizationID != orgID {
		return httpx.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

type recordingRevoker struct {
	revoked []int64
}

func (r *recordingRevoker) RevokeUserSessions(ctx context.Context, userID int64) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func orgPtr(id int64) *int64 { return &id }

func owner(orgID int64) *tenancy.Principal {
	return &tenancy.Principal{UserID: 1, Role: tenancy.RoleOrgOwner, OrganizationID: orgPtr(orgID)}
}

func superAdmin() *tenancy.Principal {
	return &tenancy.Principal{UserID: 99, Role: tenancy.RoleSuperAdmin}
}

func TestCreateMemberWithinOrg(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, &recordingRevoker{})

	user, err := svc.Create(context.Background(), owner(1), 0, CreateUserRequest{
		Email: "sales@acme.test", FullName: "Sales Rep", Role: tenancy.RoleUser, Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), *user.OrganizationID)
	require.True(t, user.IsActive)
	require.NotEmpty(t, repo.hashes[user.ID], "password stored hashed")
	require.NotEqual(t, "correct horse", repo.hashes[user.ID])
}

func TestOwnerCannotMintAdmins(t *testing.T) {
	svc := NewService(newMemoryUserRepo(), &recordingRevoker{})

	_, err := svc.Create(context.Background(), owner(1), 0, CreateUserRequest{
		Email: "boss@acme.test", FullName: "Boss", Role: tenancy.RoleAdmin, Password: "password123",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.Create(context.Background(), owner(1), 0, CreateUserRequest{
		Email: "root@acme.test", FullName: "Root", Role: tenancy.RoleSuperAdmin, Password: "password123",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.Create(context.Background(), owner(1), 0, CreateUserRequest{
		Email: "co@acme.test", FullName: "Co-owner", Role: tenancy.RoleOrgOwner, Password: "password123",
	})
	require.NoError(t, err, "org_owner is the owner's ceiling, inclusive")
}

func TestOwnerPinnedToOwnOrg(t *testing.T) {
	svc := NewService(newMemoryUserRepo(), &recordingRevoker{})

	_, err := svc.Create(context.Background(), owner(1), 2, CreateUserRequest{
		Email: "spy@other.test", FullName: "Spy", Role: tenancy.RoleUser, Password: "password123",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	_, _, err = svc.List(context.Background(), owner(1), 2, ListRequest{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestSuperAdminTargetsAnyOrg(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, &recordingRevoker{})

	user, err := svc.Create(context.Background(), superAdmin(), 5, CreateUserRequest{
		Email: "owner@fifth.test", FullName: "Fifth Owner", Role: tenancy.RoleOrgOwner, Password: "password123",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), *user.OrganizationID)

	admin, err := svc.Create(context.Background(), superAdmin(), 5, CreateUserRequest{
		Email: "admin@fifth.test", FullName: "Fifth Admin", Role: tenancy.RoleAdmin, Password: "password123",
	})
	require.NoError(t, err, "super admin can mint admins")
	require.Equal(t, tenancy.RoleAdmin, admin.Role)
}

func TestDeactivateRevokesSessions(t *testing.T) {
	repo := newMemoryUserRepo()
	revoker := &recordingRevoker{}
	svc := NewService(repo, revoker)

	user, err := svc.Create(context.Background(), owner(1), 0, CreateUserRequest{
		Email: "leaver@acme.test", FullName: "Leaver", Role: tenancy.RoleUser, Password: "password123",
	})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(context.Background(), owner(1), 0, user.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
	require.Equal(t, []int64{user.ID}, revoker.revoked)
}

func TestCannotDeactivateSelf(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, &recordingRevoker{})

	actor := owner(1)
	repo.users[actor.UserID] = User{ID: actor.UserID, OrganizationID: orgPtr(1), Email: "me@acme.test", Role: tenancy.RoleOrgOwner, IsActive: true}

	_, err := svc.Deactivate(context.Background(), actor, 0, actor.UserID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
