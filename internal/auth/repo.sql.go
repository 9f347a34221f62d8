package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

const userColumns = `id, email, full_name, password_hash, role, organization_id, is_active, external_subject, last_seen_at, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// FindByExternalSubject fetches a user by the subject of its identity provider.
func (r *PGRepository) FindByExternalSubject(ctx context.Context, subject string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE external_subject = $1`, subject)
	return scanUser(row)
}

// CreateShadowUser provisions a user record for an externally issued identity
// seen for the first time. Shadow users start without an organization; an
// org_owner or admin attaches them later.
func (r *PGRepository) CreateShadowUser(ctx context.Context, email, fullName, subject string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, password_hash, role, is_active, external_subject)
		VALUES (lower($1), $2, '', $3, TRUE, $4)
		RETURNING `+userColumns, email, fullName, tenancy.RoleUser, subject)
	return scanUser(row)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID)
	return err
}

// TouchLastSeen updates the last-seen timestamp.
func (r *PGRepository) TouchLastSeen(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID)
	return err
}

// CreateSession persists a new login session for auditing and revocation.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
		VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))
	`, id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteUserSessions removes every session record of a user.
func (r *PGRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// CreateResetToken stores a hashed password reset token.
func (r *PGRepository) CreateResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_resets (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, tokenHash, expiresAt)
	return err
}

// ConsumeResetToken marks a token consumed and returns its user, atomically.
// Unknown, already consumed, and expired tokens all resolve to not found.
func (r *PGRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `
		UPDATE password_resets
		SET consumed_at = NOW()
		WHERE token_hash = $1 AND consumed_at IS NULL AND expires_at > $2
		RETURNING user_id
	`, tokenHash, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.OrganizationID,
		&user.IsActive,
		&user.ExternalSubject,
		&user.LastSeenAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
