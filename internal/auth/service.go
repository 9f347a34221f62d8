package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradewind-erp/tradewind/internal/platform/httpx"
	"github.com/tradewind-erp/tradewind/internal/shared"
)

// resetTokenTTL is the fixed validity window of a password reset token.
const resetTokenTTL = time.Hour

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByExternalSubject(ctx context.Context, subject string) (*User, error)
	CreateShadowUser(ctx context.Context, email, fullName, subject string) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
	TouchLastSeen(ctx context.Context, userID int64) error
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
	CreateResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (int64, error)
}

// Mailer delivers the password reset link. Delivery is an external concern;
// the auth flow only hands over recipient and link.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Service wraps authentication business rules for both credential schemes.
type Service struct {
	repo        Repository
	sessions    *shared.SessionManager
	logger      *slog.Logger
	tokenSecret []byte
	baseURL     string
	mailer      Mailer
}

// NewService constructs a Service. mailer may be nil, in which case reset
// links are only logged.
func NewService(repo Repository, sessions *shared.SessionManager, logger *slog.Logger, tokenSecret, baseURL string, mailer Mailer) *Service {
	return &Service{
		repo:        repo,
		sessions:    sessions,
		logger:      logger,
		tokenSecret: []byte(tokenSecret),
		baseURL:     baseURL,
		mailer:      mailer,
	}
}

// UserByID loads a user account.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// AuthenticatePassword validates email/password credentials.
func (s *Service) AuthenticatePassword(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		// Shadow accounts have no password credential.
		return nil, httpx.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, httpx.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, httpx.ErrAccountInactive
	}
	return user, nil
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// AuthenticateIdentityToken validates an externally issued identity token and
// resolves it to a local user, provisioning a shadow record on first sight.
func (s *Service) AuthenticateIdentityToken(ctx context.Context, rawToken string) (*User, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		return s.tokenSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: identity token rejected", httpx.ErrInvalidCredentials)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: identity token incomplete", httpx.ErrInvalidCredentials)
	}

	user, err := s.repo.FindByExternalSubject(ctx, claims.Subject)
	if errors.Is(err, httpx.ErrNotFound) {
		user, err = s.repo.CreateShadowUser(ctx, claims.Email, claims.Name, claims.Subject)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, httpx.ErrAccountInactive
	}
	return user, nil
}

// EstablishSession binds the session to the user and records login metadata.
func (s *Service) EstablishSession(ctx context.Context, sess *shared.Session, user *User, ip, ua string) error {
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	expiresAt := time.Now().Add(s.sessions.TTL())
	if err := s.repo.CreateSession(ctx, sess.ID, user.ID, expiresAt, ip, ua); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	if err := s.repo.TouchLastSeen(ctx, user.ID); err != nil {
		s.logger.Warn("touch last seen", slog.Any("error", err))
	}
	return nil
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// RequestPasswordReset issues a reset token for the account, if one exists.
// It reports success either way so the endpoint cannot be used to enumerate
// accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.repo.CreateResetToken(ctx, user.ID, hashToken(token), expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	if s.mailer == nil {
		s.logger.Info("password reset requested, no mailer configured", slog.String("email", email))
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		// Still report success to the caller; the failure is ours, not theirs.
		s.logger.Error("send password reset", slog.Any("error", err))
	}
	return nil
}

// ResetPassword consumes a reset token and replaces the password hash. Every
// active session of the user is revoked: a reset implies the old credential
// may be in the wrong hands.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.repo.ConsumeResetToken(ctx, hashToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return httpx.ErrInvalidToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.revokeSessions(ctx, userID)
}

// ChangePassword replaces the password of a logged-in user after verifying
// the current one. Sessions are revoked the same way a reset does.
func (s *Service) ChangePassword(ctx context.Context, user *User, current, newPassword string) error {
	if user.PasswordHash == "" {
		return fmt.Errorf("%w: account has no password credential", httpx.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return httpx.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.revokeSessions(ctx, user.ID)
}

// RevokeUserSessions terminates every live session of a user, both the redis
// entries and the postgres audit rows. Used when an account is deactivated.
func (s *Service) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.revokeSessions(ctx, userID)
}

func (s *Service) revokeSessions(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}
	if err := s.sessions.RevokeUserSessions(ctx, strconv.FormatInt(userID, 10)); err != nil {
		return fmt.Errorf("revoke live sessions: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
