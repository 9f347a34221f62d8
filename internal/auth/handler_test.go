package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/auth"
	"github.com/tradewind-erp/tradewind/internal/shared"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
)

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	svc := auth.NewService(repo, sessions, slog.Default(), tokenSecret, "http://app.test", nil)
	handler := auth.NewHandler(slog.Default(), svc, sessions)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, sessions
}

// commitRecorder commits the session right before the response headers are
// written, mirroring the production middleware; otherwise the recorder's
// header snapshot would miss the session cookie.
type commitRecorder struct {
	*httptest.ResponseRecorder
	ctx       context.Context
	req       *http.Request
	sessions  *shared.SessionManager
	sess      *shared.Session
	committed bool
}

func (w *commitRecorder) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		_ = w.sessions.Commit(w.ctx, w.ResponseRecorder, w.req, w.sess)
	}
	w.ResponseRecorder.WriteHeader(statusCode)
}

func (w *commitRecorder) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseRecorder.Write(data)
}

func doJSON(t *testing.T, sessions *shared.SessionManager, router http.Handler, target, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	wrapped := &commitRecorder{ResponseRecorder: res, ctx: ctx, req: req, sessions: sessions, sess: sess}
	router.ServeHTTP(wrapped, req)
	if !wrapped.committed {
		require.NoError(t, sessions.Commit(ctx, res, req, sess))
	}
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(auth.User{
		Email:        "owner@acme.test",
		PasswordHash: hashedPassword(t, "correct-horse"),
		Role:         tenancy.RoleOrgOwner,
		IsActive:     true,
	})
	router, sessions := newAuthRouter(t, repo)

	res, sess := doJSON(t, sessions, router,
		"/auth/login", `{"email":"owner@acme.test","password":"correct-horse"}`)

	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, "owner@acme.test", body["email"])
	require.NotContains(t, res.Body.String(), "password")
	require.NotEmpty(t, sess.User())

	// Session cookie written with the hardening attributes.
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "test_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	// Login was recorded server-side.
	require.Contains(t, repo.sessions, sess.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(auth.User{
		Email:        "owner@acme.test",
		PasswordHash: hashedPassword(t, "correct-horse"),
		IsActive:     true,
	})
	router, sessions := newAuthRouter(t, repo)

	res, sess := doJSON(t, sessions, router,
		"/auth/login", `{"email":"owner@acme.test","password":"wrong-password"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(auth.User{
		Email:        "gone@acme.test",
		PasswordHash: hashedPassword(t, "correct-horse"),
		IsActive:     false,
	})
	router, sessions := newAuthRouter(t, repo)

	res, _ := doJSON(t, sessions, router,
		"/auth/login", `{"email":"gone@acme.test","password":"correct-horse"}`)

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestIdentityTokenLogin(t *testing.T) {
	repo := newStubRepo()
	router, sessions := newAuthRouter(t, repo)

	raw := signIdentityToken(t, "idp|42", "jamie@vendor.test", time.Hour)
	res, sess := doJSON(t, sessions, router,
		"/auth/token", `{"token":"`+raw+`"}`)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, sess.User())
	require.Len(t, repo.users, 1)
}

func TestResetRequestNeverDisclosesAccounts(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(auth.User{Email: "owner@acme.test", IsActive: true})
	router, sessions := newAuthRouter(t, repo)

	known, _ := doJSON(t, sessions, router,
		"/auth/password-reset/request", `{"email":"owner@acme.test"}`)
	unknown, _ := doJSON(t, sessions, router,
		"/auth/password-reset/request", `{"email":"ghost@acme.test"}`)

	require.Equal(t, http.StatusAccepted, known.Code)
	require.Equal(t, http.StatusAccepted, unknown.Code)
	require.JSONEq(t, known.Body.String(), unknown.Body.String())
}

func TestLoginValidation(t *testing.T) {
	router, sessions := newAuthRouter(t, newStubRepo())

	res, _ := doJSON(t, sessions, router,
		"/auth/login", `{"email":"not-an-email","password":"short"}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
}
