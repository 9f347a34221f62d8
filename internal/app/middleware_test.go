package app_test

import (
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

	"github.com/tradewind-erp/tradewind/internal/app"
	"github.com/tradewind-erp/tradewind/internal/shared"
)

func newStackRouter(t *testing.T) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "session-secret", time.Hour, false)

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         slog.Default(),
		Config:         &app.Config{AppRequestTimeout: 5 * time.Second},
		SessionManager: sessions,
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
	}) {
		r.Use(mw)
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/widgets", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

// A fresh client can always bootstrap: any safe request yields the session
// cookie plus its CSRF token, and echoing the token back lets mutations
// through the whole stack.
func TestSafeRequestIssuesCSRFToken(t *testing.T) {
	router := newStackRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	token := res.Header().Get(shared.CSRFHeader)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookies[0])
	req.Header.Set(shared.CSRFHeader, token)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)
}

func TestMutationWithoutTokenRejected(t *testing.T) {
	router := newStackRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Session present, token absent.
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{}"))
	req.AddCookie(cookies[0])
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)

	// Session present, token forged.
	req = httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{}"))
	req.AddCookie(cookies[0])
	req.Header.Set(shared.CSRFHeader, "not-the-token")
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestTokenStableForSession(t *testing.T) {
	router := newStackRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	first := res.Header().Get(shared.CSRFHeader)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.AddCookie(cookies[0])
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, first, res.Header().Get(shared.CSRFHeader))
}
