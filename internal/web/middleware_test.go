package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	redisRepo "github.com/yourorg/stocksim/internal/repository/redis"
)

// fakeSessions is an in-memory Sessions used by tests.
type fakeSessions struct {
	tokens  map[string]uuid.UUID
	flashes map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		tokens:  make(map[string]uuid.UUID),
		flashes: make(map[string]string),
	}
}

func (f *fakeSessions) Create(_ context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, redisRepo.ErrNoSession
	}
	return id, nil
}

func (f *fakeSessions) Destroy(_ context.Context, token string) error {
	delete(f.tokens, token)
	delete(f.flashes, token)
	return nil
}

func (f *fakeSessions) SetFlash(_ context.Context, token, msg string) error {
	f.flashes[token] = msg
	return nil
}

func (f *fakeSessions) PopFlash(_ context.Context, token string) string {
	msg := f.flashes[token]
	delete(f.flashes, token)
	return msg
}

func TestNoCacheHeaders(t *testing.T) {
	handler := NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestRequireLoginRedirectsWithoutSession(t *testing.T) {
	sessions := newFakeSessions()
	handler := RequireLogin(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireLoginRejectsDeadToken(t *testing.T) {
	sessions := newFakeSessions()
	handler := RequireLogin(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run with a dead token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireLoginInjectsUserID(t *testing.T) {
	sessions := newFakeSessions()
	userID := uuid.New()
	token, err := sessions.Create(context.Background(), userID)
	require.NoError(t, err)

	var got uuid.UUID
	handler := RequireLogin(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserIDFromCtx(r.Context())
		require.Equal(t, token, TokenFromCtx(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, got)
}
