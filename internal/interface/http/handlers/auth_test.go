package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

type stubResolver struct {
	userID shared.UserID
	err    error
	token  string
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (shared.UserID, error) {
	s.token = token
	if s.err != nil {
		return 0, s.err
	}
	return s.userID, nil
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(r))

	r.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", BearerToken(r), "scheme is case-insensitive")

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", BearerToken(r))

	r.Header.Set("Authorization", "Bearer")
	assert.Equal(t, "", BearerToken(r))
}

func TestSessionAuth_ValidToken(t *testing.T) {
	resolver := &stubResolver{userID: shared.UserID(42)}

	var gotID shared.UserID
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := SessionAuth(resolver)(next)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/gamification/profile", nil)
	r.Header.Set("Authorization", "Bearer session-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-token", resolver.token)
	assert.True(t, gotOK)
	assert.Equal(t, shared.UserID(42), gotID)
}

func TestSessionAuth_MissingHeader(t *testing.T) {
	resolver := &stubResolver{userID: shared.UserID(42)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	handler := SessionAuth(resolver)(next)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestSessionAuth_InvalidToken(t *testing.T) {
	resolver := &stubResolver{err: errors.New("expired")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	handler := SessionAuth(resolver)(next)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer stale-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired session")
}

func TestUserIDFromContext_Empty(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}
