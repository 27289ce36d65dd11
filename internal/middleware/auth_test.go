package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmeshcher/bankoffice-system/internal/model"
)

type stubResolver struct {
	user *model.User
	err  error
}

func (s *stubResolver) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	return s.user, s.err
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc-123", "abc-123"},
		{"Bearer   abc-123  ", "abc-123"},
		{"abc-123", "abc-123"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := TokenFromHeader(tt.header); got != tt.want {
			t.Fatalf("TokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	user := &model.User{ID: "u1", Username: "alice", Role: model.RoleTeller}
	m := NewAuthMiddleware(&stubResolver{user: user})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		got, ok := GetUserFromContext(r.Context())
		if !ok {
			t.Fatalf("user not in context")
		}
		if got.ID != "u1" {
			t.Fatalf("user id = %q, want u1", got.ID)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer some-token")

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_RawTokenAccepted(t *testing.T) {
	user := &model.User{ID: "u1"}
	m := NewAuthMiddleware(&stubResolver{user: user})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "some-token")

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	m := NewAuthMiddleware(&stubResolver{user: &model.User{}})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)

	m.Middleware(next).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ResolverError(t *testing.T) {
	m := NewAuthMiddleware(&stubResolver{err: errors.New("session expired")})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set("Authorization", "Bearer stale-token")

	m.Middleware(next).ServeHTTP(w, r)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
