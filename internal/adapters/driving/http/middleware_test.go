package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatstack/rag-core/internal/core/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingToken(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	handler := m.Authenticate(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	handler := m.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			return nil, domain.ErrTokenExpired
		},
	})
	handler := m.Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	var seen *domain.AuthContext
	m := NewAuthMiddleware(&mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			if token != "good-token" {
				t.Errorf("unexpected token: %q", token)
			}
			return &domain.AuthContext{UserID: "u1", Role: domain.RoleMember}, nil
		},
	})
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Errorf("expected auth context on request, got %+v", seen)
	}
}

func TestRequireAdmin_Member(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	handler := m.RequireAdmin(okHandler())

	ctx := context.WithValue(context.Background(), authContextKey,
		&domain.AuthContext{UserID: "u1", Role: domain.RoleMember})
	req := httptest.NewRequest("POST", "/", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestRequireAdmin_Admin(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	handler := m.RequireAdmin(okHandler())

	ctx := context.WithValue(context.Background(), authContextKey,
		&domain.AuthContext{UserID: "u1", Role: domain.RoleAdmin})
	req := httptest.NewRequest("POST", "/", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestRequireAdmin_NoContext(t *testing.T) {
	m := NewAuthMiddleware(&mockAuthService{})
	handler := m.RequireAdmin(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	m := NewRecoveryMiddleware()
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
		{"extra whitespace", "Bearer   abc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
