package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, subject string, groups []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return signed
}

func TestIdentityMiddlewareSetsPrincipal(t *testing.T) {
	secret := "test-secret"
	token := signToken(t, secret, "emp-1", []string{"engineering"})

	handler := Identity(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := GetPrincipal(r.Context())
		if !ok {
			t.Fatal("expected principal in context")
		}
		if principal.EmployeeID != "emp-1" {
			t.Fatalf("unexpected principal: %+v", principal)
		}
		if len(principal.Groups) != 1 || principal.Groups[0] != "engineering" {
			t.Fatalf("unexpected groups: %v", principal.Groups)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestIdentityMiddlewareMissingToken(t *testing.T) {
	handler := Identity("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); ok {
			t.Fatal("did not expect principal in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestIdentityMiddlewareWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", "emp-1", nil)

	handler := Identity("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); ok {
			t.Fatal("did not expect principal for a token signed with another secret")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestIdentityMiddlewareEmptySubject(t *testing.T) {
	secret := "test-secret"
	token := signToken(t, secret, "", nil)

	handler := Identity(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); ok {
			t.Fatal("did not expect principal for a token without a subject")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}
