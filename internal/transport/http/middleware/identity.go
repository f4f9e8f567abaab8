package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated actor as asserted by the external identity
// provider. The engine never issues tokens; it only verifies the provider's
// signature and reads the subject.
type Principal struct {
	EmployeeID string
	Groups     []string
}

type identityClaims struct {
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

const principalKey ctxKey = "principal"

func Identity(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, Principal{
				EmployeeID: claims.Subject,
				Groups:     claims.Groups,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(secret, tokenString string) (*identityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}
