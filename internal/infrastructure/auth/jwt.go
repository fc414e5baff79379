package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stardeck/logbook/internal/domain"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// Identity is the resolved caller: the subject claim plus the optional
// profile claims the mobile app presents on /api/profile.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

type identityClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Verifier validates bearer tokens and resolves the caller identity.
// Identity management itself is external, this is only the validation edge.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &identityClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
	}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// identity on the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		identity, err := v.Verify(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	// websocket clients cannot set headers from the browser
	return r.URL.Query().Get("token")
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, userContextKey, identity)
}

// IdentityFrom returns the authenticated identity stored by Middleware.
func IdentityFrom(ctx context.Context) (*Identity, error) {
	identity, ok := ctx.Value(userContextKey).(*Identity)
	if !ok || identity == nil || identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return identity, nil
}

// UserIDFrom is IdentityFrom reduced to the subject.
func UserIDFrom(ctx context.Context) (string, error) {
	identity, err := IdentityFrom(ctx)
	if err != nil {
		return "", err
	}
	return identity.UserID, nil
}
