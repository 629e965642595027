package security

import (
	"context"
	"slices"
)

const RoleAdmin = "admin"

// Identity is the verified caller of a request.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
}

func (i *Identity) IsAdmin() bool {
	return i != nil && slices.Contains(i.Roles, RoleAdmin)
}

// Authenticator verifies a bearer token issued by the identity provider.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

type contextKey struct{}

// WithIdentity stores the caller on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the caller stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}

type jwtAuthenticator struct {
	tokens TokenManager
}

// NewJWTAuthenticator verifies HS256 tokens issued by TokenManager.
func NewJWTAuthenticator(tokens TokenManager) Authenticator {
	return &jwtAuthenticator{tokens: tokens}
}

func (a *jwtAuthenticator) Authenticate(_ context.Context, token string) (*Identity, error) {
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email, Roles: claims.Roles}, nil
}
