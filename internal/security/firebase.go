package security

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"bikerental-backend/internal/logger"
)

// idTokenVerifier is the part of the Firebase auth client we use.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseAuthenticator struct {
	verifier idTokenVerifier
}

// NewFirebaseAuthenticator verifies Firebase ID tokens. Admins carry the
// custom claim admin=true. If credentialsFile is empty application default
// credentials are used.
func NewFirebaseAuthenticator(ctx context.Context, projectID, credentialsFile string) (Authenticator, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseAuthenticator{verifier: client}, nil
}

func (a *firebaseAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	logger.ExternalServiceCall("firebase", "VerifyIDToken")
	tok, err := a.verifier.VerifyIDToken(ctx, token)
	logger.ExternalServiceResult("firebase", "VerifyIDToken", err)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	id := &Identity{UserID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if admin, ok := tok.Claims["admin"].(bool); ok && admin {
		id.Roles = append(id.Roles, RoleAdmin)
	}
	return id, nil
}
