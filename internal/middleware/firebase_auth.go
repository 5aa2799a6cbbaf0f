package middleware

import (
	"context"
	"fmt"

	"github.com/anonto42/unemployed-avengers/backend/internal/identity"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
)

// FirebaseTokenAuth turns a Firebase ID token into a session. The token's
// UID must belong to an existing profile.
type FirebaseTokenAuth struct {
	verifier identity.IDTokenVerifier
	users    repositories.UserRepository
}

func NewFirebaseTokenAuth(verifier identity.IDTokenVerifier, users repositories.UserRepository) *FirebaseTokenAuth {
	return &FirebaseTokenAuth{verifier: verifier, users: users}
}

// Session verifies idToken and loads the matching profile
func (f *FirebaseTokenAuth) Session(ctx context.Context, idToken string) (*models.Session, error) {
	token, err := f.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	user, err := f.users.GetUserByID(ctx, token.UID)
	if err != nil {
		return nil, err
	}
	return &models.Session{UserID: user.ID, Username: user.Username}, nil
}

// User verifies idToken and returns the full profile
func (f *FirebaseTokenAuth) User(ctx context.Context, idToken string) (*models.User, error) {
	token, err := f.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return f.users.GetUserByID(ctx, token.UID)
}
