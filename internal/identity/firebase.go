package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
)

// FirebaseProvider manages accounts with the Firebase Admin SDK. Password
// checks go through the Identity Toolkit API, which the Admin SDK lacks.
type FirebaseProvider struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

// NewFirebaseProvider creates a FirebaseProvider. toolkit may be nil, in which
// case VerifyPassword always fails.
func NewFirebaseProvider(authClient *auth.Client, toolkit *identitytoolkit.Service) *FirebaseProvider {
	return &FirebaseProvider{auth: authClient, toolkit: toolkit}
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("create firebase user: %w", err)
	}
	return record.UID, nil
}

// VerifyPassword signs in with email and password and returns the account's UID
func (p *FirebaseProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	if p.toolkit == nil {
		return "", errors.New("password sign-in is not configured")
	}
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("verify password: %w", err)
	}
	return resp.LocalId, nil
}

func (p *FirebaseProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	_, err := p.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(password))
	return p.mapUpdateErr(err)
}

func (p *FirebaseProvider) UpdateEmail(ctx context.Context, uid, email string) error {
	_, err := p.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Email(email))
	return p.mapUpdateErr(err)
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	err := p.auth.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return ErrAccountNotFound
	}
	return err
}

func (p *FirebaseProvider) mapUpdateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case auth.IsUserNotFound(err):
		return ErrAccountNotFound
	case auth.IsEmailAlreadyExists(err):
		return ErrEmailInUse
	default:
		return fmt.Errorf("update firebase user: %w", err)
	}
}

// IDTokenVerifier checks Firebase ID tokens issued to clients that signed in with the SDK.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}
