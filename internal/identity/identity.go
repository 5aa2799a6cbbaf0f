// Package identity wraps the credential store behind user accounts.
// Usernames are mapped onto synthetic "dummy" emails because the providers
// key accounts by email.
package identity

import (
	"context"
	"errors"
	"strings"
)

// DefaultEmailDomain is the domain used for dummy emails when none is configured.
const DefaultEmailDomain = "example.com"

var (
	ErrEmailInUse         = errors.New("the email address is already in use by another account")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// Provider creates accounts and verifies and updates their credentials.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	VerifyPassword(ctx context.Context, email, password string) (string, error)
	UpdatePassword(ctx context.Context, uid, password string) error
	UpdateEmail(ctx context.Context, uid, email string) error
	DeleteAccount(ctx context.Context, uid string) error
}

// DummyEmail synthesises the login email for a username.
func DummyEmail(username, domain string) string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return username + "@" + strings.ToLower(domain)
}
