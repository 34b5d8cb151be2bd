package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidToken       = errors.New("invalid or expired access token")
	ErrAccountNotFound    = errors.New("account not found")
)

// Account is the identity the auth provider tracks for a storefront user.
// Token carries the access token issued for the current session, when one
// exists.
type Account struct {
	UID   string
	Name  string
	Email string
	Token string
}

// Authenticator is the auth collaborator behind signup, login and session
// resume. Handlers depend on this interface, never on the Firebase client.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*Account, error)
	Login(ctx context.Context, email, password string) (*Account, error)
	Logout(ctx context.Context, uid string) error
	CurrentSession(ctx context.Context, idToken string) (*Account, error)
	ResetPassword(ctx context.Context, email string) error
	UpdateDisplayName(ctx context.Context, uid, name string) error
}
