package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"

// adminClient is the slice of *fbauth.Client the service uses.
type adminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseAuthenticator implements Authenticator on the Firebase Admin SDK
// for token verification and account management, and on the Identity Toolkit
// REST API for the password flows the Admin SDK does not expose.
type FirebaseAuthenticator struct {
	admin      adminClient
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewFirebaseAuthenticator builds the Firebase app from the service account
// credentials file and returns the authenticator bound to its auth client.
func NewFirebaseAuthenticator(ctx context.Context, credsFile, apiKey string) (*FirebaseAuthenticator, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &FirebaseAuthenticator{
		admin:      client,
		apiKey:     apiKey,
		endpoint:   defaultIdentityEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type identityResponse struct {
	IDToken     string `json:"idToken"`
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Register creates the account through the Identity Toolkit signUp endpoint
// and sets the display name through the Admin SDK, returning the account with
// its freshly issued token.
func (f *FirebaseAuthenticator) Register(ctx context.Context, name, email, password string) (*Account, error) {
	resp, err := f.identityCall(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	if _, err := f.admin.UpdateUser(ctx, resp.LocalID, (&fbauth.UserToUpdate{}).DisplayName(name)); err != nil {
		return nil, fmt.Errorf("failed to set display name: %w", err)
	}

	return &Account{UID: resp.LocalID, Name: name, Email: resp.Email, Token: resp.IDToken}, nil
}

// Login signs in with email and password and returns the account behind the
// credentials.
func (f *FirebaseAuthenticator) Login(ctx context.Context, email, password string) (*Account, error) {
	resp, err := f.identityCall(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	return &Account{UID: resp.LocalID, Name: resp.DisplayName, Email: resp.Email, Token: resp.IDToken}, nil
}

// Logout revokes the user's refresh tokens so no further access tokens can be
// minted for the session.
func (f *FirebaseAuthenticator) Logout(ctx context.Context, uid string) error {
	if err := f.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// CurrentSession verifies the access token and returns the live account it
// belongs to. The verified token is echoed back as the session token.
func (f *FirebaseAuthenticator) CurrentSession(ctx context.Context, idToken string) (*Account, error) {
	token, err := f.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := f.admin.GetUser(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountNotFound, err)
	}

	return &Account{
		UID:   user.UID,
		Name:  user.DisplayName,
		Email: user.Email,
		Token: idToken,
	}, nil
}

// ResetPassword asks Identity Toolkit to send the password reset email.
func (f *FirebaseAuthenticator) ResetPassword(ctx context.Context, email string) error {
	_, err := f.identityCall(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	})
	return err
}

// UpdateDisplayName renames the account's profile.
func (f *FirebaseAuthenticator) UpdateDisplayName(ctx context.Context, uid, name string) error {
	if _, err := f.admin.UpdateUser(ctx, uid, (&fbauth.UserToUpdate{}).DisplayName(name)); err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	return nil
}

func (f *FirebaseAuthenticator) identityCall(ctx context.Context, action string, payload map[string]any) (*identityResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", f.endpoint, action, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit %s call failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ie identityError
		_ = json.NewDecoder(resp.Body).Decode(&ie)
		return nil, mapIdentityError(action, ie.Error.Message)
	}

	var out identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return &out, nil
}

func mapIdentityError(action, message string) error {
	switch {
	case strings.HasPrefix(message, "EMAIL_EXISTS"):
		return ErrEmailInUse
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case message == "":
		return fmt.Errorf("identity toolkit %s call failed", action)
	default:
		return fmt.Errorf("identity toolkit %s call failed: %s", action, message)
	}
}
