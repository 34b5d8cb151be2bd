package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdminClient struct {
	verifyIDTokenFunc       func(ctx context.Context, idToken string) (*fbauth.Token, error)
	getUserFunc             func(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	updateUserFunc          func(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	revokeRefreshTokensFunc func(ctx context.Context, uid string) error
}

func (m *mockAdminClient) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	return m.verifyIDTokenFunc(ctx, idToken)
}

func (m *mockAdminClient) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	return m.getUserFunc(ctx, uid)
}

func (m *mockAdminClient) UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error) {
	return m.updateUserFunc(ctx, uid, user)
}

func (m *mockAdminClient) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.revokeRefreshTokensFunc(ctx, uid)
}

func newTestAuthenticator(admin adminClient, endpoint string) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{
		admin:      admin,
		apiKey:     "test-key",
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: time.Second},
	}
}

func identityServer(t *testing.T, status int, response any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestLogin_Success(t *testing.T) {
	srv := identityServer(t, http.StatusOK, map[string]string{
		"idToken":     "t1",
		"localId":     "u1",
		"email":       "m@example.com",
		"displayName": "Mariam",
	})
	defer srv.Close()

	f := newTestAuthenticator(nil, srv.URL)

	acc, err := f.Login(context.Background(), "m@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", acc.UID)
	assert.Equal(t, "Mariam", acc.Name)
	assert.Equal(t, "t1", acc.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := identityServer(t, http.StatusBadRequest, map[string]any{
		"error": map[string]string{"message": "INVALID_LOGIN_CREDENTIALS"},
	})
	defer srv.Close()

	f := newTestAuthenticator(nil, srv.URL)

	_, err := f.Login(context.Background(), "m@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_SetsDisplayName(t *testing.T) {
	srv := identityServer(t, http.StatusOK, map[string]string{
		"idToken": "t1",
		"localId": "u1",
		"email":   "m@example.com",
	})
	defer srv.Close()

	var updatedUID string
	admin := &mockAdminClient{
		updateUserFunc: func(_ context.Context, uid string, _ *fbauth.UserToUpdate) (*fbauth.UserRecord, error) {
			updatedUID = uid
			return &fbauth.UserRecord{}, nil
		},
	}

	f := newTestAuthenticator(admin, srv.URL)

	acc, err := f.Register(context.Background(), "Mariam", "m@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", updatedUID)
	assert.Equal(t, "Mariam", acc.Name)
	assert.Equal(t, "t1", acc.Token)
}

func TestRegister_EmailInUse(t *testing.T) {
	srv := identityServer(t, http.StatusBadRequest, map[string]any{
		"error": map[string]string{"message": "EMAIL_EXISTS"},
	})
	defer srv.Close()

	f := newTestAuthenticator(nil, srv.URL)

	_, err := f.Register(context.Background(), "Mariam", "m@example.com", "secret")
	require.ErrorIs(t, err, ErrEmailInUse)
}

func TestCurrentSession_EchoesVerifiedToken(t *testing.T) {
	admin := &mockAdminClient{
		verifyIDTokenFunc: func(_ context.Context, idToken string) (*fbauth.Token, error) {
			require.Equal(t, "t1", idToken)
			return &fbauth.Token{UID: "u1"}, nil
		},
		getUserFunc: func(_ context.Context, uid string) (*fbauth.UserRecord, error) {
			require.Equal(t, "u1", uid)
			return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{
				UID:         "u1",
				DisplayName: "Mariam",
				Email:       "m@example.com",
			}}, nil
		},
	}

	f := newTestAuthenticator(admin, defaultIdentityEndpoint)

	acc, err := f.CurrentSession(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", acc.UID)
	assert.Equal(t, "t1", acc.Token)
}

func TestCurrentSession_InvalidToken(t *testing.T) {
	admin := &mockAdminClient{
		verifyIDTokenFunc: func(context.Context, string) (*fbauth.Token, error) {
			return nil, fmt.Errorf("token expired")
		},
	}

	f := newTestAuthenticator(admin, defaultIdentityEndpoint)

	_, err := f.CurrentSession(context.Background(), "stale")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesTokens(t *testing.T) {
	var revoked string
	admin := &mockAdminClient{
		revokeRefreshTokensFunc: func(_ context.Context, uid string) error {
			revoked = uid
			return nil
		},
	}

	f := newTestAuthenticator(admin, defaultIdentityEndpoint)

	require.NoError(t, f.Logout(context.Background(), "u1"))
	assert.Equal(t, "u1", revoked)
}

func TestResetPassword_SendsOobCode(t *testing.T) {
	var gotRequestType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "accounts:sendOobCode"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotRequestType, _ = payload["requestType"].(string)
		_ = json.NewEncoder(w).Encode(map[string]string{"email": "m@example.com"})
	}))
	defer srv.Close()

	f := newTestAuthenticator(nil, srv.URL)

	require.NoError(t, f.ResetPassword(context.Background(), "m@example.com"))
	assert.Equal(t, "PASSWORD_RESET", gotRequestType)
}
