package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
)

// User is the authenticated identity as the storefront tracks it.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// Session holds {user, isAuthenticated, accessToken, error}. AccessToken is
// present exactly when IsAuthenticated is true.
type Session struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	AccessToken     string `json:"accessToken,omitempty"`
	Error           string `json:"error,omitempty"`
}

// LoginSuccess sets user, authenticated flag and token, clearing any error.
func (s Session) LoginSuccess(u User) Session {
	s.User = &u
	s.IsAuthenticated = true
	s.AccessToken = u.AccessToken
	s.Error = ""
	return s
}

// LoginFailure records the error and drops authentication state.
func (s Session) LoginFailure(msg string) Session {
	s.Error = msg
	s.IsAuthenticated = false
	s.AccessToken = ""
	return s
}

// Logout clears everything.
func (s Session) Logout() Session {
	return Session{}
}

// UpdateUserName renames the profile in place; a no-op when logged out.
func (s Session) UpdateUserName(name string) Session {
	if s.User != nil {
		u := *s.User
		u.Name = name
		s.User = &u
	}
	return s
}

// CurrentSessionFunc asks the auth collaborator for the live session behind
// the stored token, together with the token the collaborator currently
// issues for it.
type CurrentSessionFunc func(ctx context.Context, storedToken string) (*User, error)

// Manager ties session transitions to their cookie side effects. It is the
// explicit application-context object: handlers receive it, nothing is a
// package-level singleton.
type Manager struct {
	currentSession CurrentSessionFunc
}

func NewManager(currentSession CurrentSessionFunc) *Manager {
	return &Manager{currentSession: currentSession}
}

// LoginSuccess persists user and token into the two cookies and returns the
// new session state.
func (m *Manager) LoginSuccess(w http.ResponseWriter, u User) Session {
	blob, err := json.Marshal(u)
	if err != nil {
		log.Printf("failed to marshal user cookie: %v", err)
		return Session{}.LoginFailure("failed to persist session")
	}

	// The JSON blob is base64-wrapped: raw JSON is not a valid cookie value.
	SetCookies(w, map[string]string{
		userCookie:  base64.URLEncoding.EncodeToString(blob),
		tokenCookie: u.AccessToken,
	}, CookieOptions{})

	return Session{}.LoginSuccess(u)
}

// Logout removes both cookies and returns the cleared session.
func (m *Manager) Logout(w http.ResponseWriter) Session {
	removeCookie(w, userCookie)
	removeCookie(w, tokenCookie)
	return Session{}.Logout()
}

// Resume rebuilds the session from the request cookies. A present token
// cookie is only trusted after the auth collaborator reissues the same token
// for the live session; a stale mismatch leaves the caller logged out.
func (m *Manager) Resume(ctx context.Context, r *http.Request) Session {
	storedToken := readCookie(r, tokenCookie)
	if storedToken == "" {
		return Session{}
	}

	var stored User
	if encoded := readCookie(r, userCookie); encoded != "" {
		blob, err := base64.URLEncoding.DecodeString(encoded)
		if err == nil {
			err = json.Unmarshal(blob, &stored)
		}
		if err != nil {
			log.Printf("failed to parse user cookie: %v", err)
			return Session{}
		}
	}

	live, err := m.currentSession(ctx, storedToken)
	if err != nil {
		return Session{}.LoginFailure("no active session")
	}

	if live.AccessToken != storedToken {
		// Stale cookie: do not silently trust it.
		return Session{}
	}

	return Session{}.LoginSuccess(*live)
}
