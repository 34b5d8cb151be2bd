package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/auth"
	"github.com/mariam-shebl4/ecommerce-firebase/internal/session"
)

type AuthHandler struct {
	authenticator auth.Authenticator
	sessions      *session.Manager
	timeout       time.Duration
}

func NewAuthHandler(authenticator auth.Authenticator, sessions *session.Manager, timeout time.Duration) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, sessions: sessions, timeout: timeout}
}

type SignupRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequestDTO struct {
	Email string `json:"email"`
}

type UpdateProfileRequestDTO struct {
	Name string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || !validEmail(req.Email) || len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "invalid_request", "name, email and a password of at least 6 characters are required")
		return
	}

	account, err := h.authenticator.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	s := h.sessions.LoginSuccess(w, sessionUser(account))
	respondJSON(w, http.StatusCreated, s)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !validEmail(req.Email) || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	account, err := h.authenticator.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	s := h.sessions.LoginSuccess(w, sessionUser(account))
	respondJSON(w, http.StatusOK, s)
}

// Logout revokes the live session when the cookie still verifies, and clears
// the cookies either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if c, err := r.Cookie("access_token"); err == nil && c.Value != "" {
		if account, err := h.authenticator.CurrentSession(ctx, c.Value); err == nil {
			if err := h.authenticator.Logout(ctx, account.UID); err != nil {
				log.Printf("failed to revoke session for %s: %v", account.UID, err)
			}
		}
	}

	s := h.sessions.Logout(w)
	respondJSON(w, http.StatusOK, s)
}

// Session rebuilds the session from the request cookies, the startup resume
// path of the storefront.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, h.sessions.Resume(ctx, r))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ResetPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !validEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}

	if err := h.authenticator.ResetPassword(ctx, req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "reset email sent"})
}

// UpdateProfile renames the authenticated user and refreshes the user cookie
// so the stored profile matches.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account := accountFromContext(r.Context())

	var req UpdateProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name must not be empty")
		return
	}

	if err := h.authenticator.UpdateDisplayName(ctx, account.UID, req.Name); err != nil {
		handleServiceError(w, err)
		return
	}

	account.Name = req.Name
	s := h.sessions.LoginSuccess(w, sessionUser(account))
	respondJSON(w, http.StatusOK, s)
}

func sessionUser(account *auth.Account) session.User {
	return session.User{
		ID:          account.UID,
		Name:        account.Name,
		Email:       account.Email,
		AccessToken: account.Token,
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
