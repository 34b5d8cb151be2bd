package session

import (
	"net/http"
	"time"
)

const (
	userCookie  = "user"
	tokenCookie = "access_token"

	// defaultCookieDays is the expiry applied when the caller does not set one.
	defaultCookieDays = 7
)

// CookieOptions mirror the knobs the shared cookie helper exposes.
type CookieOptions struct {
	ExpiresDays int
	Path        string
	Secure      bool
	HTTPOnly    bool
}

// SetCookies writes every entry of cookieData as a path-scoped cookie with a
// 7-day default expiry.
func SetCookies(w http.ResponseWriter, cookieData map[string]string, opts CookieOptions) {
	days := opts.ExpiresDays
	if days == 0 {
		days = defaultCookieDays
	}
	path := opts.Path
	if path == "" {
		path = "/"
	}

	for name, value := range cookieData {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     path,
			Expires:  time.Now().Add(time.Duration(days) * 24 * time.Hour),
			Secure:   opts.Secure,
			HttpOnly: opts.HTTPOnly,
		})
	}
}

func removeCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
