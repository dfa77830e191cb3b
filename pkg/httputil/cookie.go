package httputil

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const AuthCookieName = "bot_token"

var ErrNoToken = errors.New("no auth token found in header, query or cookie")

// SetAuthCookie stores a client token for browser callers.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
	}

	// SameSite=None requires Secure=true, so use Lax for plain http
	if secure {
		cookie.SameSite = http.SameSiteNoneMode
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}

	http.SetCookie(w, cookie)
}

// GetTokenFromCookie extracts the token from the auth cookie
func GetTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return "", errors.New("auth cookie not found")
	}

	if cookie.Value == "" {
		return "", errors.New("auth cookie is empty")
	}

	return cookie.Value, nil
}

// GetTokenFromRequest checks the Authorization header, then the token query
// parameter (browsers cannot set headers on a WebSocket upgrade), then the cookie.
func GetTokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token), nil
		}
		return authHeader, nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	token, err := GetTokenFromCookie(r)
	if err == nil {
		return token, nil
	}

	return "", ErrNoToken
}
