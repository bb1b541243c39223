package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/identity"
)

const bearerPrefix = "Bearer "

// SessionAuthenticator resolves bearer session tokens to live identities.
type SessionAuthenticator struct {
	Sessions *identity.Sessions
	Tokens   *identity.TokenIssuer
}

func NewSessionAuthenticator(sessions *identity.Sessions, tokens *identity.TokenIssuer) *SessionAuthenticator {
	return &SessionAuthenticator{Sessions: sessions, Tokens: tokens}
}

// Middleware rejects requests without a valid token for a live session.
// The token only names the session; the identity comes from the session so
// that identity switches and timeouts take effect immediately.
func (a *SessionAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization missing")
			return
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			unauthorized(w, "Malformed authorization header")
			return
		}

		claims, err := a.Tokens.Parse(strings.TrimSpace(authHeader[len(bearerPrefix):]))
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		id, err := a.Sessions.Touch(r.Context(), claims.SessionID)
		switch {
		case errors.Is(err, identity.ErrSessionExpired):
			unauthorized(w, "Session expired")
			return
		case err != nil:
			unauthorized(w, "Session not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rekama"`)
	http.Error(w, message, http.StatusUnauthorized)
}
