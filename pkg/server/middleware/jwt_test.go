package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setup(t *testing.T) (*SessionAuthenticator, *identity.Sessions, *identity.TokenIssuer, *clock, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), durability.NewMemory())
	require.NoError(t, err)

	c := &clock{now: time.Now()}
	sessions := identity.NewSessions(st, identity.WithSessionClock(c.Now))
	tokens := identity.NewTokenIssuer([]byte("secret"), time.Hour)
	return NewSessionAuthenticator(sessions, tokens), sessions, tokens, c, st
}

func serve(auth *SessionAuthenticator, header string) (*httptest.ResponseRecorder, *identity.Identity) {
	var seen *identity.Identity
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identity.Get(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/records", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, seen
}

func TestSessionAuthenticator(t *testing.T) {
	auth, sessions, tokens, _, _ := setup(t)

	id, err := sessions.Login(context.Background(), store.SeedOfficerID, nil)
	require.NoError(t, err)
	token, _, err := tokens.Issue(id)
	require.NoError(t, err)

	w, seen := serve(auth, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "sarah@rekama.sys", seen.Email)
	assert.Equal(t, id.SessionID, seen.SessionID)
}

func TestSessionAuthenticatorRejects(t *testing.T) {
	auth, sessions, tokens, _, _ := setup(t)

	id, err := sessions.Login(context.Background(), store.SeedViewerID, nil)
	require.NoError(t, err)
	ended, _, err := tokens.Issue(id)
	require.NoError(t, err)
	require.NoError(t, sessions.Logout(context.Background(), id.SessionID))

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{"missing", "", "Authorization missing"},
		{"wrong scheme", `Token token="abc"`, "Malformed authorization header"},
		{"garbage", "Bearer abc.def.ghi", "Invalid token"},
		{"ended session", "Bearer " + ended, "Session not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serve(auth, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.Nil(t, seen)
		})
	}
}

func TestSessionAuthenticatorIdleTimeout(t *testing.T) {
	auth, sessions, tokens, c, st := setup(t)

	id, err := sessions.Login(context.Background(), store.SeedAdminID, nil)
	require.NoError(t, err)
	token, _, err := tokens.Issue(id)
	require.NoError(t, err)

	c.now = c.now.Add(identity.DefaultIdleTimeout + time.Second)
	w, _ := serve(auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired")
	assert.Equal(t, model.ActionTimeout, st.Logs()[0].Action)
}
