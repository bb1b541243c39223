package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarian/rekama-sys/pkg/authz"
)

func testIdentity() *Identity {
	return &Identity{
		UserID:    "usr_admin",
		Email:     "admin@rekama.sys",
		Role:      authz.RoleSystemAdministrator,
		SessionID: "sess-1",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)

	signed, expires, err := issuer.Issue(testIdentity())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := issuer.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "usr_admin", claims.Subject)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "System Administrator", claims.Role)
}

func TestTokenRejections(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	issuer := NewTokenIssuer(secret, time.Hour)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "other secret",
			token: func(t *testing.T) string {
				other := NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
				signed, _, err := other.Issue(testIdentity())
				require.NoError(t, err)
				return signed
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				old := NewTokenIssuer(secret, time.Minute)
				old.now = func() time.Time { return time.Now().Add(-time.Hour) }
				signed, _, err := old.Issue(testIdentity())
				require.NoError(t, err)
				return signed
			},
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				claims := Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    tokenIssuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
					SessionID: "sess-1",
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
				require.NoError(t, err)
				return signed
			},
		},
		{
			name: "missing session",
			token: func(t *testing.T) string {
				id := testIdentity()
				id.SessionID = ""
				signed, _, err := issuer.Issue(id)
				require.NoError(t, err)
				return signed
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token(t))
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenWithoutSecret(t *testing.T) {
	issuer := NewTokenIssuer(nil, 0)
	_, _, err := issuer.Issue(testIdentity())
	require.ErrorIs(t, err, ErrNoSecret)
	_, err = issuer.Parse("x.y.z")
	require.ErrorIs(t, err, ErrNoSecret)
}
