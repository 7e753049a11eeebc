package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"gamelounge/domain"
	errs "gamelounge/errors"
)

const testSecret = "portal-signing-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func Test_Verifier_Accepts_Valid_Token(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret)

	token := signToken(t, testSecret, Claims{
		Badges: []string{domain.ModeratorBadge},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	caller, err := verifier.Verify(token)
	req.NoError(err)
	req.Equal("alice", caller.UserID)
	req.True(caller.IsModerator())
}

func Test_Verifier_Rejections(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Garbage token",
			token: "not-a-token",
		},
		{
			name: "Wrong secret",
			token: signToken(t, "other-secret", Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
			}),
		},
		{
			name: "Expired",
			token: signToken(t, testSecret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "alice",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			}),
		},
		{
			name: "Missing subject",
			token: signToken(t, testSecret, Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			req.ErrorIs(err, errs.ErrNotAuthorized)
		})
	}
}

func Test_Verifier_Rejects_Unsigned_Algorithm(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)

	_, err = verifier.Verify(unsigned)
	req.ErrorIs(err, errs.ErrNotAuthorized)
}

func Test_Caller_Without_Badge_Is_Not_Moderator(t *testing.T) {
	req := require.New(t)
	caller := Caller{UserID: "alice", Badges: []string{"beta-tester"}}
	req.False(caller.IsModerator())
}
