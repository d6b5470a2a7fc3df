package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saazhq/saaz/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("a-sufficiently-long-test-secret")

func TestHS256_SignAndVerify(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	issuer := jwtx.NewIssuer(signer)
	tok, err := issuer.Issue(7, "VENUE")
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	claims, err := jwtx.NewVerifierHS256(testSecret).Verify(tok)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "VENUE", claims.Role)

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	require.Equal(t, 7*24*time.Hour, lifetime)
}

func TestHS256_ShortSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256([]byte("short"))
	require.Error(t, err)
}

func TestHS256_Rejections(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(testSecret)

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := jwtx.NewIssuer(signer).Issue(1, "USER")
		require.NoError(t, err)

		_, err = jwtx.NewVerifierHS256([]byte("another-long-enough-secret")).Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		iss := &jwtx.Issuer{
			Signer: signer,
			TTL:    time.Hour,
			Now:    func() time.Time { return time.Now().Add(-2 * time.Hour) },
		}
		tok, err := iss.Issue(1, "USER")
		require.NoError(t, err)

		_, err = verifier.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)

		_, err = verifier.Verify("")
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("algorithm mismatch", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		claims := jwtx.NewSessionClaims(1, "USER", time.Hour, time.Now())
		tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)

		_, err = verifier.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := jwtx.NewSessionClaims(1, "USER", time.Hour, time.Now())
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("missing user", func(t *testing.T) {
		claims := jwtx.NewSessionClaims(0, "", time.Hour, time.Now())
		tok, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = verifier.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}
