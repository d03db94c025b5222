package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifierAcceptsSignedToken(t *testing.T) {
	raw, err := SignToken("s3cret", "user-7", time.Minute)
	require.NoError(t, err)

	v, err := NewHMACVerifier("s3cret")
	require.NoError(t, err)
	tok, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-7", claims["sub"])
}

func TestHMACVerifierRejectsWrongSecret(t *testing.T) {
	raw, err := SignToken("other", "user-7", time.Minute)
	require.NoError(t, err)
	v, _ := NewHMACVerifier("s3cret")
	_, err = v.Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestHMACVerifierRejectsExpired(t *testing.T) {
	raw, err := SignToken("s3cret", "user-7", -time.Minute)
	require.NoError(t, err)
	v, _ := NewHMACVerifier("s3cret")
	_, err = v.Verify(context.Background(), raw)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestHMACVerifierRejectsOtherAlgorithms(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Minute).Unix()}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	v, _ := NewHMACVerifier("s3cret")
	_, err = v.Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := NewHMACVerifier("")
	require.Error(t, err)
	_, err = SignToken("", "x", time.Minute)
	require.Error(t, err)
}

func TestIssuerURL(t *testing.T) {
	require.Equal(t, "http://kc:8080/realms/ids", IssuerURL("http://kc:8080/", "ids"))
}
