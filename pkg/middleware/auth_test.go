package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == "goodtoken" {
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func authRouter(h gin.HandlerFunc) *gin.Engine {
	g := gin.New()
	g.POST("/upload_url", AuthMiddleware(&fakeVerifier{}), h)
	return g
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := httptest.NewRecorder()
	authRouter(func(c *gin.Context) { c.Status(http.StatusOK) }).ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/upload_url", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Contains(t, rw.Body.String(), "missing Authorization header")
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Basic goodtoken", "Bearer "} {
		req := httptest.NewRequest(http.MethodPost, "/upload_url", nil)
		req.Header.Set("Authorization", h)
		rw := httptest.NewRecorder()
		authRouter(func(c *gin.Context) { c.Status(http.StatusOK) }).ServeHTTP(rw, req)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_RejectsBadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload_url", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rw := httptest.NewRecorder()
	authRouter(func(c *gin.Context) { c.Status(http.StatusOK) }).ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Contains(t, rw.Body.String(), "invalid token")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload_url", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	var sub string
	var claims interface{}
	authRouter(func(c *gin.Context) {
		sub = c.GetString(SubjectKey)
		claims, _ = c.Get(ClaimsKey)
		c.Status(http.StatusOK)
	}).ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "user1", sub)
	require.Equal(t, "test@example.com", claims.(map[string]interface{})["email"])
}
