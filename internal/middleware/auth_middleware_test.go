package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dfworx/auth-service/internal/auth"
	"github.com/dfworx/auth-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenAuthenticator struct {
	tokens auth.TokenService
}

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*auth.TokenPayload, error) {
	return a.tokens.Verify(token)
}

func newTokens(t *testing.T, now func() time.Time) auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    "middleware_test_secret_0123456789abcdef",
		Algorithm: "HS256",
		Expiry:    time.Hour,
	}, auth.WithClock(now))
	require.NoError(t, err)
	return tokens
}

func TestAuthMiddleware(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens := newTokens(t, time.Now)
	staleTokens := newTokens(t, func() time.Time { return issuedAt })

	token, err := tokens.Issue(auth.Claims{"sub": "user_123", "email": "test@example.com"})
	require.NoError(t, err)
	expired, err := staleTokens.Issue(auth.Claims{"sub": "user_123"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(tokenAuthenticator{tokens: tokens}))

	// Protected Endpoints
	r.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get("userID")
		claims := c.MustGet("claims").(auth.Claims)
		c.JSON(200, gin.H{"userID": userID, "email": claims["email"]})
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "no token", header: "", code: http.StatusUnauthorized, body: `{"error":"Authorization header is missing"}`},
		{name: "wrong scheme", header: "Basic " + token, code: http.StatusUnauthorized, body: `{"error":"Invalid token format"}`},
		{name: "missing token", header: "Bearer ", code: http.StatusUnauthorized, body: `{"error":"Invalid token format"}`},
		{name: "garbage token", header: "Bearer invalid.token.here", code: http.StatusUnauthorized, body: `{"error":"Invalid token"}`},
		{name: "expired token", header: "Bearer " + expired, code: http.StatusUnauthorized, body: `{"error":"Token has expired"}`},
		{name: "valid token", header: "Bearer " + token, code: http.StatusOK, body: `{"userID":"user_123", "email":"test@example.com"}`},
		{name: "lowercase scheme", header: "bearer " + token, code: http.StatusOK, body: `{"userID":"user_123", "email":"test@example.com"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			req, _ := http.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestTimeout(50 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		<-c.Request.Context().Done()
		c.Status(http.StatusServiceUnavailable)
	})

	req, _ := http.NewRequest("GET", "/slow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })

	req, _ := http.NewRequest("POST", "/login", bytes.NewBufferString(`{"password":"secret_password"}`))
	req.Header.Set("Authorization", "Bearer should.not.appear")
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.NotContains(t, buf.String(), "secret_password")
	assert.NotContains(t, buf.String(), "should.not.appear")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/login", entry["path"])
	assert.Equal(t, float64(http.StatusUnauthorized), entry["status"])
	assert.Equal(t, "req-1", entry["request_id"])
}
