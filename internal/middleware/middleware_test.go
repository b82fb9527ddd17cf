package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireJWT(t *testing.T) {
	const secret = "test-secret"
	now := time.Now()
	valid := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "registrar-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		Role:             "registrar",
	})
	expired := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "registrar-1", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))},
	})
	foreign := signToken(t, "other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "registrar-1"},
	})

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid", secret, "Bearer " + valid, http.StatusOK, "registrar-1"},
		{"missing", secret, "", http.StatusUnauthorized, "TOKEN_REQUIRED"},
		{"expired", secret, "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong secret", secret, "Bearer " + foreign, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"guard disabled", "", "", http.StatusOK, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", RequireJWT(NewTokenVerifier(tt.secret)), func(c *gin.Context) {
				if claims := GetClaims(c); claims != nil {
					c.String(http.StatusOK, claims.Subject)
					return
				}
				c.String(http.StatusOK, "anonymous")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireWSJWTUsesQueryToken(t *testing.T) {
	const secret = "ws-secret"
	token := signToken(t, secret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "viewer"}})

	r := gin.New()
	r.GET("/ws", RequireWSJWT(NewTokenVerifier(secret)), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Subject)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "viewer", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	clock := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit())
	assert.Equal(t, http.StatusNoContent, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())

	clock = clock.Add(time.Minute)
	assert.Equal(t, http.StatusNoContent, hit())
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("MON 08:00-10:00 ", 200)

	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 256}))
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	t.Run("large bodies are compressed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/large", nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, "br", w.Header().Get("Content-Encoding"))
		body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
		require.NoError(t, err)
		assert.Equal(t, large, string(body))
	})

	t.Run("small bodies pass through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/small", nil)
		req.Header.Set("Accept-Encoding", "br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("clients without br are untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/large", nil))
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, large, w.Body.String())
	})
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/rooms", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/report", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	assert.Equal(t, "private, max-age=60", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
