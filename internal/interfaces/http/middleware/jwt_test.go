package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/stocksync/internal/infrastructure/auth"
	"github.com/erp/stocksync/internal/infrastructure/config"
	"github.com/erp/stocksync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.JWTConfig{
		Enabled: true,
		Secret:  "test-secret-key-at-least-32-chars",
		Issuer:  "stocksync-test",
	})
	require.NoError(t, err)
	return svc
}

func issue(t *testing.T, svc *auth.JWTService, ttl time.Duration, roles ...string) string {
	t.Helper()
	token, _, err := svc.Issue("ops@example.com", roles, ttl)
	require.NoError(t, err)
	return token
}

func newJWTRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddleware(svc))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/orders/SO1", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTSubject(c))
	})
	router.POST("/api/v1/orders", RequireRole(auth.RoleOperator), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	router := newJWTRouter(svc)

	t.Run("valid token sets the subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/SO1", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issue(t, svc, time.Minute, auth.RoleViewer))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ops@example.com", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/SO1", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/SO1", nil)
		req.Header.Set(AuthHeaderKey, "Basic Zm9vOmJhcg==")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/SO1", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issue(t, svc, -time.Minute, auth.RoleViewer))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, errorCode(t, w))
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "stocksync-test"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/SO1", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issue(t, other, time.Minute))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(t)
	router := newJWTRouter(svc)

	t.Run("viewer cannot write", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issue(t, svc, time.Minute, auth.RoleViewer))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
	})

	t.Run("operator can write", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issue(t, svc, time.Minute, auth.RoleOperator))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no claims passes", func(t *testing.T) {
		r := gin.New()
		r.POST("/open", RequireRole(auth.RoleOperator), func(c *gin.Context) { c.Status(http.StatusCreated) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/open", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
