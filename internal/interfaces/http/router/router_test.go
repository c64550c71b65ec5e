package router

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/erp/stocksync/internal/interfaces/http/handler"
	"github.com/erp/stocksync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterMiddlewareOrder(t *testing.T) {
	engine := gin.New()
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	group := NewDomainGroup("orders", "/orders").Use(mark("group"))
	group.POST("", mark("route"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	NewRouter(engine).Use(mark("api")).Register(group).Setup()
	engine.GET("/outside", mark("outside"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"api", "group", "route"}, order)

	order = nil
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, []string{"outside"}, order)
}

func TestDomainGroupAccessors(t *testing.T) {
	dg := NewDomainGroup("inventory", "/inventory")
	assert.Equal(t, "inventory", dg.Name())
	assert.Equal(t, "/inventory", dg.Prefix())
}

func newHandlers() Handlers {
	return Handlers{
		Orders:    handler.NewOrderHandler(nil, nil, false),
		Inventory: handler.NewInventoryHandler(nil),
		Sync:      handler.NewSyncHandler(nil, nil, nil),
		System:    handler.NewSystemHandler("test"),
	}
}

func TestDomainGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range newHandlers().DomainGroups(nil) {
		r.Register(g)
	}
	r.Setup()

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	slices.Sort(got)

	want := []string{
		"GET /api/v1/health",
		"GET /api/v1/health/ready",
		"GET /api/v1/inventory/stock",
		"GET /api/v1/orders/:number",
		"GET /api/v1/sync/orders",
		"GET /api/v1/sync/runs",
		"GET /api/v1/sync/runs/:id",
		"POST /api/v1/inventory/adjustments",
		"POST /api/v1/orders",
		"POST /api/v1/orders/:number/confirm",
		"POST /api/v1/orders/:number/void",
		"POST /api/v1/woo/update-order-stock",
		"PUT /api/v1/orders/:number",
	}
	assert.Equal(t, want, got)
}

func TestDomainGroups_WriteGuard(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	r := NewRouter(engine)
	for _, g := range newHandlers().DomainGroups(deny) {
		r.Register(g)
	}
	r.Setup()

	guarded := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodPut, "/api/v1/orders/SO1"},
		{http.MethodPost, "/api/v1/orders/SO1/void"},
		{http.MethodPost, "/api/v1/orders/1042/confirm"},
		{http.MethodPost, "/api/v1/inventory/adjustments"},
		{http.MethodGet, "/api/v1/sync/orders"},
		{http.MethodPost, "/api/v1/woo/update-order-stock"},
	}
	for _, tc := range guarded {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterHealth(t *testing.T) {
	engine := gin.New()
	RegisterHealth(engine, handler.NewSystemHandler("test"))

	for _, path := range []string{"/health", "/health/ready"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRegisterSwagger(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		engine := gin.New()
		RegisterSwagger(engine, middleware.DocsAccess{Enabled: false})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		engine := gin.New()
		RegisterSwagger(engine, middleware.DocsAccess{Enabled: true})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "swagger")
	})
}
