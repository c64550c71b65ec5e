package router

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/stocksync/docs"
)

// swaggerPath turns a gin route path into its OpenAPI form relative to base.
func swaggerPath(base, path string) string {
	path = strings.TrimPrefix(path, base)
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// The generated document must describe exactly the routes the API serves.
// Regenerate with `swag init -g cmd/server/main.go` when this fails.
func TestSwaggerDocMatchesRoutes(t *testing.T) {
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range newHandlers().DomainGroups(nil) {
		r.Register(g)
	}
	r.Setup()
	assert.Equal(t, r.BasePath(), doc.BasePath)

	var served []string
	for _, route := range engine.Routes() {
		served = append(served, strings.ToLower(route.Method)+" "+swaggerPath(doc.BasePath, route.Path))
	}
	slices.Sort(served)

	var documented []string
	for path, ops := range doc.Paths {
		for method := range ops {
			documented = append(documented, method+" "+path)
		}
	}
	slices.Sort(documented)

	assert.Equal(t, served, documented)
}
