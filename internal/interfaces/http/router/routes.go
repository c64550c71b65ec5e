package router

import (
	"github.com/erp/stocksync/internal/interfaces/http/handler"
	"github.com/erp/stocksync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers are the HTTP handlers mounted by the service
type Handlers struct {
	Orders    *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Sync      *handler.SyncHandler
	System    *handler.SystemHandler
}

// DomainGroups builds the API groups. write guards every route that
// changes the ledger or talks to the storefront; nil leaves them open.
func (h Handlers) DomainGroups(write gin.HandlerFunc) []*DomainGroup {
	guard := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if write == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{write, next}
	}

	orders := NewDomainGroup("orders", "/orders")
	orders.POST("", guard(h.Orders.CreateDocument)...)
	orders.GET("/:number", h.Orders.GetDocument)
	orders.PUT("/:number", guard(h.Orders.UpdateDocument)...)
	orders.POST("/:number/void", guard(h.Orders.VoidDocument)...)
	orders.POST("/:number/confirm", guard(h.Orders.ConfirmOrder)...)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.POST("/adjustments", guard(h.Inventory.CreateAdjustment)...)
	inventory.GET("/stock", h.Inventory.GetStock)

	sync := NewDomainGroup("sync", "/sync")
	sync.GET("/orders", guard(h.Sync.PullOrders)...)
	sync.GET("/runs", h.Sync.ListRuns)
	sync.GET("/runs/:id", h.Sync.GetRun)

	woo := NewDomainGroup("woo", "/woo")
	woo.POST("/update-order-stock", guard(h.Sync.UpdateOrderStock)...)

	system := NewDomainGroup("system", "/health")
	system.GET("", h.System.Health)
	system.GET("/ready", h.System.Ready)

	return []*DomainGroup{orders, inventory, sync, woo, system}
}

// RegisterHealth mounts liveness and readiness at the root, outside
// authentication, for load balancers and orchestrators
func RegisterHealth(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/health/ready", system.Ready)
}

// RegisterSwagger serves the API docs behind access protection
func RegisterSwagger(engine *gin.Engine, access middleware.DocsAccess) {
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(access),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
}
