package router

import (
	"github.com/inventory-hub/backend/internal/interfaces/http/handler"
	"github.com/inventory-hub/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers served by the API
type Handlers struct {
	System    *handler.SystemHandler
	Supplier  *handler.SupplierHandler
	Product   *handler.ProductHandler
	Receiving *handler.ReceivingHandler
}

// Limits caps request bodies. Invoice uploads get their own, larger limit.
type Limits struct {
	MaxBodySize   int64
	MaxUploadSize int64
}

// DefaultLimits are used for limits left at zero
var DefaultLimits = Limits{MaxBodySize: 2 << 20, MaxUploadSize: handler.DefaultMaxUploadSize}

// APIGroups builds the route groups of the API
func APIGroups(h Handlers, limits Limits) []RouteRegistrar {
	if limits.MaxBodySize <= 0 {
		limits.MaxBodySize = DefaultLimits.MaxBodySize
	}
	if limits.MaxUploadSize <= 0 {
		limits.MaxUploadSize = DefaultLimits.MaxUploadSize
	}

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.Info)

	suppliers := NewDomainGroup("suppliers", "/suppliers").Use(middleware.BodyLimit(limits.MaxBodySize))
	suppliers.POST("", h.Supplier.Create).
		GET("", h.Supplier.List).
		GET("/:id", h.Supplier.GetByID)

	products := NewDomainGroup("products", "/products").Use(middleware.BodyLimit(limits.MaxBodySize))
	products.POST("", h.Product.Create).
		GET("/:id", h.Product.GetByID).
		POST("/:id/deactivate", h.Product.Deactivate).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/identifiers", h.Product.AddIdentifier).
		POST("/:id/identifiers/compound", h.Product.AddCompound).
		GET("/:id/identifiers", h.Product.ListIdentifiers).
		GET("/:id/barcodes", h.Product.Barcodes)

	identifiers := NewDomainGroup("identifiers", "/identifiers")
	identifiers.GET("/lookup", h.Product.Lookup).
		GET("/classify", h.Product.Classify)

	receiving := NewDomainGroup("receiving", "/receiving")
	receiving.Group("import", "/sessions").
		Use(middleware.BodyLimit(limits.MaxUploadSize)).
		POST("/import", h.Receiving.Import)
	receiving.Group("sessions", "/sessions").
		Use(middleware.BodyLimit(limits.MaxBodySize)).
		POST("", h.Receiving.Create).
		GET("", h.Receiving.List).
		GET("/:id", h.Receiving.Get).
		DELETE("/:id", h.Receiving.Delete).
		POST("/:id/scan", h.Receiving.Scan).
		PUT("/:id/lines/:line/quantity", h.Receiving.SetQuantity).
		PUT("/:id/lines/:line/product", h.Receiving.AssignProduct).
		POST("/:id/accept-all", h.Receiving.AcceptAll).
		POST("/:id/reset", h.Receiving.Reset).
		POST("/:id/pause", h.Receiving.Pause).
		POST("/:id/resume", h.Receiving.Resume).
		POST("/:id/cancel", h.Receiving.Cancel).
		POST("/:id/finalize", h.Receiving.Finalize).
		GET("/:id/summary", h.Receiving.Summary).
		GET("/:id/receipt", h.Receiving.Receipt).
		GET("/:id/events", h.Receiving.Events).
		POST("/:id/ledger", h.Receiving.ApplyToLedger).
		GET("/:id/movements", h.Receiving.Movements)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/balance", h.Receiving.Balance)

	return []RouteRegistrar{system, suppliers, products, identifiers, receiving, inventory}
}
