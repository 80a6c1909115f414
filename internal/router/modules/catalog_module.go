package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emarket/emarket/internal/container"
	handlers "github.com/emarket/emarket/internal/interface/http"
	"github.com/emarket/emarket/internal/interface/middleware"
)

// CatalogModule wires the read-only product endpoints:
// GET /api/products, GET /api/products/seller/:userId, GET /api/products/search

type CatalogModule struct {
	Handler *handlers.ProductHandler
}

func NewCatalogModule(h *handlers.ProductHandler) *CatalogModule {
	return &CatalogModule{Handler: h}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	// Public reads, rate-limited per IP. Private addresses bypass the limit.
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	// Search fans out to Elasticsearch, so it gets its own tighter window.
	searchRL := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.GET("/products", rl, m.Handler.List)
	rg.GET("/products/seller/:userId", rl, m.Handler.BySeller)
	rg.GET("/products/search", searchRL, m.Handler.Search)
}
