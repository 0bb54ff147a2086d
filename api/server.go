// Package api exposes the till over HTTP for the browser front-end.
package api

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"bitbucket.org/mmdatafocus/foodpos/pos"
	"bitbucket.org/mmdatafocus/foodpos/sheetsync"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Syncer is the part of the sync engine the API reports on and drives.
type Syncer interface {
	Status() sheetsync.Status
	SyncNow(ctx context.Context) sheetsync.Status
}

type Options struct {
	Terminal       *pos.Terminal
	Sync           Syncer
	Tokens         *utils.TokenIssuer
	Logger         *logrus.Logger
	AllowedOrigins []string
	Production     bool
	Now            func() time.Time
}

type handler struct {
	terminal *pos.Terminal
	sync     Syncer
	tokens   *utils.TokenIssuer
	logger   *logrus.Logger
	now      func() time.Time
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(opts Options) *gin.Engine {
	h := &handler{
		terminal: opts.Terminal,
		sync:     opts.Sync,
		tokens:   opts.Tokens,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.logger == nil {
		h.logger = config.GetLogger()
	}

	r := gin.New()
	r.Use(correlationId())
	r.Use(corsMiddleware(opts.AllowedOrigins, opts.Production))
	r.Use(requestLogger(h.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	a := r.Group("/api")
	a.GET("/status", h.status)

	a.GET("/catalog/categories", h.categories)
	a.GET("/catalog/products", h.activeProducts)

	a.GET("/cart", h.cart)
	a.DELETE("/cart", h.clearCart)
	a.POST("/cart/items", h.addToCart)
	a.PUT("/cart/items/:id", h.setQuantity)
	a.DELETE("/cart/items/:id", h.removeFromCart)

	a.GET("/checkout", h.checkout)
	a.POST("/checkout", h.beginCheckout)
	a.DELETE("/checkout", h.cancelCheckout)
	a.POST("/checkout/mode", h.selectMode)
	a.POST("/checkout/tender", h.tender)
	a.POST("/checkout/validate", h.validate)

	a.GET("/reports/daily", h.dailyReport)
	a.GET("/reports/daily.csv", h.dailyCSV)
	a.GET("/reports/daily.xlsx", h.dailyXLSX)

	a.POST("/admin/login", h.login)
	admin := a.Group("/admin", adminAuth(h.tokens))
	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.addProduct)
	admin.PUT("/products/:id", h.editProduct)
	admin.PUT("/products/:id/active", h.toggleProduct)
	admin.GET("/sales.csv", h.salesCSV)
	admin.POST("/sync", h.forceSync)
	admin.POST("/pin", h.changePin)
	admin.POST("/reset", h.reset)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func (h *handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sync":    h.sync.Status(),
		"pending": h.terminal.PendingCount(),
	})
}
