package api

import (
	"encoding/json"
	"net/http"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// qty arrives as whatever the till's input held: a number, a numeric string,
// garbage or nothing at all.
type addItemRequest struct {
	ProductId string          `json:"product_id" binding:"required"`
	Quantity  json.RawMessage `json:"qty"`
}

type setQuantityRequest struct {
	Quantity json.RawMessage `json:"qty"`
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type tenderRequest struct {
	Received string `json:"received"`
}

// quantityOf reads qty like parseInt: decimals are truncated, and ok is false
// for anything without a leading integer.
func quantityOf(raw json.RawMessage) (int, bool) {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0, false
	}
	switch q := v.(type) {
	case string:
		return utils.ParseQuantity(q)
	case float64:
		return utils.ParseQuantity(decimal.NewFromFloat(q).Truncate(0).String())
	default:
		return 0, false
	}
}

func (h *handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.terminal.Categories()})
}

// activeProducts lists the sale grid; without ?category it shows the first category.
func (h *handler) activeProducts(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		if cats := h.terminal.Categories(); len(cats) > 0 {
			category = cats[0]
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"products": h.terminal.ActiveProducts(category),
	})
}

func (h *handler) cartBody() gin.H {
	items := h.terminal.CartItems()
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"items": items,
		"total": h.terminal.CartTotal(),
	}
}

func (h *handler) cart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *handler) clearCart(c *gin.Context) {
	if err := h.terminal.ClearCart(c.Request.Context()); err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *handler) addToCart(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	// unreadable quantities fall to AddToCart's floor of 1
	qty, _ := quantityOf(req.Quantity)
	if err := h.terminal.AddToCart(c.Request.Context(), req.ProductId, qty); err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *handler) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	qty, ok := quantityOf(req.Quantity)
	if !ok {
		c.JSON(http.StatusOK, h.cartBody())
		return
	}
	if err := h.terminal.SetQuantity(c.Request.Context(), c.Param("id"), qty); err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *handler) removeFromCart(c *gin.Context) {
	if err := h.terminal.RemoveFromCart(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, h.cartBody())
}

func (h *handler) checkout(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal.Checkout())
}

func (h *handler) beginCheckout(c *gin.Context) {
	view, err := h.terminal.BeginCheckout()
	if err != nil {
		abortWithError(c, err, gin.H{"checkout": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) cancelCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal.CancelCheckout())
}

func (h *handler) selectMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mode, err := models.ParsePaymentMethod(req.Mode)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	view, err := h.terminal.SelectPaymentMode(mode)
	if err != nil {
		abortWithError(c, err, gin.H{"checkout": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) tender(c *gin.Context) {
	var req tenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.terminal.SetTendered(req.Received)
	if err != nil {
		abortWithError(c, err, gin.H{"checkout": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) validate(c *gin.Context) {
	sale, err := h.terminal.ValidateCheckout(c.Request.Context())
	if err != nil {
		abortWithError(c, err, gin.H{"checkout": h.terminal.Checkout()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"sale":    sale,
		"pending": h.terminal.PendingCount(),
	})
}
