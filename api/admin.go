package api

import (
	"net/http"

	"bitbucket.org/mmdatafocus/foodpos/pos"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Pin string `json:"pin" binding:"required"`
}

type changePinRequest struct {
	Current string `json:"current" binding:"required"`
	Next    string `json:"next"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.terminal.VerifyPin(req.Pin) {
		abortWithError(c, pos.ErrInvalidPin, nil)
		return
	}
	token, err := h.tokens.JwtGenerate(utils.RoleAdmin)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.terminal.Products()})
}

func (h *handler) addProduct(c *gin.Context) {
	var req pos.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.terminal.AddProduct(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	h.audit(c).WithField("product", p.ID).Info("api: product added")
	c.JSON(http.StatusCreated, p)
}

func (h *handler) editProduct(c *gin.Context) {
	var req pos.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.terminal.EditProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) toggleProduct(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.terminal.ToggleProduct(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		abortWithError(c, err, nil)
		return
	}
	p, _ := h.terminal.Product(c.Param("id"))
	c.JSON(http.StatusOK, p)
}

func (h *handler) forceSync(c *gin.Context) {
	status := h.sync.SyncNow(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"sync":    status,
		"pending": h.terminal.PendingCount(),
	})
}

func (h *handler) changePin(c *gin.Context) {
	var req changePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.terminal.ChangePin(c.Request.Context(), req.Current, req.Next); err != nil {
		abortWithError(c, err, nil)
		return
	}
	h.audit(c).Info("api: admin PIN changed")
	c.Status(http.StatusNoContent)
}

func (h *handler) reset(c *gin.Context) {
	if err := h.terminal.Reset(c.Request.Context()); err != nil {
		abortWithError(c, err, nil)
		return
	}
	h.audit(c).Warn("api: local data reset")
	c.Status(http.StatusNoContent)
}

// audit tags admin actions with the request's correlation id.
func (h *handler) audit(c *gin.Context) *logrus.Entry {
	ctx := c.Request.Context()
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	isAdmin, _ := utils.GetIsAdminFromContext(ctx)
	return h.logger.WithFields(logrus.Fields{
		"correlationId": cid,
		"admin":         isAdmin,
	})
}
