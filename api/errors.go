package api

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/pos"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, pos.ErrInvalidPin):
		return http.StatusUnauthorized
	case errors.Is(err, pos.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrNoPaymentMode),
		errors.Is(err, pos.ErrInsufficientCash),
		errors.Is(err, pos.ErrCheckoutNotBegun),
		errors.Is(err, pos.ErrCheckoutBusy),
		errors.Is(err, pos.ErrProductInactive):
		return http.StatusConflict
	case errors.Is(err, pos.ErrMissingField),
		errors.Is(err, pos.ErrInvalidPrice),
		errors.Is(err, pos.ErrInvalidProduct),
		errors.Is(err, pos.ErrEmptyPin),
		errors.Is(err, models.ErrUnknownPaymentMethod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as JSON. extra is merged into the body, e.g. the
// checkout view so the till can show its hint.
func abortWithError(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest answers a body that failed binding. Validation failures list
// the offending fields.
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	body := gin.H{"error": "invalid request"}
	if fields := utils.ProcessValidationErrors(err); len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
