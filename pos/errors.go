package pos

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/foodpos/utils"
)

var (
	ErrProductNotFound  = fmt.Errorf("product: %w", utils.ErrorRecordNotFound)
	ErrProductInactive  = errors.New("product is not for sale")
	ErrInvalidProduct   = errors.New("product needs an id and a name")
	ErrInvalidPrice     = errors.New("price must be a non-negative amount")
	ErrMissingField     = errors.New("name, category and price are required")
	ErrEmptyCart        = errors.New("empty cart")
	ErrNoPaymentMode    = errors.New("no payment mode selected")
	ErrInsufficientCash = errors.New("insufficient amount")
	ErrCheckoutNotBegun = errors.New("checkout not started")
	ErrCheckoutBusy     = errors.New("checkout already in progress")
	ErrInvalidPin       = errors.New("incorrect PIN")
	ErrEmptyPin         = errors.New("new PIN must not be empty")
)
