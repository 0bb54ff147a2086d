package sheetsync

import (
	"errors"
	"strings"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/utils"
)

const (
	actionSales    = "sales"
	actionProducts = "products"

	// placeholderMarker is left in the endpoint by the install template until
	// someone pastes the real deployment URL.
	placeholderMarker = "COLLE_ICI"
)

var (
	ErrNotOk          = errors.New("remote answered ok=false")
	ErrMissingCatalog = errors.New("remote answer has no products list")
)

type salesPayload struct {
	Sales []models.Sale `json:"sales"`
}

type productsPayload struct {
	Products []models.Product `json:"products"`
}

type catalogResponse struct {
	Ok       bool             `json:"ok"`
	Products []models.Product `json:"products" validate:"unique=ID,dive"`
}

// check rejects any answer that would not be a safe catalog replacement.
func (r catalogResponse) check() error {
	if !r.Ok {
		return ErrNotOk
	}
	if r.Products == nil {
		return ErrMissingCatalog
	}
	for i := range r.Products {
		r.Products[i].ID = strings.TrimSpace(r.Products[i].ID)
		r.Products[i].Name = strings.TrimSpace(r.Products[i].Name)
	}
	return utils.ValidateStruct(r)
}

// IsConfigured reports whether endpoint points somewhere real.
func IsConfigured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint != "" && !strings.Contains(endpoint, placeholderMarker)
}
