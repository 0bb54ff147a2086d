package models

// Product is a sellable catalog item. Prices are integer cents.
// JSON names follow the columns of the remote product sheet.
type Product struct {
	ID       string `json:"id" validate:"required"`
	Category string `json:"cat"`
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price_cents" validate:"gte=0,lte=100000000000"`
	Active   bool   `json:"active"`
}

// CloneProducts returns a copy callers may mutate freely.
func CloneProducts(in []Product) []Product {
	if in == nil {
		return nil
	}
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
