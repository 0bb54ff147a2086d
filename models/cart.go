package models

// CartLine is a persisted cart entry. ProductId is a weak reference into the catalog.
type CartLine struct {
	ProductId string `json:"prod_id"`
	Quantity  int    `json:"qty"`
}

// CartItem is a cart line joined with its current catalog product.
type CartItem struct {
	ProductId string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (i CartItem) Amount() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
