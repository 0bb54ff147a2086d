package pos

import (
	"context"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 9999

// AddToCart adds quantity of a product; anything below 1 counts as 1. A line
// never grows past MaxLineQuantity.
func (t *Terminal) AddToCart(ctx context.Context, productId string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxLineQuantity {
		quantity = MaxLineQuantity
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.productIndexLocked(productId)
	if i < 0 {
		return ErrProductNotFound
	}
	if !t.products[i].Active {
		return ErrProductInactive
	}

	for j := range t.cart {
		if t.cart[j].ProductId == productId {
			t.cart[j].Quantity = min(t.cart[j].Quantity+quantity, MaxLineQuantity)
			return t.persist(ctx, "AddToCart", store.KeyCart, t.cart)
		}
	}
	t.cart = append(t.cart, models.CartLine{ProductId: productId, Quantity: quantity})
	return t.persist(ctx, "AddToCart", store.KeyCart, t.cart)
}

// SetQuantity sets a line's quantity, clamped to [0, MaxLineQuantity]; 0
// removes the line. A product that is not in the cart is left alone.
func (t *Terminal) SetQuantity(ctx context.Context, productId string, quantity int) error {
	quantity = max(0, min(quantity, MaxLineQuantity))

	t.mu.Lock()
	defer t.mu.Unlock()

	for j := range t.cart {
		if t.cart[j].ProductId != productId {
			continue
		}
		if quantity == 0 {
			t.cart = append(t.cart[:j], t.cart[j+1:]...)
		} else {
			t.cart[j].Quantity = quantity
		}
		return t.persist(ctx, "SetQuantity", store.KeyCart, t.cart)
	}
	return nil
}

func (t *Terminal) RemoveFromCart(ctx context.Context, productId string) error {
	return t.SetQuantity(ctx, productId, 0)
}

func (t *Terminal) ClearCart(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart = []models.CartLine{}
	return t.persist(ctx, "ClearCart", store.KeyCart, t.cart)
}

// CartLines returns the raw persisted lines, stale references included.
func (t *Terminal) CartLines() []models.CartLine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.CartLine{}, t.cart...)
}

// CartItems joins the cart with the current catalog. Lines whose product is
// gone are dropped.
func (t *Terminal) CartItems() []models.CartItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cartItemsLocked()
}

// CartTotal is recomputed from current catalog prices on every call.
func (t *Terminal) CartTotal() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sumItems(t.cartItemsLocked())
}

func (t *Terminal) cartItemsLocked() []models.CartItem {
	items := make([]models.CartItem, 0, len(t.cart))
	for _, l := range t.cart {
		i := t.productIndexLocked(l.ProductId)
		if i < 0 {
			continue
		}
		p := t.products[i]
		items = append(items, models.CartItem{
			ProductId: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

func sumItems(items []models.CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Amount()
	}
	return total
}
