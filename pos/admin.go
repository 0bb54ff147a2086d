package pos

import (
	"context"
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
)

// VerifyPin checks pin against the stored admin PIN. A stored value that is
// not a bcrypt hash is compared as plain text.
func (t *Terminal) VerifyPin(pin string) bool {
	t.mu.Lock()
	stored := t.pin
	t.mu.Unlock()
	return verifyPin(stored, strings.TrimSpace(pin))
}

func verifyPin(stored, pin string) bool {
	if pin == "" {
		return false
	}
	if utils.IsPasswordHash(stored) {
		return utils.ComparePassword(stored, pin) == nil
	}
	return stored == pin
}

// ChangePin replaces the PIN; the current one must be presented.
func (t *Terminal) ChangePin(ctx context.Context, current, next string) error {
	next = strings.TrimSpace(next)
	if !t.VerifyPin(current) {
		return ErrInvalidPin
	}
	if next == "" {
		return ErrEmptyPin
	}
	hashed, err := utils.HashPassword(next)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pin = string(hashed)
	return t.persist(ctx, "ChangePin", store.KeyAdminPin, t.pin)
}

// ProductInput is what an admin types when adding or editing a product.
type ProductInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

func (in ProductInput) normalize() (name, category string, price int64, err error) {
	name = strings.TrimSpace(in.Name)
	category = strings.TrimSpace(in.Category)
	if name == "" || category == "" || strings.TrimSpace(in.Price) == "" {
		return "", "", 0, ErrMissingField
	}
	price, err = utils.ParseAmount(in.Price)
	if err != nil || price < 0 {
		return "", "", 0, ErrInvalidPrice
	}
	return name, category, price, nil
}

// AddProduct creates an active product with a fresh "P-" id and asks the sync
// engine to publish the catalog.
func (t *Terminal) AddProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	name, category, price, err := in.normalize()
	if err != nil {
		return models.Product{}, err
	}

	t.mu.Lock()
	p := models.Product{
		ID:       t.newProductIdLocked(),
		Category: category,
		Name:     name,
		Price:    price,
		Active:   true,
	}
	t.products = append(t.products, p)
	err = t.persist(ctx, "AddProduct", store.KeyProducts, t.products)
	t.mu.Unlock()
	if err != nil {
		return p, err
	}

	t.requestCatalogPush()
	return p, nil
}

// EditProduct changes name, category and price; the active flag is kept.
func (t *Terminal) EditProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	name, category, price, err := in.normalize()
	if err != nil {
		return models.Product{}, err
	}

	t.mu.Lock()
	i := t.productIndexLocked(id)
	if i < 0 {
		t.mu.Unlock()
		return models.Product{}, ErrProductNotFound
	}
	t.products[i].Name = name
	t.products[i].Category = category
	t.products[i].Price = price
	p := t.products[i]
	err = t.persist(ctx, "EditProduct", store.KeyProducts, t.products)
	t.mu.Unlock()
	if err != nil {
		return p, err
	}

	t.requestCatalogPush()
	return p, nil
}

// ToggleProduct sets the active flag and publishes the catalog.
func (t *Terminal) ToggleProduct(ctx context.Context, id string, active bool) error {
	if err := t.SetActive(ctx, id, active); err != nil {
		return err
	}
	t.requestCatalogPush()
	return nil
}

func (t *Terminal) newProductIdLocked() string {
	ms := t.now().UnixMilli()
	for {
		id := "P-" + strings.ToUpper(strconv.FormatInt(ms, 36))
		if t.productIndexLocked(id) < 0 {
			return id
		}
		ms++
	}
}

// Reset wipes every record on this device and reinstalls the defaults.
func (t *Terminal) Reset(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Delete(ctx, store.AllKeys...); err != nil {
		return err
	}
	t.products, t.cart, t.sales, t.pin = nil, nil, nil, ""
	return t.loadLocked(ctx)
}
