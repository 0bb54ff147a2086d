package pos

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
)

// MergeDefaults appends every default whose id is absent from stored.
// Stored products are never modified, so applying it twice changes nothing.
func MergeDefaults(stored, defaults []models.Product) ([]models.Product, int) {
	seen := make(map[string]struct{}, len(stored))
	for _, p := range stored {
		seen[p.ID] = struct{}{}
	}
	merged := models.CloneProducts(stored)
	added := 0
	for _, d := range defaults {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		merged = append(merged, d)
		seen[d.ID] = struct{}{}
		added++
	}
	return merged, added
}

func (t *Terminal) initializeCatalogLocked(ctx context.Context) error {
	stored := store.Load(ctx, t.store, store.KeyProducts, []models.Product(nil))
	if len(stored) == 0 {
		t.products = models.DefaultProducts()
		return t.persist(ctx, "initializeCatalog", store.KeyProducts, t.products)
	}
	merged, added := MergeDefaults(stored, models.DefaultProducts())
	t.products = merged
	if added > 0 {
		return t.persist(ctx, "initializeCatalog", store.KeyProducts, t.products)
	}
	return nil
}

// Categories lists distinct categories in first-seen order, or the built-in
// list when the catalog has none.
func (t *Terminal) Categories() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cats []string
	seen := map[string]struct{}{}
	for _, p := range t.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		cats = append(cats, p.Category)
	}
	if len(cats) == 0 {
		return append([]string(nil), models.DefaultCategories...)
	}
	return cats
}

// ActiveProducts returns the products on sale in category, in catalog order.
func (t *Terminal) ActiveProducts(category string) []models.Product {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []models.Product{}
	for _, p := range t.products {
		if p.Active && p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Products returns the whole catalog, inactive products included.
func (t *Terminal) Products() []models.Product {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.CloneProducts(t.products)
}

func (t *Terminal) Product(id string) (models.Product, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.productIndexLocked(id)
	if i < 0 {
		return models.Product{}, false
	}
	return t.products[i], true
}

func (t *Terminal) productIndexLocked(id string) int {
	for i, p := range t.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// UpsertProduct replaces the product with the same id in place, or appends it.
func (t *Terminal) UpsertProduct(ctx context.Context, p models.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.ID == "" || p.Name == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 || p.Price > utils.MaxCents {
		return ErrInvalidPrice
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.productIndexLocked(p.ID); i >= 0 {
		t.products[i] = p
	} else {
		t.products = append(t.products, p)
	}
	return t.persist(ctx, "UpsertProduct", store.KeyProducts, t.products)
}

func (t *Terminal) SetActive(ctx context.Context, id string, active bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.productIndexLocked(id)
	if i < 0 {
		return ErrProductNotFound
	}
	t.products[i].Active = active
	return t.persist(ctx, "SetActive", store.KeyProducts, t.products)
}

// ReplaceCatalog swaps the whole catalog, as a remote pull does. No merge.
func (t *Terminal) ReplaceCatalog(ctx context.Context, products []models.Product) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.products = models.CloneProducts(products)
	if t.products == nil {
		t.products = []models.Product{}
	}
	return t.persist(ctx, "ReplaceCatalog", store.KeyProducts, t.products)
}
