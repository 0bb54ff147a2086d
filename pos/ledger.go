package pos

import (
	"context"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
)

// Sales returns the ledger in completion order.
func (t *Terminal) Sales() []models.Sale {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.CloneSales(t.sales)
}

// PendingSales returns the sales not yet handed to the remote endpoint.
func (t *Terminal) PendingSales() []models.Sale {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.Sale
	for _, s := range t.sales {
		if !s.Synced {
			out = append(out, s)
		}
	}
	return models.CloneSales(out)
}

func (t *Terminal) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.sales {
		if !s.Synced {
			n++
		}
	}
	return n
}

// MarkSynced flips synced to true for the given sale ids. Sales recorded after
// the batch was taken keep their flag. It returns how many sales changed.
func (t *Terminal) MarkSynced(ctx context.Context, saleIds []string) (int, error) {
	if len(saleIds) == 0 {
		return 0, nil
	}
	ids := make(map[string]struct{}, len(saleIds))
	for _, id := range saleIds {
		ids[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	changed := 0
	for i := range t.sales {
		if _, ok := ids[t.sales[i].ID]; ok && !t.sales[i].Synced {
			t.sales[i].Synced = true
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, t.persist(ctx, "MarkSynced", store.KeySales, t.sales)
}

// recordSaleLocked appends sale to the ledger. If the ledger cannot be
// written the sale is dropped again, so memory never holds a sale the store lost.
func (t *Terminal) recordSaleLocked(ctx context.Context, sale models.Sale) error {
	t.sales = append(t.sales, sale)
	if err := t.persist(ctx, "recordSale", store.KeySales, t.sales); err != nil {
		t.sales = t.sales[:len(t.sales)-1]
		return err
	}
	return nil
}
