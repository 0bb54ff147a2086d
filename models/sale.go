package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaleLine is a by-value snapshot of a cart line at checkout time.
type SaleLine struct {
	ProductId string `json:"produit_id"`
	Name      string `json:"nom"`
	Quantity  int    `json:"qty"`
	UnitPrice int64  `json:"price_cents"`
}

func (l SaleLine) Amount() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Sale is an immutable completed transaction. Only Synced ever changes, false to true.
type Sale struct {
	ID            string        `json:"vente_id"`
	Timestamp     time.Time     `json:"date_iso"`
	Total         int64         `json:"total_cents"`
	PaymentMethod PaymentMethod `json:"paiement"`
	Lines         []SaleLine    `json:"lignes"`
	Synced        bool          `json:"synced"`
}

// NewSaleId returns a sale id that stays unique across offline devices.
func NewSaleId() string {
	return "V-" + strings.ToUpper(uuid.NewString())
}

// NewSale snapshots items into a Sale. It returns false when the items would
// produce an empty or zero-total sale, which must never be recorded.
func NewSale(items []CartItem, method PaymentMethod, at time.Time) (Sale, bool) {
	lines := make([]SaleLine, 0, len(items))
	var total int64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		lines = append(lines, SaleLine{
			ProductId: it.ProductId,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
		total += it.Amount()
	}
	if len(lines) == 0 || total <= 0 {
		return Sale{}, false
	}
	return Sale{
		ID:            NewSaleId(),
		Timestamp:     at.UTC().Truncate(time.Millisecond),
		Total:         total,
		PaymentMethod: method,
		Lines:         lines,
	}, true
}

// Detail renders lines as "name xqty" joined by " | ".
func (s Sale) Detail() string {
	parts := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		parts = append(parts, l.Name+" x"+strconv.Itoa(l.Quantity))
	}
	return strings.Join(parts, " | ")
}

func CloneSales(in []Sale) []Sale {
	if in == nil {
		return nil
	}
	out := make([]Sale, len(in))
	for i, s := range in {
		s.Lines = append([]SaleLine(nil), s.Lines...)
		out[i] = s
	}
	return out
}
