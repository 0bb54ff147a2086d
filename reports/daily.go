// Package reports builds the end-of-day summary and the CSV and XLSX exports
// from the sales ledger.
package reports

import (
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/models"
)

const unnamedProduct = "Produit"

type ProductRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
	Amount   int64  `json:"amount_cents"`
}

type DailyReport struct {
	Date      string        `json:"date"`
	Count     int           `json:"count"`
	Total     int64         `json:"total_cents"`
	CashTotal int64         `json:"cash_cents"`
	CardTotal int64         `json:"card_cents"`
	Products  []ProductRow  `json:"products"`
	Sales     []models.Sale `json:"-"`
}

// SameLocalDay reports whether at falls on the calendar day of now, in now's location.
func SameLocalDay(at, now time.Time) bool {
	y1, m1, d1 := at.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TodaySales keeps the sales recorded on now's local day, in ledger order.
func TodaySales(sales []models.Sale, now time.Time) []models.Sale {
	out := []models.Sale{}
	for _, s := range sales {
		if !s.Timestamp.IsZero() && SameLocalDay(s.Timestamp, now) {
			out = append(out, s)
		}
	}
	return out
}

// BuildDaily aggregates today's sales by line name and sorts the rows by
// quantity, most sold first. Ties keep first-seen order.
func BuildDaily(sales []models.Sale, now time.Time) DailyReport {
	today := TodaySales(sales, now)
	r := DailyReport{
		Date:     now.Format("2006-01-02"),
		Count:    len(today),
		Products: []ProductRow{},
		Sales:    today,
	}

	index := map[string]int{}
	for _, s := range today {
		r.Total += s.Total
		switch s.PaymentMethod {
		case models.PaymentMethodCash:
			r.CashTotal += s.Total
		case models.PaymentMethodCard:
			r.CardTotal += s.Total
		}
		for _, l := range s.Lines {
			name := lineLabel(l)
			i, ok := index[name]
			if !ok {
				i = len(r.Products)
				index[name] = i
				r.Products = append(r.Products, ProductRow{Name: name})
			}
			r.Products[i].Quantity += l.Quantity
			r.Products[i].Amount += l.Amount()
		}
	}

	sort.SliceStable(r.Products, func(i, j int) bool {
		return r.Products[i].Quantity > r.Products[j].Quantity
	})
	return r
}

func lineLabel(l models.SaleLine) string {
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	if id := strings.TrimSpace(l.ProductId); id != "" {
		return id
	}
	return unnamedProduct
}
