package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var paris = time.FixedZone("CEST", 2*60*60)

func sale(id string, at time.Time, method models.PaymentMethod, lines ...models.SaleLine) models.Sale {
	s := models.Sale{ID: id, Timestamp: at.UTC(), PaymentMethod: method, Lines: lines}
	for _, l := range lines {
		s.Total += l.Amount()
	}
	return s
}

func line(name string, qty int, price int64) models.SaleLine {
	return models.SaleLine{ProductId: "ID-" + name, Name: name, Quantity: qty, UnitPrice: price}
}

func TestBuildDaily_GroupsTodayAndSortsByQuantity(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, paris)
	sales := []models.Sale{
		sale("V-OLD", now.AddDate(0, 0, -1), models.PaymentMethodCash, line("Samoussa fromage", 10, 50)),
		sale("V-1", now.Add(-8*time.Hour), models.PaymentMethodCash, line("Eau", 1, 200), line("Samoussa fromage", 2, 50)),
		sale("V-2", now.Add(-1*time.Hour), models.PaymentMethodCard, line("Samoussa fromage", 3, 50), line("Coca", 1, 250)),
		sale("V-3", now.Add(-30*time.Minute), models.PaymentMethodCash, models.SaleLine{ProductId: "", Name: "", Quantity: 1, UnitPrice: 80}),
	}

	r := BuildDaily(sales, now)

	assert.Equal(t, "2026-10-15", r.Date)
	assert.Equal(t, 3, r.Count)
	assert.Equal(t, int64(300+400+80), r.Total)
	assert.Equal(t, int64(380), r.CashTotal)
	assert.Equal(t, int64(400), r.CardTotal)
	assert.Equal(t, []ProductRow{
		{Name: "Samoussa fromage", Quantity: 5, Amount: 250},
		{Name: "Eau", Quantity: 1, Amount: 200},
		{Name: "Coca", Quantity: 1, Amount: 250},
		{Name: "Produit", Quantity: 1, Amount: 80},
	}, r.Products)
}

func TestBuildDaily_UsesLocalDay(t *testing.T) {
	now := time.Date(2026, 10, 15, 1, 0, 0, 0, paris)
	// 22:30 UTC on the 14th is already the 15th at +02:00; 21:59 UTC is not.
	justAfterMidnight := time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)
	justBefore := time.Date(2026, 10, 14, 21, 59, 0, 0, time.UTC)

	r := BuildDaily([]models.Sale{
		sale("V-A", justBefore, models.PaymentMethodCash, line("Eau", 1, 200)),
		sale("V-B", justAfterMidnight, models.PaymentMethodCash, line("Coca", 1, 250)),
	}, now)

	require.Len(t, r.Sales, 1)
	assert.Equal(t, "V-B", r.Sales[0].ID)
}

func TestBuildDaily_Empty(t *testing.T) {
	r := BuildDaily(nil, time.Now())
	assert.Zero(t, r.Count)
	assert.Empty(t, r.Products)
	assert.NotNil(t, r.Products)
}

func TestSalesCSV(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	csv := SalesCSV([]models.Sale{
		sale("V-1", at, models.PaymentMethodCard, line("Coca", 2, 250)),
		sale("V-2", at, models.PaymentMethodCash, line(`A"B`, 1, 50), line("Eau", 1, 200)),
	})

	assert.Equal(t, strings.Join([]string{
		"SALE_ID,DATE_ISO,TOTAL,PAYMENT_METHOD,DETAIL",
		`V-1,2026-10-15T09:30:00.000Z,5.00,CB,"Coca x2"`,
		`V-2,2026-10-15T09:30:00.000Z,2.50,CASH,"A""B x1 | Eau x1"`,
	}, "\n"), csv)
}

func TestQuoteDetail(t *testing.T) {
	assert.Equal(t, `"Coca x2"`, QuoteDetail("Coca x2"))
	assert.Equal(t, `"A""B"`, QuoteDetail(`A"B`))
	assert.Equal(t, `""`, QuoteDetail(""))
}

func TestDailyCSV_OnlyToday(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	r := BuildDaily([]models.Sale{
		sale("V-OLD", now.AddDate(0, 0, -1), models.PaymentMethodCash, line("Eau", 1, 200)),
		sale("V-NEW", now, models.PaymentMethodCash, line("Thé", 1, 250)),
	}, now)

	assert.Equal(t, "DATE,SALE_ID,PAYMENT_METHOD,TOTAL,DETAIL\n"+
		`2026-10-15T12:00:00.000Z,V-NEW,CASH,2.50,"Thé x1"`, DailyCSV(r))
}

func TestWriteDailyXLSX(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	r := BuildDaily([]models.Sale{
		sale("V-1", now, models.PaymentMethodCash, line("Samoussa poulet", 4, 50)),
	}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteDailyXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, productsSheet}, f.GetSheetList())

	name, err := f.GetCellValue(productsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Samoussa poulet", name)

	qty, err := f.GetCellValue(productsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", qty)

	total, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}
