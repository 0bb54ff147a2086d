package reports

import (
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/utils"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var (
	salesHeader = []string{"SALE_ID", "DATE_ISO", "TOTAL", "PAYMENT_METHOD", "DETAIL"}
	dailyHeader = []string{"DATE", "SALE_ID", "PAYMENT_METHOD", "TOTAL", "DETAIL"}
)

// QuoteDetail always quotes, doubling embedded quotes.
func QuoteDetail(detail string) string {
	return `"` + strings.ReplaceAll(detail, `"`, `""`) + `"`
}

func isoDate(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// SalesCSV renders the whole ledger.
func SalesCSV(sales []models.Sale) string {
	lines := []string{strings.Join(salesHeader, ",")}
	for _, s := range sales {
		lines = append(lines, strings.Join([]string{
			s.ID,
			isoDate(s.Timestamp),
			utils.FormatAmount(s.Total),
			string(s.PaymentMethod),
			QuoteDetail(s.Detail()),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// DailyCSV renders the sales of the report's day.
func DailyCSV(r DailyReport) string {
	lines := []string{strings.Join(dailyHeader, ",")}
	for _, s := range r.Sales {
		lines = append(lines, strings.Join([]string{
			isoDate(s.Timestamp),
			s.ID,
			string(s.PaymentMethod),
			utils.FormatAmount(s.Total),
			QuoteDetail(s.Detail()),
		}, ","))
	}
	return strings.Join(lines, "\n")
}
