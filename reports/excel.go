package reports

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Bilan"
	productsSheet = "Produits"
)

func euros(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// WriteDailyXLSX writes the report as a workbook with a summary sheet and a
// per-product sheet.
func WriteDailyXLSX(w io.Writer, r DailyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(productsSheet); err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Date", r.Date},
		{"Sales", r.Count},
		{"Total", euros(r.Total)},
		{"Cash", euros(r.CashTotal)},
		{"Card", euros(r.CardTotal)},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	// Add headers
	f.SetCellValue(productsSheet, "A1", "Product")
	f.SetCellValue(productsSheet, "B1", "Quantity")
	f.SetCellValue(productsSheet, "C1", "Amount")

	// Add data
	for i, p := range r.Products {
		f.SetCellValue(productsSheet, "A"+fmt.Sprint(i+2), p.Name)
		f.SetCellValue(productsSheet, "B"+fmt.Sprint(i+2), p.Quantity)
		f.SetCellValue(productsSheet, "C"+fmt.Sprint(i+2), euros(p.Amount))
	}

	return f.Write(w)
}
