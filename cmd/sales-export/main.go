// sales-export writes the local sales ledger, or today's report, to a file
// without starting the till.
//
// Usage:
//
//	STORE_DRIVER=file DATA_FILE=./data/foodpos.json go run ./cmd/sales-export -out ventes.csv
//	go run ./cmd/sales-export -daily -out bilan_du_jour.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/reports"
	"bitbucket.org/mmdatafocus/foodpos/store"
)

func main() {
	out := flag.String("out", "ventes.csv", "output file (.csv or .xlsx)")
	daily := flag.Bool("daily", false, "export only today's sales")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	logger := config.InitLogger(settings)

	ctx := context.Background()
	opened, err := store.Open(ctx, settings, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer opened.Close()

	sales := store.Load(ctx, opened.Store, store.KeySales, []models.Sale{})
	report := reports.BuildDaily(sales, time.Now())

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(*out)) {
	case ".xlsx":
		err = reports.WriteDailyXLSX(f, report)
	default:
		csv := reports.SalesCSV(sales)
		if *daily {
			csv = reports.DailyCSV(report)
		}
		_, err = f.WriteString(csv)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	count := len(sales)
	if *daily || strings.EqualFold(filepath.Ext(*out), ".xlsx") {
		count = report.Count
	}
	fmt.Printf("exported %d sales to %s\n", count, *out)
}
