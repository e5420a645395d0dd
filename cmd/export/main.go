// Package main renders governance power reports from stored scan results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"islanddao-governance/internal/reporting"
	pgstore "islanddao-governance/internal/storage/postgres"
)

func main() {
	// Parse flags
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	format := flag.String("format", "markdown", "Output format: markdown, csv or json")
	output := flag.String("output", "", "Output file (default stdout)")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	generator := reporting.NewGenerator(pgstore.NewPowerRecordStore(pool), pgstore.NewScanStore(pool))

	report, err := generator.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	rendered, err := render(report, *format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(string(rendered))
		return
	}
	if err := os.WriteFile(*output, rendered, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", *output)
}

// render serializes the report in the requested format.
func render(report *reporting.Report, format string) ([]byte, error) {
	switch format {
	case "markdown":
		return []byte(reporting.RenderMarkdown(report)), nil
	case "csv":
		return []byte(reporting.RenderReportCSV(report)), nil
	case "json":
		return reporting.RenderReportJSON(report)
	default:
		return nil, fmt.Errorf("unknown format %q (want markdown, csv or json)", format)
	}
}
