// Package main provides a one-shot governance power scan:
// fetch registrar + voter accounts, compute the leaderboard, export files,
// optionally persist to PostgreSQL/ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"islanddao-governance/internal/power"
	"islanddao-governance/internal/reporting"
	"islanddao-governance/internal/scan"
	"islanddao-governance/internal/solana"
	"islanddao-governance/internal/storage/migrations"
	pgstore "islanddao-governance/internal/storage/postgres"
	"islanddao-governance/internal/vsr"
)

func main() {
	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	programID := flag.String("program-id", os.Getenv("VSR_PROGRAM_ID"), "Voter stake registry program ID")
	registrarID := flag.String("registrar", os.Getenv("VSR_REGISTRAR"), "Registrar account address")
	expectedMint := flag.String("mint", os.Getenv("GOVERNING_MINT"), "Expected governing token mint (optional check)")
	bonusWeight := flag.Float64("bonus-weight", 3.0, "Extra vote weight at full lockup saturation")
	includeZero := flag.Bool("include-zero", false, "Keep wallets with zero total power in the output")
	workers := flag.Int("workers", 0, "Decode worker count (0 = NumCPU)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (optional persistence)")
	outputDir := flag.String("output-dir", "output", "Output directory for CSV/JSON exports")
	verbose := flag.Bool("verbose", false, "Verbose progress logging")
	flag.Parse()

	logger := log.New(os.Stdout, "[scan] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *programID == "" {
		logger.Fatal("--program-id is required")
	}
	if *registrarID == "" {
		logger.Fatal("--registrar is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	engine, err := buildEngine(*bonusWeight, *expectedMint, *includeZero, *workers, logger)
	if err != nil {
		logger.Fatalf("Invalid engine configuration: %v", err)
	}

	opts := scan.Options{
		RPC:         solana.NewHTTPClient(*rpcEndpoint),
		Engine:      engine,
		ProgramID:   *programID,
		RegistrarID: *registrarID,
		Verbose:     *verbose,
		Logger:      logger,
	}

	// Optional persistence
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		opts.RecordStore = pgstore.NewPowerRecordStore(pool)
		opts.ScanStore = pgstore.NewScanStore(pool)
	}

	result, err := scan.New(opts).Run(ctx)
	if err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}

	if err := writeExports(*outputDir, result); err != nil {
		logger.Fatalf("Export failed: %v", err)
	}

	s := result.Summary
	fmt.Printf("Scan %s complete: %d voter accounts, %d decoded, %d skipped, %d wallets ranked\n",
		s.ScanID[:12], s.VoterAccounts, s.Decoded, s.SkippedMalformed, s.Wallets)
	fmt.Printf("Exports written to %s/\n", *outputDir)
}

// buildEngine assembles the power engine from flags.
func buildEngine(bonusWeight float64, mint string, includeZero bool, workers int, logger *log.Logger) (*power.Engine, error) {
	engineOpts := []power.Option{
		power.WithZeroFilter(!includeZero),
		power.WithLogger(logger),
	}
	if workers > 0 {
		engineOpts = append(engineOpts, power.WithWorkers(workers))
	}
	if mint != "" {
		addr, err := vsr.ParseAddress(mint)
		if err != nil {
			return nil, fmt.Errorf("parse mint: %w", err)
		}
		if !addr.IsOnCurve() {
			return nil, fmt.Errorf("mint %s is not an ed25519 public key", mint)
		}
		engineOpts = append(engineOpts, power.WithExpectedMint(addr))
	}
	return power.NewEngine(bonusWeight, engineOpts...), nil
}

// writeExports renders the leaderboard as CSV and JSON files.
func writeExports(dir string, result *scan.RunResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	csvPath := filepath.Join(dir, "leaderboard.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(result.Records)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}

	data, err := reporting.RenderJSON(result.Records)
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	jsonPath := filepath.Join(dir, "leaderboard.json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	return nil
}
