// Package main provides the long-running governance power service:
// - Scheduled leaderboard scans against one registrar
// - WebSocket-triggered rescans on voter account changes
// - HTTP API serving the current leaderboard and methodology
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/observability"
	"islanddao-governance/internal/power"
	"islanddao-governance/internal/reporting"
	"islanddao-governance/internal/scan"
	"islanddao-governance/internal/solana"
	"islanddao-governance/internal/storage"
	chstore "islanddao-governance/internal/storage/clickhouse"
	"islanddao-governance/internal/storage/memory"
	"islanddao-governance/internal/storage/migrations"
	pgstore "islanddao-governance/internal/storage/postgres"
	"islanddao-governance/internal/vsr"
)

//go:embed methodology.md
var methodologyDoc []byte

// Server holds all components of the governance power service.
type Server struct {
	scanner        *scan.Scanner
	wsEndpoint     string
	programID      string
	scanInterval   time.Duration
	rescanDebounce time.Duration
	logger         *log.Logger

	// State
	mu           sync.Mutex
	scanRunning  bool
	lastScanAt   time.Time
	scanRuns     int
	scanFailures int
	records      []domain.PowerRecord
	summary      *domain.ScanSummary

	rescanCh chan struct{}
}

// serverStores holds the storage implementations the scanner persists to.
type serverStores struct {
	walletStore   storage.WalletStore
	recordStore   storage.PowerRecordStore
	scanStore     storage.ScanStore
	snapshotStore storage.PowerSnapshotStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (empty disables change-triggered rescans)")
	programID := flag.String("program-id", os.Getenv("VSR_PROGRAM_ID"), "Voter stake registry program ID")
	registrarID := flag.String("registrar", os.Getenv("VSR_REGISTRAR"), "Registrar account address")
	expectedMint := flag.String("mint", os.Getenv("GOVERNING_MINT"), "Expected governing token mint (optional check)")
	bonusWeight := flag.Float64("bonus-weight", 3.0, "Extra vote weight at full lockup saturation")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	walletList := flag.String("wallets", os.Getenv("WALLET_LIST"), "Comma-separated wallet addresses to add to the wallet list at startup")
	restrictToWallets := flag.Bool("restrict-to-wallets", false, "Serve only wallets from the wallet list (seed via --wallets, or manage the wallets table directly)")
	scanInterval := flag.Duration("scan-interval", 15*time.Minute, "Scheduled scan interval")
	rescanDebounce := flag.Duration("rescan-debounce", 30*time.Second, "Quiet period after an account change before rescanning")
	httpAddr := flag.String("http-addr", ":8080", "HTTP API address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	verbose := flag.Bool("verbose", false, "Verbose scan logging")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *programID == "" {
		logger.Fatal("--program-id is required")
	}
	if *registrarID == "" {
		logger.Fatal("--registrar is required")
	}
	if reg, err := vsr.ParseAddress(*registrarID); err != nil {
		logger.Fatalf("Invalid --registrar: %v", err)
	} else if reg.IsOnCurve() {
		logger.Fatalf("Invalid --registrar: %s is on the ed25519 curve, expected a program-derived address", *registrarID)
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Seed the wallet list
	if *walletList != "" {
		added, err := scan.SeedWallets(ctx, stores.walletStore, strings.Split(*walletList, ","))
		if err != nil {
			logger.Fatalf("Failed to seed wallet list: %v", err)
		}
		logger.Printf("Wallet list seeded: %d added", added)
	}

	// Create engine
	engineOpts := []power.Option{power.WithLogger(logger)}
	if *expectedMint != "" {
		mint, err := vsr.ParseAddress(*expectedMint)
		if err != nil {
			logger.Fatalf("Invalid --mint: %v", err)
		}
		if !mint.IsOnCurve() {
			logger.Fatalf("Invalid --mint: %s is not an ed25519 public key", *expectedMint)
		}
		engineOpts = append(engineOpts, power.WithExpectedMint(mint))
	}
	engine := power.NewEngine(*bonusWeight, engineOpts...)

	// Create scanner
	scanner := scan.New(scan.Options{
		RPC:               solana.NewHTTPClient(*rpcEndpoint),
		Engine:            engine,
		ProgramID:         *programID,
		RegistrarID:       *registrarID,
		WalletStore:       stores.walletStore,
		RecordStore:       stores.recordStore,
		ScanStore:         stores.scanStore,
		SnapshotStore:     stores.snapshotStore,
		RestrictToWallets: *restrictToWallets,
		Verbose:           *verbose,
		Logger:            logger,
	})

	server := &Server{
		scanner:        scanner,
		wsEndpoint:     *wsEndpoint,
		programID:      *programID,
		scanInterval:   *scanInterval,
		rescanDebounce: *rescanDebounce,
		logger:         logger,
		rescanCh:       make(chan struct{}, 1),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP servers
	go server.startAPIServer(*httpAddr)
	go server.startMetricsServer(*metricsAddr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the scanner's persistence sinks.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*serverStores, func(), error) {
	if useMemory {
		stores := &serverStores{
			walletStore:   memory.NewWalletStore(),
			recordStore:   memory.NewPowerRecordStore(),
			scanStore:     memory.NewScanStore(),
			snapshotStore: memory.NewPowerSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &serverStores{
		walletStore:   pgstore.NewWalletStore(pool),
		recordStore:   pgstore.NewPowerRecordStore(pool),
		scanStore:     pgstore.NewScanStore(pool),
		snapshotStore: chstore.NewPowerSnapshotStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the scan scheduler and, when configured, the account watcher.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting governance power service...")

	errCh := make(chan error, 2)

	// Start account watcher in background
	if s.wsEndpoint != "" {
		go func() {
			err := s.runWatcher(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("account watcher: %w", err)
			}
		}()
	}

	// Start scan scheduler in background
	go func() {
		err := s.runScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("scan scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runScheduler runs scans on an interval, plus whenever the watcher asks.
func (s *Server) runScheduler(ctx context.Context) error {
	s.logger.Printf("Starting scan scheduler (interval: %v)...", s.scanInterval)

	// Run immediately on start
	s.runScan(ctx)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runScan(ctx)
		case <-s.rescanCh:
			observability.RecordRescan()
			s.runScan(ctx)
		}
	}
}

// runScan executes one scan and caches the result for the HTTP API.
func (s *Server) runScan(ctx context.Context) {
	s.mu.Lock()
	if s.scanRunning {
		s.mu.Unlock()
		s.logger.Println("Scan already running, skipping...")
		return
	}
	s.scanRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanRunning = false
		s.lastScanAt = time.Now()
		s.scanRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running scan...")
	start := time.Now()

	result, err := s.scanner.Run(ctx)
	if err != nil {
		s.mu.Lock()
		s.scanFailures++
		s.mu.Unlock()
		s.logger.Printf("Scan error: %v", err)
		observability.RecordScan("error", time.Since(start).Seconds(), 0, 0, 0, 0, 0)
		return
	}

	sum := result.Summary
	s.mu.Lock()
	s.records = result.Records
	s.summary = sum
	s.mu.Unlock()

	s.logger.Printf("Scan %s completed in %v: %d accounts, %d decoded, %d skipped, %d wallets",
		sum.ScanID[:12], time.Since(start), sum.VoterAccounts, sum.Decoded, sum.SkippedMalformed, sum.Wallets)

	observability.RecordScan("success", time.Since(start).Seconds(),
		sum.VoterAccounts, sum.Decoded, sum.SkippedMalformed, sum.Overflowed, sum.Wallets)
	observability.UpdateHighestSlot(sum.Slot)
	observability.DefaultMetrics.LastSuccessfulScan.SetToCurrentTime()
}

// runWatcher subscribes to voter account changes and requests debounced rescans.
func (s *Server) runWatcher(ctx context.Context) error {
	s.logger.Printf("Starting account watcher on %s...", s.wsEndpoint)

	ws, err := solana.NewWSClient(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	notifications, err := ws.SubscribeProgram(ctx, solana.ProgramFilter{
		ProgramID: s.programID,
		DataSize:  vsr.VoterMinLen,
	})
	if err != nil {
		return fmt.Errorf("subscribe to program: %w", err)
	}

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return fmt.Errorf("notification channel closed")
			}
			observability.RecordAccountChange()
			s.logger.Printf("Voter account %s changed at slot %d", n.Pubkey, n.Slot)
			if debounce == nil {
				debounce = time.NewTimer(s.rescanDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(s.rescanDebounce)
			}
			debounceCh = debounce.C
		case <-debounceCh:
			debounceCh = nil
			select {
			case s.rescanCh <- struct{}{}:
			default:
				// Rescan already requested
			}
		}
	}
}

// startAPIServer starts the HTTP server for the leaderboard API.
func (s *Server) startAPIServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/leaderboard.json", s.handleLeaderboardJSON)
	mux.HandleFunc("/leaderboard.csv", s.handleLeaderboardCSV)
	mux.HandleFunc("/methodology", s.handleMethodology)
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP API on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP API error: %v", err)
	}
}

// startMetricsServer starts the Prometheus metrics endpoint.
func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	s.logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("Metrics server error: %v", err)
	}
}

// snapshot returns the last scan's cached output.
func (s *Server) snapshot() ([]domain.PowerRecord, *domain.ScanSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.summary
}

// handleLeaderboardJSON serves the current leaderboard as JSON.
func (s *Server) handleLeaderboardJSON(w http.ResponseWriter, r *http.Request) {
	records, summary := s.snapshot()
	if summary == nil {
		http.Error(w, "no scan completed yet", http.StatusServiceUnavailable)
		return
	}

	data, err := reporting.RenderJSON(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleLeaderboardCSV serves the current leaderboard as CSV.
func (s *Server) handleLeaderboardCSV(w http.ResponseWriter, r *http.Request) {
	records, summary := s.snapshot()
	if summary == nil {
		http.Error(w, "no scan completed yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(reporting.RenderCSV(records)))
}

// handleMethodology serves the embedded methodology document.
func (s *Server) handleMethodology(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(methodologyDoc)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	LastScanAt   time.Time `json:"last_scan_at,omitempty"`
	LastScanID   string    `json:"last_scan_id,omitempty"`
	LastScanSlot int64     `json:"last_scan_slot,omitempty"`
	ScanRuns     int       `json:"scan_runs"`
	ScanFailures int       `json:"scan_failures"`
	ScanRunning  bool      `json:"scan_running"`
	Wallets      int       `json:"wallets"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:       "running",
		LastScanAt:   s.lastScanAt,
		ScanRuns:     s.scanRuns,
		ScanFailures: s.scanFailures,
		ScanRunning:  s.scanRunning,
		Wallets:      len(s.records),
	}
	if s.summary != nil {
		resp.LastScanID = s.summary.ScanID
		resp.LastScanSlot = s.summary.Slot
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
