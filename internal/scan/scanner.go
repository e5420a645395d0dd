// Package scan provides end-to-end leaderboard scan orchestration.
// It coordinates: account fetch → decode/aggregate → delegation resolution →
// leaderboard → persistence.
package scan

import (
	"context"
	"fmt"
	"log"
	"time"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/power"
	"islanddao-governance/internal/scanid"
	"islanddao-governance/internal/solana"
	"islanddao-governance/internal/storage"
	"islanddao-governance/internal/vsr"
)

// voterRegistrarOffset is the byte offset of the registrar back-reference
// inside a voter account, used for server-side memcmp filtering.
const voterRegistrarOffset = 8 + vsr.AddressLen

// Scanner runs leaderboard scans against one registrar.
type Scanner struct {
	rpc       solana.RPCClient
	engine    *power.Engine
	programID string
	registrar string

	// Optional stores; nil skips the corresponding persistence step.
	walletStore   storage.WalletStore
	recordStore   storage.PowerRecordStore
	scanStore     storage.ScanStore
	snapshotStore storage.PowerSnapshotStore

	restrictToWallets bool
	verbose           bool
	logger            *log.Logger
	now               func() time.Time
}

// Options for creating a Scanner.
type Options struct {
	// Required
	RPC         solana.RPCClient
	Engine      *power.Engine
	ProgramID   string // VSR program id owning the voter accounts
	RegistrarID string // registrar account address

	// Optional stores
	WalletStore   storage.WalletStore
	RecordStore   storage.PowerRecordStore
	ScanStore     storage.ScanStore
	SnapshotStore storage.PowerSnapshotStore

	// Options
	RestrictToWallets bool // filter the leaderboard to the wallet list
	Verbose           bool
	Logger            *log.Logger
}

// New creates a new Scanner.
func New(opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		rpc:               opts.RPC,
		engine:            opts.Engine,
		programID:         opts.ProgramID,
		registrar:         opts.RegistrarID,
		walletStore:       opts.WalletStore,
		recordStore:       opts.RecordStore,
		scanStore:         opts.ScanStore,
		snapshotStore:     opts.SnapshotStore,
		restrictToWallets: opts.RestrictToWallets,
		verbose:           opts.Verbose,
		logger:            logger,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic scans.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// RunResult contains one scan's output.
type RunResult struct {
	Records []domain.PowerRecord
	Summary *domain.ScanSummary
}

// Run executes one full scan.
// Phases:
//  1. Fetch registrar and all voter accounts for it
//  2. Decode + aggregate (parallel), resolve delegation, build leaderboard
//  3. Optionally restrict to the wallet list
//  4. Persist leaderboard, scan summary and history snapshot
func (s *Scanner) Run(ctx context.Context) (*RunResult, error) {
	now := s.now().Unix()

	// Registrars are program-derived addresses. An on-curve id is a signing
	// keypair, so the configured address cannot be a registrar.
	regAddr, err := vsr.ParseAddress(s.registrar)
	if err != nil {
		return nil, fmt.Errorf("registrar address: %w", err)
	}
	if regAddr.IsOnCurve() {
		return nil, fmt.Errorf("registrar %s is on the ed25519 curve, expected a program-derived address", s.registrar)
	}

	// Phase 1: fetch a consistent snapshot of raw account bytes.
	s.log("Phase 1: Fetching registrar %s...", s.registrar)
	registrarBytes, err := s.fetchRegistrar(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (fetch registrar) failed: %w", err)
	}

	slot, err := s.rpc.GetSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (get slot) failed: %w", err)
	}

	accounts, predecodeSkipped, err := s.fetchVoterAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (fetch voter accounts) failed: %w", err)
	}
	s.log("  Fetched %d voter accounts at slot %d", len(accounts), slot)

	// Phase 2: pure computation over the snapshot.
	s.log("Phase 2: Computing leaderboard...")
	records, summary, err := s.engine.ComputeLeaderboard(registrarBytes, accounts, now)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (compute leaderboard) failed: %w", err)
	}
	summary.Slot = slot
	summary.SkippedMalformed += predecodeSkipped
	summary.VoterAccounts += predecodeSkipped
	summary.ScanID = scanid.ComputeScanID(s.registrar, slot, now)
	s.log("  Decoded %d accounts (%d skipped), %d wallets ranked",
		summary.Decoded, summary.SkippedMalformed, summary.Wallets)

	// Phase 3: wallet-list restriction of the exported view.
	if s.restrictToWallets && s.walletStore != nil {
		wallets, err := s.walletStore.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("phase 3 (list wallets) failed: %w", err)
		}
		allowed := make(map[string]bool, len(wallets))
		for _, w := range wallets {
			allowed[w.Address] = true
		}
		records = power.FilterWallets(records, allowed)
		summary.Wallets = len(records)
		s.log("Phase 3: Restricted to %d listed wallets", len(records))
	}

	// Phase 4: persistence.
	if err := s.persist(ctx, records, summary); err != nil {
		return nil, fmt.Errorf("phase 4 (persist) failed: %w", err)
	}

	return &RunResult{Records: records, Summary: summary}, nil
}

// fetchRegistrar returns the registrar's raw bytes.
// A missing registrar is fatal for the whole run.
func (s *Scanner) fetchRegistrar(ctx context.Context) ([]byte, error) {
	info, err := s.rpc.GetAccountInfo(ctx, s.registrar)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("registrar account %s not found", s.registrar)
	}
	return solana.DecodeAccountData(info.Data)
}

// fetchVoterAccounts fetches raw voter accounts scoped to the registrar.
// Accounts whose address or data fail to decode are counted as skipped,
// never fatal.
func (s *Scanner) fetchVoterAccounts(ctx context.Context) ([]power.RawAccount, int, error) {
	raw, err := s.rpc.GetProgramAccounts(ctx, s.programID, &solana.ProgramAccountsOpts{
		MemcmpOffset: voterRegistrarOffset,
		MemcmpBytes:  s.registrar,
	})
	if err != nil {
		return nil, 0, err
	}

	accounts := make([]power.RawAccount, 0, len(raw))
	skipped := 0
	for _, acc := range raw {
		addr, err := vsr.ParseAddress(acc.Pubkey)
		if err != nil {
			skipped++
			s.logger.Printf("WARN: skipping account with bad address %q: %v", acc.Pubkey, err)
			continue
		}
		data, err := solana.DecodeAccountData(acc.Data)
		if err != nil {
			skipped++
			s.logger.Printf("WARN: skipping account %s with bad data: %v", acc.Pubkey, err)
			continue
		}
		accounts = append(accounts, power.RawAccount{Address: addr, Data: data})
	}

	return accounts, skipped, nil
}

// persist writes the scan output to whichever sinks are configured.
func (s *Scanner) persist(ctx context.Context, records []domain.PowerRecord, summary *domain.ScanSummary) error {
	if s.recordStore != nil {
		recs := make([]*domain.PowerRecord, len(records))
		for i := range records {
			recs[i] = &records[i]
		}
		if err := s.recordStore.Replace(ctx, summary.ScanID, recs); err != nil {
			return fmt.Errorf("replace power records: %w", err)
		}
	}

	if s.scanStore != nil {
		if err := s.scanStore.Insert(ctx, summary); err != nil {
			return fmt.Errorf("insert scan summary: %w", err)
		}
	}

	if s.snapshotStore != nil {
		points := make([]*domain.PowerSnapshotPoint, len(records))
		for i, r := range records {
			points[i] = &domain.PowerSnapshotPoint{
				ScanID:    summary.ScanID,
				Wallet:    r.Wallet,
				Native:    r.Native,
				Delegated: r.Delegated,
				Total:     r.Total,
				Slot:      summary.Slot,
				ScannedAt: summary.ScannedAt,
			}
		}
		if err := s.snapshotStore.InsertBulk(ctx, points); err != nil {
			return fmt.Errorf("insert power snapshots: %w", err)
		}
	}

	return nil
}

// log prints verbose progress messages.
func (s *Scanner) log(format string, args ...interface{}) {
	if s.verbose {
		s.logger.Printf(format, args...)
	}
}
