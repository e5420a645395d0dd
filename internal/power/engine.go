package power

import (
	"errors"
	"fmt"
	"log"
	"math/big"
	"runtime"
	"sync"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/vsr"
)

// ErrUnknownMintOrRealm is returned when the decoded registrar does not
// govern the expected token mint. The registrar's accounts are skipped;
// a multi-registrar scan continues with the rest.
var ErrUnknownMintOrRealm = errors.New("unknown mint or realm")

// RawAccount is one fetched voter account: address plus raw bytes.
type RawAccount struct {
	Address vsr.Address
	Data    []byte
}

// Engine computes leaderboards from raw registrar and voter account bytes.
// All computation is pure over the inputs; the only clock is the caller's now.
type Engine struct {
	bonusScaled  uint64
	expectedMint vsr.Address // zero = accept any governing mint
	filterZero   bool
	workers      int
	logger       *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExpectedMint makes the engine reject registrars governing any other mint.
func WithExpectedMint(mint vsr.Address) Option {
	return func(e *Engine) { e.expectedMint = mint }
}

// WithZeroFilter drops wallets whose total power is zero from the leaderboard.
func WithZeroFilter(enabled bool) Option {
	return func(e *Engine) { e.filterZero = enabled }
}

// WithWorkers sets the decode worker count. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger for per-record warnings.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine with the given registrar-level bonus weight
// (the maximum extra multiplier at full lockup, e.g. 3.0).
func NewEngine(bonusWeight float64, opts ...Option) *Engine {
	e := &Engine{
		bonusScaled: ScaleBonusWeight(bonusWeight),
		workers:     runtime.GOMAXPROCS(0),
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// accountResult is one worker's output: a decoded account with its
// aggregated native power, or a decode failure.
type accountResult struct {
	account *vsr.VoterAccount
	native  *big.Int
	err     error
}

// ComputeLeaderboard decodes the registrar and every voter account, applies
// the lockup multiplier schedule at now, resolves single-hop delegation and
// returns the ranked leaderboard with a summary of what was decoded.
//
// Per-account decode failures are isolated: the malformed record is skipped
// with a warning and counted in the summary. Only a missing or malformed
// registrar aborts the whole computation.
func (e *Engine) ComputeLeaderboard(registrarBytes []byte, accounts []RawAccount, now int64) ([]domain.PowerRecord, *domain.ScanSummary, error) {
	if len(registrarBytes) == 0 {
		return nil, nil, fmt.Errorf("registrar: no account data")
	}

	reg, err := vsr.DecodeRegistrar(registrarBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("decode registrar: %w", err)
	}
	if !e.expectedMint.IsZero() && reg.GoverningTokenMint != e.expectedMint {
		return nil, nil, fmt.Errorf("%w: registrar governs mint %s, expected %s",
			ErrUnknownMintOrRealm, reg.GoverningTokenMint, e.expectedMint)
	}

	summary := &domain.ScanSummary{
		Realm:         reg.Realm.String(),
		GoverningMint: reg.GoverningTokenMint.String(),
		ScannedAt:     now,
		VoterAccounts: len(accounts),
	}

	// Decode and aggregate in parallel: each account is an independent,
	// side-effect-free computation over its own buffer.
	results := e.decodeAll(accounts, reg, now)

	// Barrier reached: attribution needs the full decoded set, since a
	// wallet's delegated bucket can depend on any account in the input.
	buckets := NewWalletBuckets()
	for i, res := range results {
		if res.err != nil {
			summary.SkippedMalformed++
			e.logger.Printf("WARN: skipping voter account %s: %v", accounts[i].Address, res.err)
			continue
		}
		summary.Decoded++
		buckets.Attribute(res.account.Owner, res.account.Delegate, res.native)
	}

	records, overflowed := BuildLeaderboard(buckets, e.filterZero)
	summary.Overflowed = overflowed
	summary.Wallets = len(records)
	if overflowed > 0 {
		e.logger.Printf("WARN: excluded %d wallet(s) whose power overflowed", overflowed)
	}

	return records, summary, nil
}

// decodeAll fans accounts out to the worker pool. Results come back in
// input order, so downstream attribution stays deterministic.
func (e *Engine) decodeAll(accounts []RawAccount, reg *vsr.Registrar, now int64) []accountResult {
	results := make([]accountResult, len(accounts))

	workers := e.workers
	if workers > len(accounts) {
		workers = len(accounts)
	}
	if workers <= 1 {
		for i := range accounts {
			results[i] = e.decodeOne(accounts[i], reg, now)
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.decodeOne(accounts[i], reg, now)
			}
		}()
	}
	for i := range accounts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (e *Engine) decodeOne(raw RawAccount, reg *vsr.Registrar, now int64) accountResult {
	account, err := vsr.DecodeVoter(raw.Address, raw.Data)
	if err != nil {
		return accountResult{err: err}
	}
	return accountResult{
		account: account,
		native:  NativePower(account, reg, now, e.bonusScaled),
	}
}
