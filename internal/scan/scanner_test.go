package scan

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"io"
	"log"
	"testing"
	"time"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/power"
	"islanddao-governance/internal/solana"
	"islanddao-governance/internal/solana/stub"
	"islanddao-governance/internal/storage/memory"
	"islanddao-governance/internal/vsr"
)

const (
	testProgramID = "voterProgram"
	yearSecs      = 31_536_000
)

// All-0xFF is not a canonical ed25519 encoding, so it passes the
// off-curve registrar check.
var testRegistrar = addr(0xFF).String()

func addr(fill byte) vsr.Address {
	var a vsr.Address
	for i := range a {
		a[i] = fill
	}
	return a
}

// onCurveAddr returns the identity point encoding, a valid curve point.
func onCurveAddr() vsr.Address {
	var a vsr.Address
	a[0] = 1
	return a
}

func registrarB64(realm, mint vsr.Address, saturation uint64) string {
	buf := make([]byte, vsr.RegistrarMinLen)
	copy(buf[8:], realm[:])
	copy(buf[40:], mint[:])
	binary.LittleEndian.PutUint64(buf[72:], saturation)
	return base64.StdEncoding.EncodeToString(buf)
}

func voterB64(owner, delegate vsr.Address, amount uint64, endTS int64) string {
	buf := make([]byte, vsr.VoterMinLen)
	copy(buf[8:], owner[:])
	copy(buf[72:], delegate[:])

	off := 8 + 3*vsr.AddressLen
	binary.LittleEndian.PutUint64(buf[off+8:], uint64(endTS))
	buf[off+16] = byte(vsr.LockupCliff)
	binary.LittleEndian.PutUint64(buf[off+32:], amount)
	buf[off+48] = 1
	return base64.StdEncoding.EncodeToString(buf)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestScanner(t *testing.T, rpc *stub.RPCClient, opts Options) *Scanner {
	t.Helper()
	opts.RPC = rpc
	if opts.Engine == nil {
		opts.Engine = power.NewEngine(3.0, power.WithLogger(quietLogger()))
	}
	opts.ProgramID = testProgramID
	opts.RegistrarID = testRegistrar
	opts.Logger = quietLogger()
	return New(opts)
}

func TestScanner_Run_EndToEnd(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	rpc := stub.NewRPCClient()
	rpc.Slot = 5000
	rpc.AddAccount(testRegistrar, &solana.AccountInfo{
		Data: registrarB64(addr(0xAA), addr(0xBB), yearSecs),
	})
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(10).String(),
		Data:   voterB64(addr(1), vsr.Address{}, 1_000_000, now.Unix()+yearSecs),
	})
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(11).String(),
		Data:   voterB64(addr(2), addr(1), 500, now.Unix()-1),
	})

	recordStore := memory.NewPowerRecordStore()
	scanStore := memory.NewScanStore()
	snapshotStore := memory.NewPowerSnapshotStore()

	scanner := newTestScanner(t, rpc, Options{
		RecordStore:   recordStore,
		ScanStore:     scanStore,
		SnapshotStore: snapshotStore,
	}).WithClock(func() time.Time { return now })

	result, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := result.Summary
	if s.Slot != 5000 {
		t.Errorf("slot: got %d", s.Slot)
	}
	if s.ScanID == "" {
		t.Error("scan id not computed")
	}
	if s.Decoded != 2 || s.SkippedMalformed != 0 {
		t.Errorf("summary: %+v", s)
	}

	// addr(1) gets 4,000,000 native; addr(2) delegated its expired 500 to addr(1).
	if len(result.Records) != 2 {
		t.Fatalf("records: %d", len(result.Records))
	}
	top := result.Records[0]
	if top.Wallet != addr(1).String() || top.Native != 4_000_000 || top.Delegated != 500 {
		t.Errorf("top record: %+v", top)
	}

	// Persistence: leaderboard, summary and snapshots all written.
	stored, err := recordStore.GetAll(context.Background())
	if err != nil || len(stored) != 2 {
		t.Errorf("stored records: %d, err %v", len(stored), err)
	}
	latest, err := scanStore.GetLatest(context.Background())
	if err != nil || latest.ScanID != s.ScanID {
		t.Errorf("stored scan: %+v, err %v", latest, err)
	}
	history, err := snapshotStore.GetByWallet(context.Background(), addr(1).String())
	if err != nil || len(history) != 1 {
		t.Errorf("snapshot history: %d, err %v", len(history), err)
	}
}

func TestScanner_Run_MissingRegistrarFatal(t *testing.T) {
	rpc := stub.NewRPCClient()

	scanner := newTestScanner(t, rpc, Options{})
	if _, err := scanner.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing registrar")
	}
}

func TestScanner_Run_RejectsBadRegistrarID(t *testing.T) {
	tests := []struct {
		name      string
		registrar string
	}{
		{"not base58", "0invalid0"},
		{"wrong length", "abc"},
		{"on curve", onCurveAddr().String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpc := stub.NewRPCClient()
			scanner := newTestScanner(t, rpc, Options{})
			scanner.registrar = tt.registrar

			if _, err := scanner.Run(context.Background()); err == nil {
				t.Errorf("registrar %q accepted, want error", tt.registrar)
			}
		})
	}
}

func TestScanner_Run_BadAccountDataSkipped(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	rpc := stub.NewRPCClient()
	rpc.AddAccount(testRegistrar, &solana.AccountInfo{
		Data: registrarB64(addr(0xAA), addr(0xBB), yearSecs),
	})
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(10).String(),
		Data:   voterB64(addr(1), vsr.Address{}, 100, now.Unix()-1),
	})
	// Undecodable base64 payload
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(11).String(),
		Data:   "!!!not-base64!!!",
	})
	// Invalid base58 pubkey
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: "0invalid0",
		Data:   voterB64(addr(2), vsr.Address{}, 100, now.Unix()-1),
	})

	scanner := newTestScanner(t, rpc, Options{}).WithClock(func() time.Time { return now })

	result, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := result.Summary
	if s.Decoded != 1 {
		t.Errorf("decoded: got %d, want 1", s.Decoded)
	}
	if s.SkippedMalformed != 2 {
		t.Errorf("skipped: got %d, want 2", s.SkippedMalformed)
	}
	if s.VoterAccounts != 3 {
		t.Errorf("voter accounts: got %d, want 3", s.VoterAccounts)
	}
}

func TestScanner_Run_RestrictToWallets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	rpc := stub.NewRPCClient()
	rpc.AddAccount(testRegistrar, &solana.AccountInfo{
		Data: registrarB64(addr(0xAA), addr(0xBB), yearSecs),
	})
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(10).String(),
		Data:   voterB64(addr(1), vsr.Address{}, 100, now.Unix()-1),
	})
	rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
		Pubkey: addr(11).String(),
		Data:   voterB64(addr(2), vsr.Address{}, 200, now.Unix()-1),
	})

	walletStore := memory.NewWalletStore()
	if err := walletStore.Insert(context.Background(), &domain.Wallet{Address: addr(2).String()}); err != nil {
		t.Fatalf("insert wallet: %v", err)
	}

	scanner := newTestScanner(t, rpc, Options{
		WalletStore:       walletStore,
		RestrictToWallets: true,
	}).WithClock(func() time.Time { return now })

	result, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Records) != 1 || result.Records[0].Wallet != addr(2).String() {
		t.Errorf("restricted records: %+v", result.Records)
	}
	if result.Summary.Wallets != 1 {
		t.Errorf("summary wallets: got %d", result.Summary.Wallets)
	}
}

func TestScanner_Run_Deterministic(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()

	rpc := stub.NewRPCClient()
	rpc.Slot = 42
	rpc.AddAccount(testRegistrar, &solana.AccountInfo{
		Data: registrarB64(addr(0xAA), addr(0xBB), yearSecs),
	})
	for i := byte(1); i <= 20; i++ {
		rpc.AddProgramAccount(testProgramID, solana.ProgramAccount{
			Pubkey: addr(i).String(),
			Data:   voterB64(addr(i), vsr.Address{}, uint64(i)*10, now.Unix()+int64(i)*1000),
		})
	}

	run := func() *RunResult {
		scanner := newTestScanner(t, rpc, Options{}).WithClock(func() time.Time { return now })
		result, err := scanner.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	first := run()
	second := run()

	if first.Summary.ScanID != second.Summary.ScanID {
		t.Errorf("scan ids differ: %s vs %s", first.Summary.ScanID, second.Summary.ScanID)
	}
	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ")
	}
	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Errorf("row %d differs: %+v vs %+v", i, first.Records[i], second.Records[i])
		}
	}
}
