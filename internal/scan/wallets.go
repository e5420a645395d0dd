package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"islanddao-governance/internal/domain"
	"islanddao-governance/internal/storage"
	"islanddao-governance/internal/vsr"
)

// SeedWallets adds wallet addresses to the wallet list, skipping ones
// already present. Wallets must be canonical ed25519 public keys; a
// program-derived address cannot sign votes and is rejected.
// Returns the number of wallets actually added.
func SeedWallets(ctx context.Context, store storage.WalletStore, addresses []string) (int, error) {
	added := 0
	for _, raw := range addresses {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		a, err := vsr.ParseAddress(raw)
		if err != nil {
			return added, fmt.Errorf("wallet %q: %w", raw, err)
		}
		if !a.IsOnCurve() {
			return added, fmt.Errorf("wallet %s is not an ed25519 public key", raw)
		}

		w := &domain.Wallet{Address: a.String(), AddedAt: time.Now().UnixMilli()}
		if err := store.Insert(ctx, w); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return added, fmt.Errorf("insert wallet %s: %w", raw, err)
		}
		added++
	}
	return added, nil
}
