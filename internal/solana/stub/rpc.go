package stub

import (
	"context"

	"islanddao-governance/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Accounts        map[string]*solana.AccountInfo
	ProgramAccounts map[string][]solana.ProgramAccount
	Slot            int64
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts:        make(map[string]*solana.AccountInfo),
		ProgramAccounts: make(map[string][]solana.ProgramAccount),
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// GetAccountInfo retrieves account info from the stub store.
// Returns nil if the account does not exist, matching the real client.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	return info, nil
}

// GetProgramAccounts retrieves program accounts from the stub store.
// The DataSize filter is honored; memcmp filters are ignored.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, opts *solana.ProgramAccountsOpts) ([]solana.ProgramAccount, error) {
	accounts := c.ProgramAccounts[programID]
	if opts == nil || opts.DataSize <= 0 {
		return accounts, nil
	}

	var filtered []solana.ProgramAccount
	for _, acc := range accounts {
		raw, err := solana.DecodeAccountData(acc.Data)
		if err != nil {
			continue
		}
		if len(raw) == opts.DataSize {
			filtered = append(filtered, acc)
		}
	}
	return filtered, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	return c.Slot, nil
}

// AddAccount adds an account to the stub store.
func (c *RPCClient) AddAccount(pubkey string, info *solana.AccountInfo) {
	c.Accounts[pubkey] = info
}

// AddProgramAccount adds a program account to the stub store.
func (c *RPCClient) AddProgramAccount(programID string, acc solana.ProgramAccount) {
	c.ProgramAccounts[programID] = append(c.ProgramAccounts[programID], acc)
}
