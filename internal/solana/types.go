package solana

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// ProgramAccount is one (address, raw bytes) pair from getProgramAccounts.
type ProgramAccount struct {
	Pubkey string
	Data   string // base64 encoded
}

// ProgramAccountsOpts defines optional filters for getProgramAccounts.
type ProgramAccountsOpts struct {
	// DataSize filters accounts by exact data length (0 = no filter).
	DataSize int
	// MemcmpOffset/MemcmpBytes match base58-encoded bytes at a fixed offset.
	// Empty MemcmpBytes disables the filter.
	MemcmpOffset int
	MemcmpBytes  string
}
