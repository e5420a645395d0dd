package domain

// Wallet is a DAO member wallet of interest.
// Corresponds to wallets table in PostgreSQL; used only to restrict the
// exported leaderboard view, never to drive decoding.
type Wallet struct {
	Address string  // base58 wallet address, PRIMARY KEY
	Label   *string // optional display name (nullable)
	AddedAt int64   // Unix timestamp in milliseconds
}
