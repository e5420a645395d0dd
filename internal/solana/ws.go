package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeProgram subscribes to account changes under a program.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramFilter defines subscription filter for programSubscribe.
type ProgramFilter struct {
	// ProgramID is the program whose accounts are watched.
	ProgramID string
	// DataSize filters notifications by exact account data length (0 = all).
	DataSize int
}

// AccountNotification represents one program account change.
type AccountNotification struct {
	Pubkey string
	Slot   int64
	Data   string // base64 encoded
}
