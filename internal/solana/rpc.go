package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the bot depends on.
type RPCClient interface {
	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetTokenBalance returns the owner's total balance of mint in base
	// units, along with the mint's decimals.
	GetTokenBalance(ctx context.Context, owner, mint string) (uint64, uint8, error)

	// GetSlot returns the current slot, used as a connectivity check.
	GetSlot(ctx context.Context) (uint64, error)

	// SendTransaction submits a base64-encoded signed transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, txBase64 string) (string, error)
}
