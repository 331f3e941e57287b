package jupiter

import (
	"context"
	"fmt"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/wallet"
)

// Executor performs a full swap through Jupiter: quote, build, sign, submit.
type Executor struct {
	client      *Client
	rpc         solana.RPCClient
	slippageBps int
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithSlippageBps sets the slippage tolerance for quotes.
func WithSlippageBps(bps int) ExecutorOption {
	return func(e *Executor) {
		e.slippageBps = bps
	}
}

// NewExecutor creates an Executor submitting signed transactions through rpc.
func NewExecutor(client *Client, rpc solana.RPCClient, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:      client,
		rpc:         rpc,
		slippageBps: defaultSlippageBps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute swaps req.Amount base units of req.InputMint into req.OutputMint
// on behalf of kp and returns the transaction signature.
func (e *Executor) Execute(ctx context.Context, req domain.SwapRequest, kp *wallet.Keypair) (string, error) {
	quote, err := e.client.Quote(ctx, QuoteParams{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		Amount:      req.Amount,
		SlippageBps: e.slippageBps,
	})
	if err != nil {
		return "", err
	}

	unsigned, err := e.client.SwapTransaction(ctx, kp.PublicKey(), quote)
	if err != nil {
		return "", err
	}

	signed, err := signLegacyTransaction(unsigned, kp)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	signature, err := e.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return "", err
	}
	return signature, nil
}
