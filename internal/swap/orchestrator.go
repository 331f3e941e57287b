// Package swap turns a collected (token, amount) pair into an executed
// on-chain swap: credential resolution, unit conversion, executor call, and
// user-facing progress reporting. Buys spend SOL for a token; sells spend a
// token for SOL.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/observability"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/storage"
	"solana-swap-bot/internal/wallet"
)

// explorerTxURL is the template for transaction links in success messages.
const explorerTxURL = "https://solscan.io/tx/%s"

const tradeRecordTimeout = 5 * time.Second

// Executor performs the actual swap and returns the transaction signature.
type Executor interface {
	Execute(ctx context.Context, req domain.SwapRequest, kp *wallet.Keypair) (string, error)
}

// Notifier delivers a status message to a user. The returned flag reports
// whether delivery was confirmed; the orchestrator treats false as "user may
// not have seen this" and carries on.
type Notifier interface {
	Deliver(ctx context.Context, userID int64, text string) bool
}

// Orchestrator runs swaps end to end for one user at a time.
type Orchestrator struct {
	source   wallet.Source
	executor Executor
	notifier Notifier
	trades   storage.TradeRecordStore
	rpc      solana.RPCClient
	metrics  *observability.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTradeStore enables persistence of trade outcomes. Recording is
// best-effort and never blocks or fails the swap itself.
func WithTradeStore(store storage.TradeRecordStore) Option {
	return func(o *Orchestrator) {
		o.trades = store
	}
}

// WithRPC enables sells, which need the wallet's token balance and the
// mint's decimals.
func WithRPC(rpc solana.RPCClient) Option {
	return func(o *Orchestrator) {
		o.rpc = rpc
	}
}

// WithMetrics wires in swap outcome metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an Orchestrator.
func New(source wallet.Source, executor Executor, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		executor: executor,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ExecuteSwap swaps amountSOL (a decimal string, already validated as a
// positive number) into tokenMint for the given user.
//
// The credential is resolved first: with no credential configured, nothing
// below it runs — no conversion, no executor call — and the user gets a
// configuration error. Executor failures are passed through with their text
// intact. Progress and outcome are reported through the notifier either way.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, userID int64, tokenMint, amountSOL string) (*domain.SwapResult, error) {
	started := time.Now()

	kp, release, err := o.acquire(ctx, userID, started)
	if err != nil {
		return nil, err
	}
	defer release()

	lamports, err := solana.ToLamports(amountSOL)
	if err != nil {
		log.Printf("swap: user %d: convert amount %q: %v", userID, amountSOL, err)
		o.notifier.Deliver(ctx, userID, "Invalid amount: "+amountSOL)
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		return nil, &ValidationError{Reason: err.Error()}
	}

	req := domain.SwapRequest{
		InputMint:       solana.WSOLMint,
		OutputMint:      tokenMint,
		Amount:          lamports,
		SenderPublicKey: kp.PublicKey(),
		Credential:      domain.CredentialRef{UserID: userID},
	}

	o.notifier.Deliver(ctx, userID, fmt.Sprintf("Swapping %s SOL for token %s...", amountSOL, tokenMint))
	return o.submit(ctx, userID, domain.TradeSideBuy, tokenMint, amountSOL, req, kp, started)
}

// ExecuteSell swaps amountTokens (a decimal string in token units, already
// validated as a positive number) of tokenMint back into SOL.
//
// Unlike a buy, the conversion factor is the mint's, not SOL's: the wallet's
// token balance is fetched first, which yields the decimals and lets an
// oversized amount fail before the executor is involved.
func (o *Orchestrator) ExecuteSell(ctx context.Context, userID int64, tokenMint, amountTokens string) (*domain.SwapResult, error) {
	started := time.Now()

	kp, release, err := o.acquire(ctx, userID, started)
	if err != nil {
		return nil, err
	}
	defer release()

	if o.rpc == nil {
		cfgErr := &ConfigurationError{Reason: "token balance lookups are not configured"}
		log.Printf("swap: user %d: sell without an RPC client", userID)
		o.notifier.Deliver(ctx, userID, "Selling is not available: "+cfgErr.Reason+". Please contact the operator.")
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		return nil, cfgErr
	}

	balance, decimals, err := o.rpc.GetTokenBalance(ctx, kp.PublicKey(), tokenMint)
	if err != nil {
		log.Printf("swap: user %d: token balance of %s: %v", userID, tokenMint, err)
		o.notifier.Deliver(ctx, userID, "Sell failed: "+err.Error())
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		o.recordTrade(userID, domain.TradeSideSell, tokenMint, amountTokens, 0, "", err.Error())
		return nil, &ExecutionError{Text: err.Error()}
	}

	units, err := solana.ToBaseUnits(amountTokens, int(decimals))
	if err != nil {
		log.Printf("swap: user %d: convert amount %q: %v", userID, amountTokens, err)
		o.notifier.Deliver(ctx, userID, "Invalid amount: "+amountTokens)
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		return nil, &ValidationError{Reason: err.Error()}
	}
	if units > balance {
		text := fmt.Sprintf("insufficient token balance: have %s, requested %s",
			solana.FromBaseUnits(balance, int(decimals)), amountTokens)
		log.Printf("swap: user %d: %s", userID, text)
		o.notifier.Deliver(ctx, userID, "Sell failed: "+text)
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		o.recordTrade(userID, domain.TradeSideSell, tokenMint, amountTokens, units, "", text)
		return nil, &ExecutionError{Text: text}
	}

	req := domain.SwapRequest{
		InputMint:       tokenMint,
		OutputMint:      solana.WSOLMint,
		Amount:          units,
		SenderPublicKey: kp.PublicKey(),
		Credential:      domain.CredentialRef{UserID: userID},
	}

	o.notifier.Deliver(ctx, userID, fmt.Sprintf("Selling %s of token %s for SOL...", amountTokens, tokenMint))
	return o.submit(ctx, userID, domain.TradeSideSell, tokenMint, amountTokens, req, kp, started)
}

// acquire resolves the signing keypair, reporting a configuration error to
// the user when it cannot be.
func (o *Orchestrator) acquire(ctx context.Context, userID int64, started time.Time) (*wallet.Keypair, func(), error) {
	kp, release, err := o.source.Acquire(ctx, domain.CredentialRef{UserID: userID})
	if err != nil {
		cfgErr := &ConfigurationError{Reason: "no signing wallet is configured", Err: err}
		if !errors.Is(err, wallet.ErrNoCredential) {
			cfgErr.Reason = "the signing wallet could not be loaded"
		}
		log.Printf("swap: user %d: acquire credential: %v", userID, err)
		o.notifier.Deliver(ctx, userID, "Swap is not available: "+cfgErr.Reason+". Please contact the operator.")
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		return nil, nil, cfgErr
	}
	return kp, release, nil
}

// submit runs the executor and reports the outcome to the user, the metrics,
// and the trade log.
func (o *Orchestrator) submit(ctx context.Context, userID int64, side, mint, amount string, req domain.SwapRequest, kp *wallet.Keypair, started time.Time) (*domain.SwapResult, error) {
	verb := "Swap"
	if side == domain.TradeSideSell {
		verb = "Sell"
	}

	signature, err := o.executor.Execute(ctx, req, kp)
	if err != nil {
		log.Printf("swap: user %d: execute %s: %v", userID, side, err)
		o.notifier.Deliver(ctx, userID, verb+" failed: "+err.Error())
		o.metrics.RecordSwap(domain.TradeStatusError, time.Since(started).Seconds())
		o.recordTrade(userID, side, mint, amount, req.Amount, "", err.Error())
		return nil, &ExecutionError{Text: err.Error()}
	}

	result := &domain.SwapResult{
		Signature:   signature,
		ExplorerURL: fmt.Sprintf(explorerTxURL, signature),
	}
	o.notifier.Deliver(ctx, userID, verb+" successful!\nTransaction: "+result.ExplorerURL)
	o.metrics.RecordSwap(domain.TradeStatusSuccess, time.Since(started).Seconds())
	o.recordTrade(userID, side, mint, amount, req.Amount, signature, "")
	return result, nil
}

// recordTrade persists the outcome in the background. The swap result has
// already been reported to the user, so a storage failure is only logged.
func (o *Orchestrator) recordTrade(userID int64, side, mint, amount string, baseUnits uint64, signature, errText string) {
	if o.trades == nil {
		return
	}

	status := domain.TradeStatusSuccess
	if errText != "" {
		status = domain.TradeStatusError
	}
	record := &domain.TradeRecord{
		UserID:          userID,
		Side:            side,
		Mint:            mint,
		Amount:          amount,
		AmountBaseUnits: baseUnits,
		Status:          status,
		Signature:       signature,
		Error:           errText,
		CreatedAt:       time.Now().UnixMilli(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), tradeRecordTimeout)
		defer cancel()
		if err := o.trades.Insert(ctx, record); err != nil {
			log.Printf("swap: user %d: record trade: %v", userID, err)
		}
	}()
}
