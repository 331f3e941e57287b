package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/jupiter"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/storage"
)

const (
	msgPromptToken      = "Which token do you want to buy? Send the token mint address."
	msgPromptTokenSell  = "Which token do you want to sell? Send the token mint address."
	msgInvalidToken     = "That does not look like a valid token address. Send another one or /cancel."
	msgPromptAmount     = "How much SOL do you want to spend? Send a number, e.g. 0.5."
	msgPromptAmountSell = "How many tokens do you want to sell? Send a number, e.g. 1.0."
	msgInvalidAmount    = "Please send a positive number, e.g. 0.5, or /cancel."
)

// SwapRunner executes one trade end to end and reports progress to the user
// itself; the machine only needs the terminal outcome to clear the session.
type SwapRunner interface {
	ExecuteSwap(ctx context.Context, userID int64, tokenMint, amountSOL string) (*domain.SwapResult, error)
	ExecuteSell(ctx context.Context, userID int64, tokenMint, amountTokens string) (*domain.SwapResult, error)
}

// QuotePreviewer fetches an indicative quote for a freshly accepted token.
type QuotePreviewer interface {
	Quote(ctx context.Context, params jupiter.QuoteParams) (*jupiter.QuoteResponse, error)
}

// Machine drives the guided swap dialog over a session:
// Idle -> AwaitingToken -> AwaitingAmount -> (swap) -> Idle.
type Machine struct {
	guard   *Guard
	swapper SwapRunner
	quoter  QuotePreviewer           // optional, enables the preview on token accept
	quotes  storage.QuoteHistoryStore // optional, records previews
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithQuotePreview enables an indicative 1 SOL quote when a token address is
// accepted. history may be nil to preview without recording.
func WithQuotePreview(quoter QuotePreviewer, history storage.QuoteHistoryStore) MachineOption {
	return func(m *Machine) {
		m.quoter = quoter
		m.quotes = history
	}
}

// NewMachine creates a Machine.
func NewMachine(guard *Guard, swapper SwapRunner, opts ...MachineOption) *Machine {
	m := &Machine{guard: guard, swapper: swapper}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSwap begins (or restarts) the buy dialog. Any previously collected
// data is discarded, whatever state the session was in.
func (m *Machine) StartSwap(ctx context.Context, userID int64, sess *Session) {
	sess.Reset()
	sess.State = StateAwaitingToken
	sess.Side = domain.TradeSideBuy
	m.guard.Deliver(ctx, userID, msgPromptToken)
}

// StartSell begins (or restarts) the sell dialog: same token/amount steps,
// opposite trade direction.
func (m *Machine) StartSell(ctx context.Context, userID int64, sess *Session) {
	sess.Reset()
	sess.State = StateAwaitingToken
	sess.Side = domain.TradeSideSell
	m.guard.Deliver(ctx, userID, msgPromptTokenSell)
}

// Cancel abandons the dialog. Returns false if there was nothing to cancel.
func (m *Machine) Cancel(ctx context.Context, userID int64, sess *Session) bool {
	if sess.State == StateIdle {
		return false
	}
	sess.Reset()
	return true
}

// HandleText feeds free text into the dialog according to the session
// state. Text arriving while idle is ignored.
func (m *Machine) HandleText(ctx context.Context, userID int64, sess *Session, text string) {
	switch sess.State {
	case StateAwaitingToken:
		m.handleToken(ctx, userID, sess, text)
	case StateAwaitingAmount:
		m.handleAmount(ctx, userID, sess, text)
	}
}

func (m *Machine) handleToken(ctx context.Context, userID int64, sess *Session, text string) {
	if !solana.IsValidPublicKey(text) {
		// Stay put; the user can retry as often as they like.
		m.guard.Deliver(ctx, userID, msgInvalidToken)
		return
	}

	sess.TokenMint = text
	sess.State = StateAwaitingAmount

	if sess.Side == domain.TradeSideSell {
		m.guard.Deliver(ctx, userID, msgPromptAmountSell)
		return
	}

	if preview := m.quotePreview(ctx, text); preview != "" {
		m.guard.Deliver(ctx, userID, preview)
	}
	m.guard.Deliver(ctx, userID, msgPromptAmount)
}

func (m *Machine) handleAmount(ctx context.Context, userID int64, sess *Session, text string) {
	if !isPositiveAmount(text) {
		// Malformed amount is retried in place, session left untouched.
		m.guard.Deliver(ctx, userID, msgInvalidAmount)
		return
	}

	// The session is consumed exactly once: whatever the trade's outcome,
	// it goes back to idle so stale collected data cannot be reused.
	mint := sess.TokenMint
	side := sess.Side
	defer sess.Reset()

	var err error
	if side == domain.TradeSideSell {
		_, err = m.swapper.ExecuteSell(ctx, userID, mint, text)
	} else {
		_, err = m.swapper.ExecuteSwap(ctx, userID, mint, text)
	}
	if err != nil {
		log.Printf("bot: user %d: %s: %v", userID, side, err)
	}
}

// quotePreview fetches an indicative 1 SOL quote for the accepted token.
// Best-effort: any failure is logged and the dialog moves on without it.
func (m *Machine) quotePreview(ctx context.Context, mint string) string {
	if m.quoter == nil {
		return ""
	}

	quote, err := m.quoter.Quote(ctx, jupiter.QuoteParams{
		InputMint:  solana.WSOLMint,
		OutputMint: mint,
		Amount:     solana.LamportsPerSOL,
	})
	if err != nil {
		log.Printf("bot: quote preview for %s: %v", mint, err)
		return ""
	}

	m.recordQuote(mint, quote)
	return fmt.Sprintf("Current quote: 1 SOL = %d base units of this token (price impact %.2f%%).",
		quote.OutAmount, quote.PriceImpactPct*100)
}

// recordQuote persists the preview in the background for later analysis.
func (m *Machine) recordQuote(mint string, quote *jupiter.QuoteResponse) {
	if m.quotes == nil {
		return
	}

	point := &domain.QuotePoint{
		Mint:           mint,
		InLamports:     solana.LamportsPerSOL,
		OutAmount:      quote.OutAmount,
		PriceImpactPct: quote.PriceImpactPct,
		SwapUSDValue:   quote.SwapUSDValue,
		TimestampMs:    time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.quotes.Insert(ctx, point); err != nil {
			log.Printf("bot: record quote for %s: %v", mint, err)
		}
	}()
}

// isPositiveAmount reports whether s is a well-formed, strictly positive
// decimal SOL amount. Amounts that truncate to zero lamports still pass;
// the executor is the judge of whether they are spendable.
func isPositiveAmount(s string) bool {
	if _, err := solana.ToLamports(s); err != nil {
		return false
	}
	for _, c := range s {
		if c >= '1' && c <= '9' {
			return true
		}
	}
	return false
}
