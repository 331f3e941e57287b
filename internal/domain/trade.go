package domain

// Trade status constants
const (
	TradeStatusSuccess = "success"
	TradeStatusError   = "error"
)

// Trade side constants
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// TradeRecord is one executed (or attempted) swap.
// Corresponds to trade_records table in PostgreSQL.
type TradeRecord struct {
	ID              int64  // BIGSERIAL primary key, 0 until inserted
	UserID          int64  // chat user identifier
	Side            string // "buy" | "sell"
	Mint            string // token mint address traded against SOL
	Amount          string // decimal amount as entered: SOL for buys, tokens for sells
	AmountBaseUnits uint64 // converted amount in base units of the spent mint
	Status          string // "success" | "error"
	Signature       string // transaction signature, empty on error
	Error           string // executor error text verbatim, empty on success
	CreatedAt       int64  // Unix timestamp in milliseconds
}
