package domain

// QuotePoint is one observed aggregator quote for a mint.
// Corresponds to quote_history table in ClickHouse.
type QuotePoint struct {
	Mint           string  // quoted token mint address
	InLamports     uint64  // input amount the quote was requested for
	OutAmount      uint64  // output amount in the token's base units
	PriceImpactPct float64 // aggregator-reported price impact, percent
	SwapUSDValue   float64 // USD value of the quoted swap, 0 if unknown
	TimestampMs    int64   // Unix timestamp in milliseconds
}
