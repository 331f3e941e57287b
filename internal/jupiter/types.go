// Package jupiter integrates the Jupiter swap aggregator: quoting, swap
// transaction building, signing, and submission.
package jupiter

import (
	"encoding/json"
	"strconv"
)

// QuoteParams describe a quote request.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // input amount in base units
	SlippageBps int
}

// QuoteResponse holds an aggregator quote. Raw keeps the exact response
// bytes: the swap endpoint expects the quote echoed back unmodified.
type QuoteResponse struct {
	Raw            json.RawMessage
	InAmount       uint64
	OutAmount      uint64
	PriceImpactPct float64
	SwapUSDValue   float64
}

// quotePayload is the subset of quote fields the bot reads. Jupiter encodes
// amounts as decimal strings.
type quotePayload struct {
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	SwapUSDValue   string `json:"swapUsdValue"`
}

func parseQuote(raw []byte) (*QuoteResponse, error) {
	var p quotePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	q := &QuoteResponse{Raw: append(json.RawMessage(nil), raw...)}
	q.InAmount, _ = strconv.ParseUint(p.InAmount, 10, 64)
	q.OutAmount, _ = strconv.ParseUint(p.OutAmount, 10, 64)
	q.PriceImpactPct, _ = strconv.ParseFloat(p.PriceImpactPct, 64)
	q.SwapUSDValue, _ = strconv.ParseFloat(p.SwapUSDValue, 64)
	return q, nil
}

// swapRequest is the swap transaction build request.
type swapRequest struct {
	UserPublicKey       string          `json:"userPublicKey"`
	WrapUnwrapSOL       bool            `json:"wrapUnwrapSOL"`
	QuoteResponse       json.RawMessage `json:"quoteResponse"`
	AsLegacyTransaction bool            `json:"asLegacyTransaction"`
	PlatformFeeBps      int             `json:"platformFeeBps,omitempty"`
	PlatformFeeAccount  string          `json:"platformFeeAccount,omitempty"`
}

// swapResponse is the swap transaction build response.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	Error           string `json:"error"`
}

// apiError is the error shape returned by Jupiter endpoints.
type apiError struct {
	Error string `json:"error"`
}
