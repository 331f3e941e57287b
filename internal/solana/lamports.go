package solana

import (
	"fmt"
	"strings"
)

// LamportsPerSOL is the number of base units in one SOL.
const LamportsPerSOL = 1_000_000_000

// solDecimals is the number of fractional digits carried by the native token.
const solDecimals = 9

// ToLamports converts a decimal SOL amount, given as text, to lamports.
// The conversion is exact base-10 truncation: fractional digits beyond the
// ninth are discarded, never rounded ("0.0000000015" → 1).
func ToLamports(amount string) (uint64, error) {
	return ToBaseUnits(amount, solDecimals)
}

// ToBaseUnits converts a decimal token amount, given as text, to base units
// of a mint carrying the given number of fractional digits. Exact base-10
// truncation: going through float64 would misplace amounts near
// representation boundaries, so the decimal string is shifted digit by digit
// instead.
func ToBaseUnits(amount string, decimals int) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if s[0] == '+' {
		s = s[1:]
	}
	if s == "" || s[0] == '-' {
		return 0, fmt.Errorf("amount must be positive: %q", amount)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("invalid amount: %q", amount)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, fmt.Errorf("invalid amount: %q", amount)
	}

	// Shift the decimal point `decimals` places right, truncating the rest.
	if len(fracPart) < decimals {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	} else {
		fracPart = fracPart[:decimals]
	}

	var units uint64
	for _, c := range intPart + fracPart {
		d := uint64(c - '0')
		if units > (^uint64(0)-d)/10 {
			return 0, fmt.Errorf("amount overflows base units: %q", amount)
		}
		units = units*10 + d
	}
	return units, nil
}

// FromLamports formats a lamport amount as a decimal SOL string with
// trailing zeros trimmed.
func FromLamports(lamports uint64) string {
	return FromBaseUnits(lamports, solDecimals)
}

// FromBaseUnits formats a base-unit amount as a decimal string for a mint
// with the given number of fractional digits, trailing zeros trimmed.
func FromBaseUnits(units uint64, decimals int) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", units)
	}
	scale := uint64(1)
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	whole := units / scale
	frac := units % scale
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	s := strings.TrimRight(fmt.Sprintf("%0*d", decimals, frac), "0")
	return fmt.Sprintf("%d.%s", whole, s)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
