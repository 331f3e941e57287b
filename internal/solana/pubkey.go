package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the byte length of an ed25519 public key.
const PublicKeyLength = 32

// WSOLMint is the wrapped SOL mint address: the input side of buys, the
// output side of sells.
const WSOLMint = "So11111111111111111111111111111111111111112"

// ParsePublicKey validates that s is a public-key-shaped identifier:
// base58 text decoding to exactly 32 bytes. It returns the decoded bytes.
func ParsePublicKey(s string) ([]byte, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(decoded) != PublicKeyLength {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", PublicKeyLength, len(decoded))
	}
	return decoded, nil
}

// IsValidPublicKey reports whether s parses as a public-key-shaped identifier.
func IsValidPublicKey(s string) bool {
	_, err := ParsePublicKey(s)
	return err == nil
}

// IsOnCurve reports whether a 32-byte public key lies on the ed25519 curve.
// Program-derived addresses are intentionally off-curve; wallet signing keys
// must be on-curve.
func IsOnCurve(pub []byte) bool {
	if len(pub) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(pub)
	return err == nil
}
