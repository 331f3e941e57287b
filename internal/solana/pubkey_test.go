package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
)

func TestParsePublicKey_Valid(t *testing.T) {
	decoded, err := ParsePublicKey(WSOLMint)
	if err != nil {
		t.Fatalf("ParsePublicKey(%q): %v", WSOLMint, err)
	}
	if len(decoded) != PublicKeyLength {
		t.Errorf("expected %d bytes, got %d", PublicKeyLength, len(decoded))
	}
}

func TestParsePublicKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-an-address",          // '-' is not a base58 character
		"abc",                     // decodes to fewer than 32 bytes
		"0OIl",                     // excluded base58 characters
		"So1111111111111111111112", // too short
	}
	for _, in := range cases {
		if IsValidPublicKey(in) {
			t.Errorf("IsValidPublicKey(%q) = true, want false", in)
		}
	}
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if !IsOnCurve(pub) {
		t.Errorf("generated ed25519 public key should be on curve")
	}

	if IsOnCurve(make([]byte, 16)) {
		t.Error("short input should not be on curve")
	}
}

func TestIsOnCurve_RoundTripsBase58(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	encoded := base58.Encode(pub)
	decoded, err := ParsePublicKey(encoded)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if !IsOnCurve(decoded) {
		t.Error("round-tripped key should be on curve")
	}
}
