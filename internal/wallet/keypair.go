// Package wallet handles signing key material: decoding, generation,
// encrypted storage, and scoped acquisition with guaranteed zeroing.
package wallet

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-swap-bot/internal/solana"
)

// Secret key encodings accepted by NewKeypairFromBase58.
const (
	secretKeyLength = ed25519.PrivateKeySize // 64: seed ‖ public key
	seedLength      = ed25519.SeedSize       // 32
)

// Keypair is an ed25519 signing keypair. Zero must be called when the
// caller is done with it; Acquire-style helpers do this automatically.
type Keypair struct {
	priv ed25519.PrivateKey
	pub  string
}

// NewKeypairFromBase58 decodes a base58 secret key. Both the 64-byte
// secret-key form and the bare 32-byte seed are accepted, matching common
// wallet exports.
func NewKeypairFromBase58(encoded string) (*Keypair, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	defer zeroBytes(raw)
	return NewKeypairFromBytes(raw)
}

// NewKeypairFromBytes builds a keypair from raw secret material. The input
// is copied; the caller keeps ownership of raw.
func NewKeypairFromBytes(raw []byte) (*Keypair, error) {
	var priv ed25519.PrivateKey
	switch len(raw) {
	case seedLength:
		priv = ed25519.NewKeyFromSeed(raw)
	case secretKeyLength:
		derived := ed25519.NewKeyFromSeed(raw[:seedLength])
		if !bytes.Equal(derived[seedLength:], raw[seedLength:]) {
			return nil, fmt.Errorf("secret key public half does not match seed")
		}
		priv = derived
	default:
		return nil, fmt.Errorf("secret key must be %d or %d bytes, got %d", seedLength, secretKeyLength, len(raw))
	}

	pub := priv.Public().(ed25519.PublicKey)
	if !solana.IsOnCurve(pub) {
		return nil, fmt.Errorf("derived public key is not on the ed25519 curve")
	}

	return &Keypair{priv: priv, pub: base58.Encode(pub)}, nil
}

// GenerateKeypair creates a fresh random keypair.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &Keypair{priv: priv, pub: base58.Encode(pub)}, nil
}

// PublicKey returns the base58 wallet address.
func (k *Keypair) PublicKey() string {
	return k.pub
}

// Sign signs msg and returns the 64-byte signature.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// SecretBytes returns the 64-byte secret key. The returned slice aliases
// the keypair's material and is wiped by Zero.
func (k *Keypair) SecretBytes() []byte {
	return k.priv
}

// Zero wipes the secret material. The keypair must not be used afterwards.
func (k *Keypair) Zero() {
	zeroBytes(k.priv)
	k.priv = nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
