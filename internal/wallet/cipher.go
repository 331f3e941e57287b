package wallet

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Envelope layout: version byte, salt, nonce, ciphertext.
const (
	cipherVersion = 0x01
	saltSize      = 16

	// Argon2id parameters.
	kdfTime     = 2
	kdfMemoryKB = 64 * 1024
	kdfThreads  = 4
	kdfKeyLen   = chacha20poly1305.KeySize
)

var (
	// ErrCipherAuth is returned when decryption fails authentication,
	// usually a wrong passphrase.
	ErrCipherAuth = errors.New("wallet cipher: authentication failed")

	// ErrCipherInvalid is returned for malformed envelopes.
	ErrCipherInvalid = errors.New("wallet cipher: invalid envelope")
)

// Cipher encrypts secret keys at rest with XChaCha20-Poly1305 under an
// Argon2id-derived key.
type Cipher struct {
	passphrase []byte
}

// NewCipher creates a cipher from a passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase must not be empty")
	}
	return &Cipher{passphrase: []byte(passphrase)}, nil
}

// Encrypt seals plaintext into a self-describing envelope.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := c.deriveKey(salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, cipherVersion)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt opens an envelope produced by Encrypt.
func (c *Cipher) Decrypt(envelope []byte) ([]byte, error) {
	header := 1 + saltSize + chacha20poly1305.NonceSizeX
	if len(envelope) < header {
		return nil, ErrCipherInvalid
	}
	if envelope[0] != cipherVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCipherInvalid, envelope[0])
	}
	salt := envelope[1 : 1+saltSize]
	nonce := envelope[1+saltSize : header]

	key := c.deriveKey(salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, envelope[header:], nil)
	if err != nil {
		return nil, ErrCipherAuth
	}
	return plaintext, nil
}

func (c *Cipher) deriveKey(salt []byte) []byte {
	return argon2.IDKey(c.passphrase, salt, kdfTime, kdfMemoryKB, kdfThreads, kdfKeyLen)
}
