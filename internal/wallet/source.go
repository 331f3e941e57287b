package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// ErrNoCredential is returned when a credential reference cannot be
// resolved to signing material.
var ErrNoCredential = errors.New("no signing credential configured")

// Source resolves opaque credential references to signing keypairs.
// Acquire returns the keypair together with a release function; release
// zeroes the decoded secret and must be called (usually deferred) as soon
// as the keypair has served its purpose.
type Source interface {
	Acquire(ctx context.Context, ref domain.CredentialRef) (*Keypair, func(), error)
}

// StaticSource serves one fixed keypair, regardless of the reference.
// Used when the operator configures a single wallet via the environment.
type StaticSource struct {
	secret []byte // 64-byte secret key, template for per-acquire copies
}

// NewStaticSource decodes a base58 secret key into a static source.
func NewStaticSource(encoded string) (*StaticSource, error) {
	kp, err := NewKeypairFromBase58(encoded)
	if err != nil {
		return nil, err
	}
	secret := make([]byte, len(kp.SecretBytes()))
	copy(secret, kp.SecretBytes())
	kp.Zero()
	return &StaticSource{secret: secret}, nil
}

// PublicKey returns the address of the configured wallet.
func (s *StaticSource) PublicKey() string {
	kp, _ := NewKeypairFromBytes(s.secret)
	defer kp.Zero()
	return kp.PublicKey()
}

// Acquire returns a fresh copy of the configured keypair.
func (s *StaticSource) Acquire(_ context.Context, _ domain.CredentialRef) (*Keypair, func(), error) {
	kp, err := NewKeypairFromBytes(s.secret)
	if err != nil {
		return nil, nil, err
	}
	return kp, kp.Zero, nil
}

// EmptySource never resolves a credential. It stands in when neither an
// environment wallet nor a wallet store is configured, so that the missing
// credential surfaces as a per-session configuration error rather than a
// startup failure.
type EmptySource struct{}

// Acquire always fails with ErrNoCredential.
func (EmptySource) Acquire(_ context.Context, _ domain.CredentialRef) (*Keypair, func(), error) {
	return nil, nil, ErrNoCredential
}

// StoreSource resolves per-user wallets from a wallet store, decrypting
// the stored secret on each acquisition.
type StoreSource struct {
	store  storage.WalletStore
	cipher *Cipher
}

// NewStoreSource creates a store-backed credential source.
func NewStoreSource(store storage.WalletStore, cipher *Cipher) *StoreSource {
	return &StoreSource{store: store, cipher: cipher}
}

// Acquire loads and decrypts the wallet for ref's user.
func (s *StoreSource) Acquire(ctx context.Context, ref domain.CredentialRef) (*Keypair, func(), error) {
	w, err := s.store.GetByUserID(ctx, ref.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNoCredential
		}
		return nil, nil, fmt.Errorf("load wallet for user %d: %w", ref.UserID, err)
	}

	raw, err := s.cipher.Decrypt(w.EncryptedSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("decrypt wallet for user %d: %w", ref.UserID, err)
	}
	defer zeroBytes(raw)

	kp, err := NewKeypairFromBytes(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode wallet for user %d: %w", ref.UserID, err)
	}
	return kp, kp.Zero, nil
}

// EnsureWallet returns the user's wallet, provisioning a fresh one on
// first contact. created reports whether a new wallet was generated.
func (s *StoreSource) EnsureWallet(ctx context.Context, userID int64) (w *domain.UserWallet, created bool, err error) {
	w, err = s.store.GetByUserID(ctx, userID)
	if err == nil {
		return w, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("load wallet for user %d: %w", userID, err)
	}

	kp, err := GenerateKeypair()
	if err != nil {
		return nil, false, err
	}
	defer kp.Zero()

	encrypted, err := s.cipher.Encrypt(kp.SecretBytes())
	if err != nil {
		return nil, false, fmt.Errorf("encrypt wallet for user %d: %w", userID, err)
	}

	w = &domain.UserWallet{
		UserID:          userID,
		PublicKey:       kp.PublicKey(),
		EncryptedSecret: encrypted,
		CreatedAt:       time.Now().UnixMilli(),
	}
	if err := s.store.Insert(ctx, w); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a provisioning race; the stored wallet wins.
			existing, getErr := s.store.GetByUserID(ctx, userID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("store wallet for user %d: %w", userID, err)
	}
	return w, true, nil
}
