package memory

import (
	"context"
	"sync"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.UserWallet
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[int64]*domain.UserWallet),
	}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if the user already has one.
func (s *WalletStore) Insert(_ context.Context, w *domain.UserWallet) error {
	if w == nil || w.UserID == 0 || w.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.UserID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *w
	cp.EncryptedSecret = append([]byte(nil), w.EncryptedSecret...)
	s.data[w.UserID] = &cp
	return nil
}

// GetByUserID retrieves a wallet by user. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByUserID(_ context.Context, userID int64) (*domain.UserWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *w
	cp.EncryptedSecret = append([]byte(nil), w.EncryptedSecret...)
	return &cp, nil
}
