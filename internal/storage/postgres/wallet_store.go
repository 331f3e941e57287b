package postgres

import (
	"context"
	"fmt"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet. Returns ErrDuplicateKey if user_id exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.UserWallet) error {
	if w == nil || w.UserID == 0 || w.PublicKey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO user_wallets (user_id, public_key, encrypted_secret, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, query, w.UserID, w.PublicKey, w.EncryptedSecret, w.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID retrieves a wallet by user. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByUserID(ctx context.Context, userID int64) (*domain.UserWallet, error) {
	query := `
		SELECT user_id, public_key, encrypted_secret, created_at
		FROM user_wallets
		WHERE user_id = $1
	`
	var w domain.UserWallet
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.PublicKey, &w.EncryptedSecret, &w.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}
