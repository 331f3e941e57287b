package storage

import (
	"context"

	"solana-swap-bot/internal/domain"
)

// WalletStore provides access to user_wallets storage.
type WalletStore interface {
	// Insert adds a new wallet. Returns ErrDuplicateKey if user_id exists.
	Insert(ctx context.Context, w *domain.UserWallet) error

	// GetByUserID retrieves a wallet by user. Returns ErrNotFound if not exists.
	GetByUserID(ctx context.Context, userID int64) (*domain.UserWallet, error)
}

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert appends a trade record.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetByUserID retrieves a user's trades, newest first, at most limit.
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.TradeRecord, error)
}

// QuoteHistoryStore provides access to quote_history storage.
type QuoteHistoryStore interface {
	// Insert appends an observed quote.
	Insert(ctx context.Context, q *domain.QuotePoint) error

	// GetByMint retrieves quotes for a mint, newest first, at most limit.
	GetByMint(ctx context.Context, mint string, limit int) ([]*domain.QuotePoint, error)
}
