package postgres

import (
	"context"
	"fmt"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Insert appends a trade record and assigns its ID.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.UserID == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_records (
			user_id, side, mint, amount, amount_base_units,
			status, signature, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	// lamports fit BIGINT: 2^63-1 lamports is ~9.2e9 SOL, above total supply
	err := s.pool.QueryRow(ctx, query,
		t.UserID, t.Side, t.Mint, t.Amount, int64(t.AmountBaseUnits),
		t.Status, t.Signature, t.Error, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's trades, newest first, at most limit.
func (s *TradeRecordStore) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.TradeRecord, error) {
	query := `
		SELECT id, user_id, side, mint, amount, amount_base_units,
		       status, signature, error, created_at
		FROM trade_records
		WHERE user_id = $1
		ORDER BY id DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade records: %w", err)
	}
	defer rows.Close()

	var out []*domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var units int64
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Side, &t.Mint, &t.Amount, &units,
			&t.Status, &t.Signature, &t.Error, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		t.AmountBaseUnits = uint64(units)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return out, nil
}
