package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// QuoteHistoryStore implements storage.QuoteHistoryStore using ClickHouse.
// Quote observations are high-volume, append-only, and queried by mint,
// which maps onto a MergeTree ordered by (mint, timestamp_ms).
type QuoteHistoryStore struct {
	conn *Conn
}

// NewQuoteHistoryStore creates a new QuoteHistoryStore.
func NewQuoteHistoryStore(conn *Conn) *QuoteHistoryStore {
	return &QuoteHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)

// Insert appends an observed quote.
func (s *QuoteHistoryStore) Insert(ctx context.Context, q *domain.QuotePoint) error {
	if q == nil || q.Mint == "" {
		return storage.ErrInvalidInput
	}
	ts := q.TimestampMs
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO quote_history (
			mint, timestamp_ms, in_lamports, out_amount, price_impact_pct, swap_usd_value
		) VALUES (?, ?, ?, ?, ?, ?)
	`, q.Mint, uint64(ts), q.InLamports, q.OutAmount, q.PriceImpactPct, q.SwapUSDValue)
	if err != nil {
		return fmt.Errorf("insert quote point: %w", err)
	}
	return nil
}

// GetByMint retrieves quotes for a mint, newest first, at most limit.
func (s *QuoteHistoryStore) GetByMint(ctx context.Context, mint string, limit int) ([]*domain.QuotePoint, error) {
	query := `
		SELECT mint, timestamp_ms, in_lamports, out_amount, price_impact_pct, swap_usd_value
		FROM quote_history
		WHERE mint = ?
		ORDER BY timestamp_ms DESC
	`
	args := []interface{}{mint}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, uint64(limit))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quote history: %w", err)
	}
	defer rows.Close()

	var out []*domain.QuotePoint
	for rows.Next() {
		var q domain.QuotePoint
		var ts uint64
		if err := rows.Scan(&q.Mint, &ts, &q.InLamports, &q.OutAmount, &q.PriceImpactPct, &q.SwapUSDValue); err != nil {
			return nil, fmt.Errorf("scan quote point: %w", err)
		}
		q.TimestampMs = int64(ts)
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote history: %w", err)
	}
	return out, nil
}
