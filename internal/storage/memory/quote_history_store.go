package memory

import (
	"context"
	"sync"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// QuoteHistoryStore is an in-memory implementation of storage.QuoteHistoryStore.
type QuoteHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.QuotePoint // append order
}

// NewQuoteHistoryStore creates a new in-memory quote history store.
func NewQuoteHistoryStore() *QuoteHistoryStore {
	return &QuoteHistoryStore{}
}

// Compile-time interface check.
var _ storage.QuoteHistoryStore = (*QuoteHistoryStore)(nil)

// Insert appends an observed quote.
func (s *QuoteHistoryStore) Insert(_ context.Context, q *domain.QuotePoint) error {
	if q == nil || q.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *q
	s.data = append(s.data, &cp)
	return nil
}

// GetByMint retrieves quotes for a mint, newest first, at most limit.
func (s *QuoteHistoryStore) GetByMint(_ context.Context, mint string, limit int) ([]*domain.QuotePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.QuotePoint
	for i := len(s.data) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.data[i].Mint == mint {
			cp := *s.data[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
