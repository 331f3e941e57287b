package memory

import (
	"context"
	"sync"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
type TradeRecordStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.TradeRecord // append order
}

// NewTradeRecordStore creates a new in-memory trade record store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Insert appends a trade record and assigns its ID.
func (s *TradeRecordStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.UserID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	cp.ID = s.nextID
	s.nextID++
	s.data = append(s.data, &cp)
	t.ID = cp.ID
	return nil
}

// GetByUserID retrieves a user's trades, newest first, at most limit.
func (s *TradeRecordStore) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradeRecord
	for i := len(s.data) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.data[i].UserID == userID {
			cp := *s.data[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
