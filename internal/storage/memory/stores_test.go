package memory

import (
	"context"
	"errors"
	"testing"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/storage"
)

func TestWalletStoreInsertAndGet(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	w := &domain.UserWallet{
		UserID:          42,
		PublicKey:       "pubkey42",
		EncryptedSecret: []byte{1, 2, 3},
		CreatedAt:       1700000000000,
	}
	if err := s.Insert(ctx, w); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.GetByUserID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.PublicKey != "pubkey42" {
		t.Errorf("PublicKey = %q", got.PublicKey)
	}

	// The store must hold its own copy of the secret.
	got.EncryptedSecret[0] = 0xff
	again, err := s.GetByUserID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if again.EncryptedSecret[0] != 1 {
		t.Error("stored secret aliased by returned copy")
	}
}

func TestWalletStoreDuplicate(t *testing.T) {
	s := NewWalletStore()
	ctx := context.Background()

	w := &domain.UserWallet{UserID: 1, PublicKey: "pk", EncryptedSecret: []byte{1}}
	if err := s.Insert(ctx, w); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, w); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("second Insert error = %v, want ErrDuplicateKey", err)
	}
}

func TestWalletStoreNotFound(t *testing.T) {
	s := NewWalletStore()
	if _, err := s.GetByUserID(context.Background(), 99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestTradeRecordStoreNewestFirst(t *testing.T) {
	s := NewTradeRecordStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		record := &domain.TradeRecord{
			UserID:          7,
			Side:            domain.TradeSideBuy,
			Mint:            "mint",
			Amount:          "0.5",
			AmountBaseUnits: uint64(i),
			Status:          domain.TradeStatusSuccess,
		}
		if err := s.Insert(ctx, record); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		if record.ID == 0 {
			t.Fatalf("Insert %d did not assign an ID", i)
		}
	}
	if err := s.Insert(ctx, &domain.TradeRecord{UserID: 8, Mint: "other"}); err != nil {
		t.Fatalf("Insert other user: %v", err)
	}

	got, err := s.GetByUserID(ctx, 7, 3)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].AmountBaseUnits != 5 || got[2].AmountBaseUnits != 3 {
		t.Errorf("order = %d,%d,%d, want newest first 5,4,3",
			got[0].AmountBaseUnits, got[1].AmountBaseUnits, got[2].AmountBaseUnits)
	}
}

func TestQuoteHistoryStoreGetByMint(t *testing.T) {
	s := NewQuoteHistoryStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		point := &domain.QuotePoint{
			Mint:        "mintA",
			InLamports:  1000000000,
			OutAmount:   uint64(i * 100),
			TimestampMs: int64(i),
		}
		if err := s.Insert(ctx, point); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := s.Insert(ctx, &domain.QuotePoint{Mint: "mintB", OutAmount: 999}); err != nil {
		t.Fatalf("Insert mintB: %v", err)
	}

	got, err := s.GetByMint(ctx, "mintA", 0)
	if err != nil {
		t.Fatalf("GetByMint: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if got[0].OutAmount != 300 {
		t.Errorf("first point OutAmount = %d, want newest (300)", got[0].OutAmount)
	}
}

func TestInsertInvalidInput(t *testing.T) {
	ctx := context.Background()

	if err := NewWalletStore().Insert(ctx, &domain.UserWallet{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("wallet error = %v, want ErrInvalidInput", err)
	}
	if err := NewTradeRecordStore().Insert(ctx, &domain.TradeRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("trade error = %v, want ErrInvalidInput", err)
	}
	if err := NewQuoteHistoryStore().Insert(ctx, &domain.QuotePoint{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("quote error = %v, want ErrInvalidInput", err)
	}
}
