package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/wallet"
)

type fakeRPC struct {
	sentTx    string
	signature string
	err       error
}

func (f *fakeRPC) GetBalance(ctx context.Context, address string) (uint64, error) {
	return 0, nil
}

func (f *fakeRPC) GetTokenBalance(ctx context.Context, owner, mint string) (uint64, uint8, error) {
	return 0, 0, nil
}

func (f *fakeRPC) GetSlot(ctx context.Context) (uint64, error) {
	return 0, nil
}

func (f *fakeRPC) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	f.sentTx = txBase64
	return f.signature, f.err
}

func TestExecutorExecute(t *testing.T) {
	kp, err := wallet.GenerateKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	pub, err := base58.Decode(kp.PublicKey())
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	unsignedTx := buildLegacyTx(t, pub)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(`{"inAmount":"500000000","outAmount":"42","priceImpactPct":"0.01","swapUsdValue":"83.0"}`))
		case "/swap":
			w.Write([]byte(`{"swapTransaction": "` + unsignedTx + `"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	rpc := &fakeRPC{signature: "5signature"}
	exec := NewExecutor(NewClient(srv.URL), rpc)

	sig, err := exec.Execute(context.Background(), domain.SwapRequest{
		InputMint:  solana.WSOLMint,
		OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:     500000000,
	}, kp)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sig != "5signature" {
		t.Errorf("signature = %q, want %q", sig, "5signature")
	}
	if rpc.sentTx == "" {
		t.Fatal("no transaction submitted")
	}
	if rpc.sentTx == unsignedTx {
		t.Error("submitted transaction was not signed")
	}
}

func TestExecutorQuoteErrorStopsSwap(t *testing.T) {
	kp, err := wallet.GenerateKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	swapCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "Token not tradable"}`))
		case "/swap":
			swapCalled = true
		}
	}))
	defer srv.Close()

	rpc := &fakeRPC{}
	exec := NewExecutor(NewClient(srv.URL), rpc)

	_, err = exec.Execute(context.Background(), domain.SwapRequest{
		InputMint:  solana.WSOLMint,
		OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:     1,
	}, kp)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Token not tradable" {
		t.Errorf("error = %q, want quote error text verbatim", err.Error())
	}
	if swapCalled {
		t.Error("swap endpoint called after quote failure")
	}
	if rpc.sentTx != "" {
		t.Error("transaction submitted after quote failure")
	}
}
