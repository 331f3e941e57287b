package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"solana-swap-bot/internal/domain"
	"solana-swap-bot/internal/solana"
	"solana-swap-bot/internal/swap"
	"solana-swap-bot/internal/telegram"
	"solana-swap-bot/internal/wallet"
)

const testUserID int64 = 42

// collectingSender records every outbound message, always succeeding.
type collectingSender struct {
	mu    sync.Mutex
	texts []string
}

func (s *collectingSender) SendMessage(_ context.Context, _ int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *collectingSender) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func (s *collectingSender) last() string {
	texts := s.all()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type countingExecutor struct {
	mu    sync.Mutex
	calls []domain.SwapRequest
}

func (e *countingExecutor) Execute(_ context.Context, req domain.SwapRequest, _ *wallet.Keypair) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, req)
	return "testsig", nil
}

type stubSource struct {
	kp *wallet.Keypair
}

func (s *stubSource) Acquire(_ context.Context, _ domain.CredentialRef) (*wallet.Keypair, func(), error) {
	return s.kp, func() {}, nil
}

// stubRPC serves a fixed token balance for sell dialogs.
type stubRPC struct {
	balance  uint64
	decimals uint8
}

func (r *stubRPC) GetBalance(_ context.Context, _ string) (uint64, error) { return 0, nil }
func (r *stubRPC) GetSlot(_ context.Context) (uint64, error)              { return 0, nil }
func (r *stubRPC) SendTransaction(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (r *stubRPC) GetTokenBalance(_ context.Context, _, _ string) (uint64, uint8, error) {
	return r.balance, r.decimals, nil
}

// newTestBot wires a Bot around a real orchestrator with a fake executor and
// an always-succeeding sender, with the retry pause stubbed out.
func newTestBot(t *testing.T) (*Bot, *collectingSender, *countingExecutor, *SessionStore) {
	t.Helper()

	kp, err := wallet.GenerateKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	sender := &collectingSender{}
	guard := NewGuard(sender, withSleep(func(_ context.Context, _ time.Duration) bool { return true }))
	executor := &countingExecutor{}
	rpc := &stubRPC{balance: 10_000_000, decimals: 6}
	orchestrator := swap.New(&stubSource{kp: kp}, executor, guard, swap.WithRPC(rpc))
	sessions := NewSessionStore(nil)

	b := New(Config{
		Guard:    guard,
		Machine:  NewMachine(guard, orchestrator),
		Sessions: sessions,
		Source:   &stubSource{kp: kp},
	})
	return b, sender, executor, sessions
}

func update(id int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: id,
		Message: &telegram.Message{
			MessageID: id,
			From:      &telegram.User{ID: testUserID},
			Chat:      telegram.Chat{ID: testUserID},
			Text:      text,
		},
	}
}

func stateOf(t *testing.T, sessions *SessionStore) State {
	t.Helper()
	var state State
	sessions.Do(testUserID, func(sess *Session) { state = sess.State })
	return state
}

func TestSwapDialogEndToEnd(t *testing.T) {
	b, sender, executor, sessions := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/swap"))
	if got := stateOf(t, sessions); got != StateAwaitingToken {
		t.Fatalf("state after /swap = %v, want awaiting_token", got)
	}
	if sender.last() != msgPromptToken {
		t.Fatalf("prompt = %q", sender.last())
	}

	b.HandleUpdate(ctx, update(2, "not-an-address"))
	if got := stateOf(t, sessions); got != StateAwaitingToken {
		t.Fatalf("state after bad address = %v, want awaiting_token", got)
	}
	if sender.last() != msgInvalidToken {
		t.Fatalf("re-prompt = %q", sender.last())
	}

	b.HandleUpdate(ctx, update(3, solana.WSOLMint))
	if got := stateOf(t, sessions); got != StateAwaitingAmount {
		t.Fatalf("state after valid address = %v, want awaiting_amount", got)
	}
	if sender.last() != msgPromptAmount {
		t.Fatalf("amount prompt = %q", sender.last())
	}

	b.HandleUpdate(ctx, update(4, "-1"))
	if got := stateOf(t, sessions); got != StateAwaitingAmount {
		t.Fatalf("state after bad amount = %v, want awaiting_amount", got)
	}
	if sender.last() != msgInvalidAmount {
		t.Fatalf("re-prompt = %q", sender.last())
	}
	if len(executor.calls) != 0 {
		t.Fatalf("executor called %d times before amount accepted", len(executor.calls))
	}

	b.HandleUpdate(ctx, update(5, "0.25"))
	if len(executor.calls) != 1 {
		t.Fatalf("executor called %d times, want exactly 1", len(executor.calls))
	}
	if executor.calls[0].Amount != 250000000 {
		t.Errorf("Amount = %d, want 250000000", executor.calls[0].Amount)
	}
	if executor.calls[0].OutputMint != solana.WSOLMint {
		t.Errorf("OutputMint = %q", executor.calls[0].OutputMint)
	}
	if got := stateOf(t, sessions); got != StateIdle {
		t.Fatalf("state after swap = %v, want idle", got)
	}
	if !strings.Contains(sender.last(), "https://solscan.io/tx/testsig") {
		t.Errorf("final message = %q, want explorer link", sender.last())
	}
}

func TestSellDialogEndToEnd(t *testing.T) {
	b, sender, executor, sessions := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/sell"))
	if got := stateOf(t, sessions); got != StateAwaitingToken {
		t.Fatalf("state after /sell = %v, want awaiting_token", got)
	}
	if sender.last() != msgPromptTokenSell {
		t.Fatalf("prompt = %q", sender.last())
	}

	const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	b.HandleUpdate(ctx, update(2, usdcMint))
	if sender.last() != msgPromptAmountSell {
		t.Fatalf("amount prompt = %q", sender.last())
	}

	// 2.5 tokens at the stub's 6 decimals, not SOL's 9.
	b.HandleUpdate(ctx, update(3, "2.5"))
	if len(executor.calls) != 1 {
		t.Fatalf("executor called %d times, want exactly 1", len(executor.calls))
	}
	if executor.calls[0].Amount != 2500000 {
		t.Errorf("Amount = %d, want 2500000", executor.calls[0].Amount)
	}
	if executor.calls[0].InputMint != usdcMint || executor.calls[0].OutputMint != solana.WSOLMint {
		t.Errorf("mints = %q -> %q, want token -> SOL", executor.calls[0].InputMint, executor.calls[0].OutputMint)
	}
	if got := stateOf(t, sessions); got != StateIdle {
		t.Fatalf("state after sell = %v, want idle", got)
	}
	if !strings.Contains(sender.last(), "Sell successful!") {
		t.Errorf("final message = %q", sender.last())
	}
}

func TestFreeTextWhileIdleIgnored(t *testing.T) {
	b, sender, executor, sessions := newTestBot(t)

	b.HandleUpdate(context.Background(), update(1, "hello there"))

	if got := stateOf(t, sessions); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
	if len(sender.all()) != 0 {
		t.Errorf("messages sent for idle free text: %v", sender.all())
	}
	if len(executor.calls) != 0 {
		t.Errorf("executor called for idle free text")
	}
}

func TestCancelMidDialog(t *testing.T) {
	b, sender, _, sessions := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/swap"))
	b.HandleUpdate(ctx, update(2, "/cancel"))

	if got := stateOf(t, sessions); got != StateIdle {
		t.Errorf("state after /cancel = %v, want idle", got)
	}
	if sender.last() != "Canceled." {
		t.Errorf("message = %q", sender.last())
	}

	b.HandleUpdate(ctx, update(3, "/cancel"))
	if sender.last() != "Nothing to cancel." {
		t.Errorf("message = %q", sender.last())
	}
}

func TestStartSwapDiscardsCollectedData(t *testing.T) {
	b, _, _, sessions := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/swap"))
	b.HandleUpdate(ctx, update(2, solana.WSOLMint))

	// Restarting mid-dialog throws away the collected token.
	b.HandleUpdate(ctx, update(3, "/swap"))

	sessions.Do(testUserID, func(sess *Session) {
		if sess.State != StateAwaitingToken {
			t.Errorf("state = %v, want awaiting_token", sess.State)
		}
		if sess.TokenMint != "" {
			t.Errorf("TokenMint = %q, want cleared", sess.TokenMint)
		}
	})
}

type fakeProvisioner struct {
	mu      sync.Mutex
	created map[int64]bool
}

func (p *fakeProvisioner) EnsureWallet(_ context.Context, userID int64) (*domain.UserWallet, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created == nil {
		p.created = make(map[int64]bool)
	}
	first := !p.created[userID]
	p.created[userID] = true
	return &domain.UserWallet{UserID: userID, PublicKey: "provisioned-pk"}, first, nil
}

func TestStartProvisionsWallet(t *testing.T) {
	b, sender, _, _ := newTestBot(t)
	b.cfg.Provisioner = &fakeProvisioner{}
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/start"))
	if !strings.Contains(sender.last(), "Created a wallet for you") {
		t.Fatalf("first /start = %q, want creation notice", sender.last())
	}

	b.HandleUpdate(ctx, update(2, "/start"))
	if !strings.Contains(sender.last(), "Your wallet:") {
		t.Errorf("second /start = %q, want existing wallet", sender.last())
	}
}

type panickingRunner struct{}

func (panickingRunner) ExecuteSwap(_ context.Context, _ int64, _, _ string) (*domain.SwapResult, error) {
	panic("executor blew up")
}

func (panickingRunner) ExecuteSell(_ context.Context, _ int64, _, _ string) (*domain.SwapResult, error) {
	panic("executor blew up")
}

func TestHandlerPanicRecovered(t *testing.T) {
	sender := &collectingSender{}
	guard := NewGuard(sender, withSleep(func(_ context.Context, _ time.Duration) bool { return true }))
	sessions := NewSessionStore(nil)
	kp, err := wallet.GenerateKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	b := New(Config{
		Guard:    guard,
		Machine:  NewMachine(guard, panickingRunner{}),
		Sessions: sessions,
		Source:   &stubSource{kp: kp},
	})
	ctx := context.Background()

	b.HandleUpdate(ctx, update(1, "/swap"))
	b.HandleUpdate(ctx, update(2, solana.WSOLMint))
	b.HandleUpdate(ctx, update(3, "0.5")) // must not crash the test binary

	if sender.last() != "Something went wrong. Please try again." {
		t.Errorf("message after panic = %q", sender.last())
	}
}

func TestIsPositiveAmount(t *testing.T) {
	accept := []string{"0.5", "1", "0.0000000015", "2.", ".25", " 1"}
	for _, s := range accept {
		if !isPositiveAmount(s) {
			t.Errorf("isPositiveAmount(%q) = false, want true", s)
		}
	}

	reject := []string{"", "0", "0.0", "-1", "-0.5", "abc", "1.2.3", "1e9"}
	for _, s := range reject {
		if isPositiveAmount(s) {
			t.Errorf("isPositiveAmount(%q) = true, want false", s)
		}
	}
}
