package bot

import (
	"context"
	"log"
	"time"

	"solana-swap-bot/internal/observability"
)

const (
	deliveryAttempts = 3
	deliveryDelay    = 2 * time.Second
)

// Sender performs one outbound send attempt to the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Guard wraps a Sender with a bounded retry policy: up to 3 attempts with a
// fixed 2-second pause between them. A message that still fails is dropped,
// not raised — there is no channel to report a failed report — so callers
// get a boolean and must not assume the user saw the text.
type Guard struct {
	sender   Sender
	attempts int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) bool
	metrics  *observability.Metrics
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardMetrics wires in delivery metrics.
func WithGuardMetrics(m *observability.Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// withSleep replaces the inter-attempt pause, used in tests.
func withSleep(sleep func(ctx context.Context, d time.Duration) bool) GuardOption {
	return func(g *Guard) {
		g.sleep = sleep
	}
}

// NewGuard creates a Guard around sender.
func NewGuard(sender Sender, opts ...GuardOption) *Guard {
	g := &Guard{
		sender:   sender,
		attempts: deliveryAttempts,
		delay:    deliveryDelay,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Deliver sends text to the user, retrying on failure. Returns true once a
// send attempt succeeds, false after all attempts fail or ctx is canceled
// mid-pause.
func (g *Guard) Deliver(ctx context.Context, userID int64, text string) bool {
	var lastErr error
	attempts := 0
	for attempts < g.attempts {
		if attempts > 0 && !g.sleep(ctx, g.delay) {
			break
		}

		attempts++
		g.metrics.RecordDeliveryAttempt()
		lastErr = g.sender.SendMessage(ctx, userID, text)
		if lastErr == nil {
			return true
		}
		log.Printf("delivery: user %d: attempt %d/%d failed: %v", userID, attempts, g.attempts, lastErr)
	}

	log.Printf("delivery: user %d: message dropped after %d of %d attempts: %v", userID, attempts, g.attempts, lastErr)
	g.metrics.RecordDeliveryFailure()
	return false
}

// sleepCtx pauses for d, returning false if ctx is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
