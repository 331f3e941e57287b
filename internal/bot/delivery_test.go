package bot

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

type scriptedSender struct {
	errs  []error // one per attempt, nil means success
	calls int
}

func (s *scriptedSender) SendMessage(_ context.Context, _ int64, _ string) error {
	defer func() { s.calls++ }()
	if s.calls < len(s.errs) {
		return s.errs[s.calls]
	}
	return nil
}

func newTestGuard(sender Sender, sleeps *[]time.Duration) *Guard {
	return NewGuard(sender, withSleep(func(_ context.Context, d time.Duration) bool {
		*sleeps = append(*sleeps, d)
		return true
	}))
}

func TestDeliverFirstAttempt(t *testing.T) {
	sender := &scriptedSender{}
	var sleeps []time.Duration
	g := newTestGuard(sender, &sleeps)

	if !g.Deliver(context.Background(), 1, "hi") {
		t.Fatal("Deliver returned false")
	}
	if sender.calls != 1 {
		t.Errorf("send attempts = %d, want 1", sender.calls)
	}
	if len(sleeps) != 0 {
		t.Errorf("slept %d times, want 0", len(sleeps))
	}
}

func TestDeliverSecondAttemptStopsRetrying(t *testing.T) {
	sender := &scriptedSender{errs: []error{errors.New("connection reset"), nil}}
	var sleeps []time.Duration
	g := newTestGuard(sender, &sleeps)

	if !g.Deliver(context.Background(), 1, "hi") {
		t.Fatal("Deliver returned false")
	}
	if sender.calls != 2 {
		t.Errorf("send attempts = %d, want 2 (no third attempt after success)", sender.calls)
	}
	if len(sleeps) != 1 || sleeps[0] != 2*time.Second {
		t.Errorf("sleeps = %v, want one 2s pause", sleeps)
	}
}

func TestDeliverExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	sender := &scriptedSender{errs: []error{boom, boom, boom}}
	var sleeps []time.Duration
	g := newTestGuard(sender, &sleeps)

	if g.Deliver(context.Background(), 1, "hi") {
		t.Fatal("Deliver returned true after all attempts failed")
	}
	if sender.calls != 3 {
		t.Errorf("send attempts = %d, want 3", sender.calls)
	}
	if len(sleeps) != 2 {
		t.Errorf("slept %d times, want 2", len(sleeps))
	}
}

func TestDeliverCanceledDuringPause(t *testing.T) {
	sender := &scriptedSender{errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")}}
	g := NewGuard(sender, withSleep(func(_ context.Context, _ time.Duration) bool {
		return false // context canceled mid-pause
	}))

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if g.Deliver(context.Background(), 1, "hi") {
		t.Fatal("Deliver returned true")
	}
	if sender.calls != 1 {
		t.Errorf("send attempts = %d, want 1 (no retry after cancellation)", sender.calls)
	}
	// The drop log reports how many attempts actually ran, not the cap.
	if !strings.Contains(buf.String(), "dropped after 1 of 3 attempts") {
		t.Errorf("drop log = %q, want actual attempt count", buf.String())
	}
}

func TestDeliverExhaustionLogsAttemptCount(t *testing.T) {
	boom := errors.New("boom")
	sender := &scriptedSender{errs: []error{boom, boom, boom}}
	var sleeps []time.Duration
	g := newTestGuard(sender, &sleeps)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if g.Deliver(context.Background(), 1, "hi") {
		t.Fatal("Deliver returned true")
	}
	if !strings.Contains(buf.String(), "dropped after 3 of 3 attempts") {
		t.Errorf("drop log = %q, want all attempts counted", buf.String())
	}
}
