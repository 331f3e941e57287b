package solana

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WatcherConfig configures BalanceWatcher reconnect behavior.
type WatcherConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWatcherConfig returns default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       120 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// BalanceWatcher keeps a cached lamport balance for a single account via
// an accountSubscribe WebSocket subscription. The cache answers /balance
// without an RPC round trip; callers fall back to RPC while the cache is
// cold or the connection is down.
type BalanceWatcher struct {
	endpoint string
	address  string
	config   WatcherConfig

	mu       sync.RWMutex
	lamports uint64
	seen     bool
}

// NewBalanceWatcher creates a watcher for the given account. Run must be
// called to start it.
func NewBalanceWatcher(endpoint, address string, config *WatcherConfig) *BalanceWatcher {
	cfg := DefaultWatcherConfig()
	if config != nil {
		cfg = *config
	}
	return &BalanceWatcher{
		endpoint: endpoint,
		address:  address,
		config:   cfg,
	}
}

// Balance returns the cached lamport balance. ok is false until the first
// notification arrives.
func (w *BalanceWatcher) Balance() (lamports uint64, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lamports, w.seen
}

// Run subscribes and consumes notifications until ctx is cancelled,
// reconnecting with capped exponential backoff on any failure.
func (w *BalanceWatcher) Run(ctx context.Context) {
	delay := w.config.ReconnectDelay
	for {
		err := w.watchOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("balance watcher: connection lost (%v), reconnecting in %s", err, delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > w.config.MaxReconnectDelay {
			delay = w.config.MaxReconnectDelay
		}
	}
}

// wsRequest is a JSON-RPC 2.0 WebSocket request.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// accountNotification carries the subset of accountNotification we consume.
type accountNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Lamports uint64 `json:"lamports"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

func (w *BalanceWatcher) watchOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: w.config.WriteTimeout}
	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	sub := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "accountSubscribe",
		Params: []interface{}{
			w.address,
			map[string]string{"encoding": "base64", "commitment": "confirmed"},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	for {
		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var note accountNotification
		if err := json.Unmarshal(msg, &note); err != nil {
			continue
		}
		if note.Method != "accountNotification" {
			continue
		}

		w.mu.Lock()
		w.lamports = note.Params.Result.Value.Lamports
		w.seen = true
		w.mu.Unlock()
	}
}
