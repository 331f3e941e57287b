package telegram

import (
	"context"
	"log"
	"sync"
	"time"
)

const pollErrorBackoff = 3 * time.Second

// Handler processes one inbound update. Invoked off the polling goroutine,
// so a slow handler for one chat never stalls polling or other chats.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller drives the getUpdates loop and fans updates out to a handler. One
// chat's updates are handled strictly in arrival order; different chats run
// concurrently.
type Poller struct {
	client  *Client
	handler Handler

	mu     sync.Mutex
	queues map[int64]*chatQueue
}

// chatQueue buffers a chat's updates while an earlier one is being handled.
type chatQueue struct {
	pending []Update
}

// NewPoller creates a poller.
func NewPoller(client *Client, handler Handler) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		queues:  make(map[int64]*chatQueue),
	}
}

// Run polls until ctx is canceled. Poll failures are logged and retried
// after a short pause; the loop itself never exits on error.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("telegram: get updates: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollErrorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, update)
		}
	}
}

// dispatch hands the update over without blocking the poll loop. The first
// update seen for a chat starts a drain goroutine; while that goroutine is
// alive, later updates for the same chat join its queue, so a chat's second
// message can never overtake its first even under goroutine scheduling.
func (p *Poller) dispatch(ctx context.Context, update Update) {
	key, ok := chatKey(update)
	if !ok {
		go p.handler.HandleUpdate(ctx, update)
		return
	}

	p.mu.Lock()
	if q, draining := p.queues[key]; draining {
		q.pending = append(q.pending, update)
		p.mu.Unlock()
		return
	}
	q := &chatQueue{}
	p.queues[key] = q
	p.mu.Unlock()

	go p.drain(ctx, key, q, update)
}

// drain handles one chat's updates in order until its queue runs dry.
func (p *Poller) drain(ctx context.Context, key int64, q *chatQueue, update Update) {
	for {
		p.handler.HandleUpdate(ctx, update)

		p.mu.Lock()
		if len(q.pending) == 0 {
			delete(p.queues, key)
			p.mu.Unlock()
			return
		}
		update = q.pending[0]
		q.pending = q.pending[1:]
		p.mu.Unlock()
	}
}

// chatKey returns the ordering key for an update. Updates without a message
// have no chat to order within.
func chatKey(update Update) (int64, bool) {
	if update.Message == nil {
		return 0, false
	}
	return update.Message.Chat.ID, true
}
