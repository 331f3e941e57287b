// Package bot implements the conversation core: per-user sessions, the
// guided swap dialog, guarded outbound delivery, and command routing.
package bot

import (
	"sync"
	"sync/atomic"

	"solana-swap-bot/internal/observability"
)

// State is the position of one user's conversation.
type State int

const (
	// StateIdle is the initial and terminal state; free text is ignored.
	StateIdle State = iota
	// StateAwaitingToken means the bot asked for a token mint address.
	StateAwaitingToken
	// StateAwaitingAmount means the bot asked for a SOL amount.
	StateAwaitingAmount
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingToken:
		return "awaiting_token"
	case StateAwaitingAmount:
		return "awaiting_amount"
	default:
		return "unknown"
	}
}

// Session is one user's in-flight conversation. All fields are guarded by
// the SessionStore: handlers only see a session inside Do.
type Session struct {
	mu sync.Mutex

	State     State
	Side      string // trade direction, set when the dialog starts
	TokenMint string // set on the transition into StateAwaitingAmount
}

// Reset returns the session to idle and discards collected data.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Side = ""
	s.TokenMint = ""
}

// SessionStore keys sessions by user and serializes access per user: Do
// holds the user's session lock for the whole callback, so two concurrent
// events from the same user never interleave, while different users proceed
// independently.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	active   atomic.Int64 // sessions not in StateIdle
	metrics  *observability.Metrics
}

// NewSessionStore creates an empty store. metrics may be nil.
func NewSessionStore(metrics *observability.Metrics) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
		metrics:  metrics,
	}
}

// Do runs fn with the user's session locked. The lock spans the entire
// callback, including any slow swap call made from it. It guarantees mutual
// exclusion only; arrival order between one user's events is established
// upstream by the update dispatcher.
func (s *SessionStore) Do(userID int64, fn func(*Session)) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	wasActive := sess.State != StateIdle

	// Unlock via defer so a panicking callback cannot wedge the session;
	// the panic itself is handled at the update boundary.
	defer func() {
		isActive := sess.State != StateIdle
		sess.mu.Unlock()

		if wasActive != isActive {
			if isActive {
				s.active.Add(1)
			} else {
				s.active.Add(-1)
			}
			s.metrics.SetActiveSessions(int(s.active.Load()))
		}
	}()

	fn(sess)
}
