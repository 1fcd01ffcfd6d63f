package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store keeps one State per chat. It is safe for concurrent use; callers
// serialise transitions of a single chat themselves.
type Store struct {
	mu      sync.Mutex
	states  map[int64]State
	ttl     time.Duration
	lastGen uint64
	now     func() time.Time
	log     *slog.Logger
}

// NewStore creates a store whose states expire ttl after their last write.
// A non-positive ttl keeps states until they are deleted.
func NewStore(ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		states: make(map[int64]State),
		ttl:    ttl,
		now:    time.Now,
		log:    log.With("service", "conversation"),
	}
}

// Begin replaces any state of the chat with a fresh one at step.
func (s *Store) Begin(chatID int64, flow, step string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastGen++
	st := State{
		ChatID:    chatID,
		Flow:      flow,
		Step:      step,
		Gen:       s.lastGen,
		UpdatedAt: s.now(),
	}
	s.states[chatID] = st.Clone()
	return st
}

// Get returns a copy of the chat's state. Expired states are dropped.
func (s *Store) Get(chatID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[chatID]
	if !ok {
		return State{}, false
	}
	if s.expired(st, s.now()) {
		delete(s.states, chatID)
		return State{}, false
	}
	return st.Clone(), true
}

// Set overwrites the chat's state wholesale.
func (s *Store) Set(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.UpdatedAt = s.now()
	s.states[st.ChatID] = st.Clone()
}

// SetIf overwrites the chat's state only while the stored state belongs to
// the same generation. It reports whether the write happened.
func (s *Store) SetIf(st State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.states[st.ChatID]
	if !ok || cur.Gen != st.Gen {
		return false
	}
	st.UpdatedAt = s.now()
	s.states[st.ChatID] = st.Clone()
	return true
}

// Delete removes the chat's state and reports whether there was one.
func (s *Store) Delete(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.states[chatID]
	delete(s.states, chatID)
	return ok
}

// DeleteIf removes the chat's state only if it belongs to gen.
func (s *Store) DeleteIf(chatID int64, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.states[chatID]
	if !ok || cur.Gen != gen {
		return false
	}
	delete(s.states, chatID)
	return true
}

// SweepExpired drops every state idle for longer than the TTL and returns
// how many were dropped.
func (s *Store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, st := range s.states {
		if s.expired(st, now) {
			delete(s.states, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored states, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepExpired(s.now()); n > 0 {
				s.log.InfoContext(ctx, "expired conversations dropped", slog.Int("count", n))
			}
		}
	}
}

func (s *Store) expired(st State, now time.Time) bool {
	return s.ttl > 0 && now.Sub(st.UpdatedAt) > s.ttl
}
