package flow

import (
	"context"
	"sync"
	"time"

	"rephrasecoach/models"

	"github.com/google/uuid"
)

type Mode string

const (
	ModePractice Mode = "practice"
	ModeDirect   Mode = "direct"
)

func ParseMode(s string) Mode {
	if Mode(s) == ModeDirect {
		return ModeDirect
	}
	return ModePractice
}

// Session is one visitor's state. Practice and direct flows are independent.
type Session struct {
	ID       string
	Topic    *TopicFlow
	Practice *Flow
	Direct   *Flow

	mu        sync.Mutex
	mode      Mode
	expiresAt time.Time
}

func NewSession(id, initialTopic string, practice, direct Config, policy Policy) *Session {
	p := New(practice, policy)
	return &Session{
		ID:       id,
		Topic:    NewTopicFlow(initialTopic, p),
		Practice: p,
		Direct:   New(direct, policy),
		mode:     ModePractice,
	}
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the visible mode. Leaving a mode discards its result.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	prev := s.mode
	s.mode = m
	s.mu.Unlock()

	if prev == m {
		return
	}
	switch prev {
	case ModePractice:
		s.Practice.Discard()
	case ModeDirect:
		s.Direct.Discard()
	}
}

// SubmitPractice evaluates attempts against the current challenge.
func (s *Session) SubmitPractice(ctx context.Context, attempts models.Attempts, rubric models.Rubric, dispatch Dispatcher) error {
	in := Input{Sentence: s.Topic.Current(), Attempts: attempts, Rubric: rubric}
	s.Practice.SetDraft(in)
	s.Practice.SetRubric(rubric)
	return s.Practice.Submit(ctx, in, dispatch)
}

// SubmitDirect rewrites one sentence.
func (s *Session) SubmitDirect(ctx context.Context, sentence string, rubric models.Rubric, dispatch Dispatcher) error {
	in := Input{Sentence: sentence, Rubric: rubric}
	s.Direct.SetDraft(in)
	s.Direct.SetRubric(rubric)
	return s.Direct.Submit(ctx, in, dispatch)
}

// Factory builds a fresh session for a new visitor.
type Factory func(id string) *Session

// Store keeps sessions in memory until they expire. Nothing is persisted.
type Store struct {
	ttl     time.Duration
	factory Factory
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(ttl time.Duration, factory Factory) *Store {
	return &Store{
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns it.
func (st *Store) Create() *Session {
	sess := st.factory(uuid.NewString())
	st.mu.Lock()
	sess.expiresAt = st.now().Add(st.ttl)
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns a live session and extends its lifetime, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil
	}
	now := st.now()
	if now.After(sess.expiresAt) {
		delete(st.sessions, id)
		return nil
	}
	sess.expiresAt = now.Add(st.ttl)
	return sess
}

// Prune drops expired sessions and reports how many were removed.
func (st *Store) Prune() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	n := 0
	for id, sess := range st.sessions {
		if now.After(sess.expiresAt) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
