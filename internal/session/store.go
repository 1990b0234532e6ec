package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"insight/internal/chat"
	"insight/internal/events"
	"insight/internal/pubsub"
	"insight/internal/storage"
)

// ErrNotFound is returned when a session id is not in the collection.
var ErrNotFound = errors.New("session not found")

// Store owns the collection of conversation threads. It keeps a synchronous
// in-memory mirror and writes the whole collection through to durable
// storage on every mutation. The mirror stays correct even when a
// write-through fails, so persistence can be retried without losing the
// current turn.
type Store struct {
	storage storage.Store
	broker  *pubsub.Broker[events.SessionEvent]

	mu       sync.RWMutex
	sessions []*Session
	active   string
}

// NewStore creates a session store backed by the given durable storage.
// The broker may be nil.
func NewStore(st storage.Store, broker *pubsub.Broker[events.SessionEvent]) *Store {
	return &Store{storage: st, broker: broker}
}

// Load restores the collection from durable storage. On a first launch with
// nothing persisted, one empty session is created implicitly. The most
// recently appended session becomes active.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.storage.Get(ctx, storage.KeySessions)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("restoring sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		var sessions []*Session
		if err := json.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("parsing sessions: %w", err)
		}
		s.sessions = sessions
	}

	if len(s.sessions) == 0 {
		sess := newSession()
		s.sessions = []*Session{sess}
		s.active = sess.ID
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
		s.publish(pubsub.EventCreated, events.NewSessionCreatedEvent(sess.ID, sess.Title))
		return nil
	}

	s.active = s.sessions[len(s.sessions)-1].ID
	return nil
}

// List returns copies of all sessions in insertion order.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.findLocked(id)
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

// Active returns a copy of the active session, or nil when the collection is
// empty.
func (s *Store) Active() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.findLocked(s.active)
	if sess == nil {
		return nil
	}
	return sess.clone()
}

// ActiveID returns the active session id, or "" when the collection is empty.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Create appends a new empty thread to the collection and makes it active.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()

	sess := newSession()
	s.sessions = append(s.sessions, sess)
	s.active = sess.ID

	err := s.persistLocked(ctx)
	var out *Session
	if err == nil {
		out = sess.clone()
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publish(pubsub.EventCreated, events.NewSessionCreatedEvent(out.ID, out.Title))
	return out, nil
}

// SwitchActive updates the active reference. Unknown ids are a silent no-op.
// Switching does not touch UpdatedAt and is not persisted.
func (s *Store) SwitchActive(id string) {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return
	}
	s.active = id
	s.mu.Unlock()

	s.publish(pubsub.EventUpdated, events.NewSessionSwitchedEvent(id))
}

// Delete removes a thread. Deleting the active thread promotes the first
// remaining thread, or clears the active reference when the collection
// becomes empty. Deletion is irreversible; confirming user intent is the
// caller's responsibility.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.active == id {
		if len(s.sessions) > 0 {
			s.active = s.sessions[0].ID
		} else {
			s.active = ""
		}
	}

	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
	return nil
}

// CommitMessages replaces a thread's messages wholesale with the finalized
// transcript, recomputes the automatic title if it is still the sentinel,
// touches UpdatedAt, and reserializes the whole collection.
func (s *Store) CommitMessages(ctx context.Context, id string, messages []chat.Message) error {
	s.mu.Lock()

	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}

	sess.Messages = chat.Finalize(messages)
	if sess.Title == TitleSentinel {
		sess.Title = deriveTitle(sess.Messages)
	}
	sess.UpdatedAt = time.Now().UnixMilli()
	title := sess.Title

	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(pubsub.EventUpdated, events.NewSessionUpdatedEvent(id, title))
	return nil
}

// Rename sets an explicit title, bypassing the automatic derivation for the
// rest of the thread's lifetime.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	s.mu.Lock()

	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}

	sess.Title = title
	sess.UpdatedAt = time.Now().UnixMilli()

	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(pubsub.EventUpdated, events.NewSessionRenamedEvent(id, title))
	return nil
}

// findLocked returns the stored session with the given id. Callers must hold
// s.mu.
func (s *Store) findLocked(id string) *Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// persistLocked serializes the entire collection under one key. Callers must
// hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("serializing sessions: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeySessions, data); err != nil {
		return fmt.Errorf("persisting sessions: %w", err)
	}
	return nil
}

func (s *Store) publish(t pubsub.EventType, ev events.SessionEvent) {
	if s.broker != nil {
		s.broker.Publish(t, ev)
	}
}
