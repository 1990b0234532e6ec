package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"insight/internal/events"
	"insight/internal/pubsub"
)

// recordingSender captures the messages a bridge forwards.
type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) waitFor(t *testing.T, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, msg := range r.msgs {
			if match(msg) {
				r.mu.Unlock()
				return msg
			}
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for a forwarded message")
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestBridge(t *testing.T) {
	t.Run("forwards session events", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		rec := &recordingSender{}
		bridge := NewBridge(hub, rec)
		bridge.Start(context.Background())
		defer bridge.Stop()

		hub.Session.Publish(pubsub.EventCreated, events.NewSessionCreatedEvent("abc", "New Session"))

		msg := rec.waitFor(t, func(msg tea.Msg) bool {
			_, ok := msg.(SessionEventMsg)
			return ok
		})
		got := msg.(SessionEventMsg)
		if got.Event.Payload.SessionID != "abc" {
			t.Errorf("SessionID = %q, want abc", got.Event.Payload.SessionID)
		}
		if got.Event.Type != pubsub.EventCreated {
			t.Errorf("Type = %q, want %q", got.Event.Type, pubsub.EventCreated)
		}
	})

	t.Run("forwards chat events", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		rec := &recordingSender{}
		bridge := NewBridge(hub, rec)
		bridge.Start(context.Background())
		defer bridge.Stop()

		hub.Chat.Publish(pubsub.EventFailed, events.NewTurnFailedEvent("abc", "backend down"))

		msg := rec.waitFor(t, func(msg tea.Msg) bool {
			_, ok := msg.(ChatEventMsg)
			return ok
		})
		got := msg.(ChatEventMsg)
		if got.Event.Payload.Error != "backend down" {
			t.Errorf("Error = %q, want backend down", got.Event.Payload.Error)
		}
	})

	t.Run("stop ends forwarding", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		rec := &recordingSender{}
		bridge := NewBridge(hub, rec)
		bridge.Start(context.Background())
		bridge.Stop()

		before := rec.count()
		hub.Session.Publish(pubsub.EventCreated, events.NewSessionCreatedEvent("abc", "New Session"))
		time.Sleep(20 * time.Millisecond)
		if rec.count() != before {
			t.Error("bridge forwarded an event after Stop")
		}
	})
}
