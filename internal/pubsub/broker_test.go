package pubsub

import (
	"context"
	"testing"
	"time"

	"insight/internal/events"
)

func TestBroker(t *testing.T) {
	t.Run("delivers events to subscribers", func(t *testing.T) {
		broker := NewBroker[events.SessionEvent]("session")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		broker.Publish(EventCreated, events.NewSessionCreatedEvent("abc", "New Session"))

		select {
		case ev := <-sub:
			if ev.Type != EventCreated {
				t.Errorf("Type = %q, want %q", ev.Type, EventCreated)
			}
			if ev.Payload.SessionID != "abc" {
				t.Errorf("SessionID = %q, want abc", ev.Payload.SessionID)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("context cancellation removes the subscriber", func(t *testing.T) {
		broker := NewBroker[events.SessionEvent]("session")
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		sub := broker.Subscribe(ctx)
		if broker.SubscriberCount() != 1 {
			t.Fatalf("SubscriberCount() = %d, want 1", broker.SubscriberCount())
		}

		cancel()

		select {
		case _, ok := <-sub:
			if ok {
				t.Error("received event on a cancelled subscription")
			}
		case <-time.After(time.Second):
			t.Fatal("channel not closed after cancellation")
		}
	})

	t.Run("slow subscribers drop events instead of blocking", func(t *testing.T) {
		broker := NewBroker("session", WithBufferSize[events.SessionEvent](1))
		defer broker.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		broker.Subscribe(ctx)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				broker.Publish(EventUpdated, events.NewSessionSwitchedEvent("abc"))
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Publish blocked on a full subscriber buffer")
		}
	})

	t.Run("shutdown closes subscriptions and stops delivery", func(t *testing.T) {
		broker := NewBroker[events.SessionEvent]("session")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub := broker.Subscribe(ctx)

		broker.Shutdown()
		broker.Publish(EventCreated, events.NewSessionCreatedEvent("abc", "New Session"))

		select {
		case _, ok := <-sub:
			if ok {
				t.Error("received event after shutdown")
			}
		case <-time.After(time.Second):
			t.Fatal("channel not closed after shutdown")
		}

		sub2 := broker.Subscribe(context.Background())
		if _, ok := <-sub2; ok {
			t.Error("subscription after shutdown delivered an event")
		}
	})
}

func TestHub(t *testing.T) {
	hub := NewHub()

	if hub.Session == nil || hub.Chat == nil {
		t.Fatal("hub brokers not initialized")
	}

	hub.Shutdown()

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() not closed after Shutdown()")
	}
}
