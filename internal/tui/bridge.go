package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"insight/internal/events"
	"insight/internal/pubsub"
)

// SessionEventMsg wraps a session lifecycle event as a bubbletea message.
type SessionEventMsg struct {
	Event pubsub.Event[events.SessionEvent]
}

// ChatEventMsg wraps a turn progress event as a bubbletea message.
type ChatEventMsg struct {
	Event pubsub.Event[events.ChatEvent]
}

// sender is the part of tea.Program the bridge forwards into.
type sender interface {
	Send(tea.Msg)
}

// Bridge subscribes to the hub brokers and forwards their events into the
// running program as messages, converting domain events to bubbletea
// messages.
type Bridge struct {
	hub     *pubsub.Hub
	program sender

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridge creates a bridge between the hub and the program.
func NewBridge(hub *pubsub.Hub, program sender) *Bridge {
	return &Bridge{hub: hub, program: program}
}

// Start begins forwarding events. Call Stop to shut down.
func (b *Bridge) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(2)
	go b.subscribeSession()
	go b.subscribeChat()
}

// Stop shuts the bridge down and waits for the forwarders to exit.
func (b *Bridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
}

func (b *Bridge) subscribeSession() {
	defer b.wg.Done()

	events := b.hub.Session.Subscribe(b.ctx)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.program.Send(SessionEventMsg{Event: event})
		}
	}
}

func (b *Bridge) subscribeChat() {
	defer b.wg.Done()

	events := b.hub.Chat.Subscribe(b.ctx)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.program.Send(ChatEventMsg{Event: event})
		}
	}
}
