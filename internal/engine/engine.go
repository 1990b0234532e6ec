// Package engine orchestrates one conversational turn: it resolves the
// provider configuration, appends the user message, drives stream ingestion,
// and commits the resulting transcript to the session store.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"insight/internal/chat"
	"insight/internal/config"
	"insight/internal/events"
	"insight/internal/observability"
	"insight/internal/pubsub"
	"insight/internal/session"
	"insight/internal/storage"
	"insight/internal/stream"
)

// Fixed user-facing failure texts. Failures are always visible in history
// like any other turn.
const (
	msgNoProvider  = "No AI model is configured. Add an API key in settings to enable the assistant."
	msgRejected    = "Sorry, I can't process your request right now. Please try again later."
	msgUnreachable = "Sorry, I couldn't reach the server. Please check your network connection."
)

// Sentinel errors returned by SendTurn before a turn starts.
var (
	// ErrEmptyInput is returned for input that is empty after trimming.
	ErrEmptyInput = errors.New("input cannot be empty")

	// ErrSessionBusy is returned when a turn is already in flight for the
	// session. Turns are serialized per session to preserve the
	// monotonic-append invariant on the provisional message.
	ErrSessionBusy = errors.New("session is busy")
)

// UpdateKind discriminates the updates observable during a turn.
type UpdateKind int

// Update kinds.
const (
	// UpdateContent carries the provisional assistant content so far.
	UpdateContent UpdateKind = iota

	// UpdateCompleted carries the committed final transcript.
	UpdateCompleted

	// UpdateFailed carries the committed transcript including the
	// synthesized error message.
	UpdateFailed
)

// Update is one observable step of a turn. The update channel is closed
// after the terminal UpdateCompleted or UpdateFailed.
type Update struct {
	Kind      UpdateKind
	SessionID string
	Content   string         // UpdateContent: accumulated provisional content
	Delta     string         // UpdateContent: the increment itself
	Messages  []chat.Message // terminal updates: the committed transcript
	Err       error          // UpdateFailed: the underlying failure
}

// Ingester opens a completion request and produces the ingestion sequence.
type Ingester interface {
	Ingest(ctx context.Context, req stream.Request) <-chan stream.Event
}

// Engine ties the configuration resolver, session store, and stream
// ingestion together per user turn.
type Engine struct {
	sessions *session.Store
	store    storage.Store
	client   Ingester
	hub      *pubsub.Hub
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a turn engine. The hub may be nil.
func New(sessions *session.Store, store storage.Store, client Ingester, hub *pubsub.Hub) *Engine {
	return &Engine{
		sessions: sessions,
		store:    store,
		client:   client,
		hub:      hub,
		logger:   observability.Logger(),
		inflight: make(map[string]struct{}),
	}
}

// IsBusy reports whether a turn is in flight for the session.
func (e *Engine) IsBusy(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[sessionID]
	return ok
}

// SendTurn starts a turn against the active session and returns the stream
// of observable updates. The channel is closed when the turn ends.
// Cancelling the context abandons an in-flight stream: the provisional
// message is dropped, not persisted.
func (e *Engine) SendTurn(ctx context.Context, input string) (<-chan Update, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	active := e.sessions.Active()
	if active == nil {
		created, err := e.sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		active = created
	}

	e.mu.Lock()
	if _, busy := e.inflight[active.ID]; busy {
		e.mu.Unlock()
		return nil, ErrSessionBusy
	}
	e.inflight[active.ID] = struct{}{}
	e.mu.Unlock()

	updates := make(chan Update)
	go func() {
		defer close(updates)
		defer func() {
			e.mu.Lock()
			delete(e.inflight, active.ID)
			e.mu.Unlock()
		}()
		e.runTurn(ctx, active, input, updates)
	}()

	return updates, nil
}

// runTurn drives the turn state machine:
// Resolving -> AwaitingResponse -> Streaming -> Committing, any state ->
// Failed on error.
func (e *Engine) runTurn(ctx context.Context, active *session.Session, input string, updates chan<- Update) {
	log := e.logger.With("session_id", active.ID)
	e.publishChat(pubsub.EventStarted, events.NewTurnStartedEvent(active.ID))

	// Resolving.
	resolution, err := e.resolve(ctx)
	if err != nil {
		log.Warn("turn failed during resolution", "error", err)
		text := msgRejected
		if errors.Is(err, config.ErrNoProvider) {
			text = msgNoProvider
		}
		e.failTurn(ctx, active.ID, active.Messages, input, "", text, err, updates)
		return
	}
	log.Debug("resolved model",
		"provider", resolution.Provider,
		"model", resolution.ModelName)

	// AwaitingResponse: the user message is committed optimistically so it
	// survives a later failure.
	history := append(append([]chat.Message{}, active.Messages...), chat.NewUserMessage(input))
	if err := e.sessions.CommitMessages(ctx, active.ID, history); err != nil {
		log.Warn("optimistic commit failed, continuing with in-memory state", "error", err)
	}

	req := stream.Request{
		Input:       input,
		ChatHistory: active.Messages,
		Model:       string(resolution.Provider),
		ModelName:   resolution.ModelName,
		APIKey:      resolution.APIKey,
	}

	// Streaming.
	provisional := chat.NewProvisionalMessage()
	for ev := range e.client.Ingest(ctx, req) {
		switch ev.Type {
		case stream.EventChunk:
			provisional.Content += ev.Chunk
			if !e.send(ctx, updates, Update{
				Kind:      UpdateContent,
				SessionID: active.ID,
				Content:   provisional.Content,
				Delta:     ev.Chunk,
			}) {
				return
			}
			e.publishChat(pubsub.EventProgress, events.NewContentDeltaEvent(active.ID, ev.Chunk))

		case stream.EventDone:
			// Committing. A nil history means the stream ended without a
			// terminal record; the accumulated content is final.
			final := ev.History
			if final == nil {
				final = history
				if provisional.Content != "" {
					final = append(final, provisional)
				}
			}
			final = chat.Finalize(final)
			if err := e.sessions.CommitMessages(ctx, active.ID, final); err != nil {
				log.Error("committing transcript", "error", err)
			}
			e.send(ctx, updates, Update{
				Kind:      UpdateCompleted,
				SessionID: active.ID,
				Messages:  final,
			})
			e.publishChat(pubsub.EventCompleted, events.NewTurnCompletedEvent(active.ID))
			return

		case stream.EventError:
			// Failed. Partial content stays visible, with the error
			// message appended.
			text := msgUnreachable
			var statusErr *stream.StatusError
			if errors.As(ev.Err, &statusErr) {
				text = msgRejected
			}
			log.Warn("turn failed during streaming", "error", ev.Err)
			e.failTurn(ctx, active.ID, history, "", provisional.Content, text, ev.Err, updates)
			return
		}
	}

	// Channel closed without a terminal event: the context was cancelled.
	// The provisional message is discarded without committing.
	log.Debug("turn abandoned")
}

// resolve loads the configuration fresh from durable storage and runs the
// resolution cascade. No network call is attempted when it fails.
func (e *Engine) resolve(ctx context.Context) (config.Resolution, error) {
	cfg, err := config.Load(ctx, e.store)
	if err != nil {
		return config.Resolution{}, err
	}
	return cfg.Resolve(cfg.SelectedModel)
}

// failTurn synthesizes the fixed assistant error message, commits it so the
// failure is visible in history, and emits the terminal update. pendingInput
// is non-empty when the user message has not been committed yet; partial is
// the provisional content accumulated before the failure.
func (e *Engine) failTurn(ctx context.Context, sessionID string, history []chat.Message, pendingInput, partial, text string, cause error, updates chan<- Update) {
	final := append([]chat.Message{}, history...)
	if pendingInput != "" {
		final = append(final, chat.NewUserMessage(pendingInput))
	}
	if partial != "" {
		final = append(final, chat.NewAssistantMessage(partial))
	}
	final = append(final, chat.NewAssistantMessage(text))

	if err := e.sessions.CommitMessages(ctx, sessionID, final); err != nil {
		e.logger.Error("committing failed turn", "session_id", sessionID, "error", err)
	}

	e.send(ctx, updates, Update{
		Kind:      UpdateFailed,
		SessionID: sessionID,
		Messages:  final,
		Err:       cause,
	})
	e.publishChat(pubsub.EventFailed, events.NewTurnFailedEvent(sessionID, text))
}

// send delivers an update unless the context is cancelled first.
func (e *Engine) send(ctx context.Context, updates chan<- Update, u Update) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) publishChat(t pubsub.EventType, ev events.ChatEvent) {
	if e.hub != nil {
		e.hub.Chat.Publish(t, ev)
	}
}
