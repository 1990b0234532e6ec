package events

import "time"

// ChatEventType represents chat turn event types.
type ChatEventType string

// Chat event type constants.
const (
	ChatEventTurnStarted   ChatEventType = "turn_started"
	ChatEventContentDelta  ChatEventType = "content_delta"
	ChatEventTurnCompleted ChatEventType = "turn_completed"
	ChatEventTurnFailed    ChatEventType = "turn_failed"
)

// ChatEvent represents progress of one conversational turn.
type ChatEvent struct {
	SessionID string
	Type      ChatEventType
	Delta     string // for ContentDelta
	Error     string // for TurnFailed
	Timestamp time.Time
}

// NewTurnStartedEvent creates a turn started event.
func NewTurnStartedEvent(sessionID string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		Type:      ChatEventTurnStarted,
		Timestamp: time.Now(),
	}
}

// NewContentDeltaEvent creates a content delta event.
func NewContentDeltaEvent(sessionID, delta string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		Type:      ChatEventContentDelta,
		Delta:     delta,
		Timestamp: time.Now(),
	}
}

// NewTurnCompletedEvent creates a turn completed event.
func NewTurnCompletedEvent(sessionID string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		Type:      ChatEventTurnCompleted,
		Timestamp: time.Now(),
	}
}

// NewTurnFailedEvent creates a turn failed event.
func NewTurnFailedEvent(sessionID, errText string) ChatEvent {
	return ChatEvent{
		SessionID: sessionID,
		Type:      ChatEventTurnFailed,
		Error:     errText,
		Timestamp: time.Now(),
	}
}
