// Package stream consumes the remote chat endpoint: it opens the completion
// request, incrementally decodes the framed event protocol, and emits
// discrete events for the turn engine to apply.
package stream

import (
	"fmt"

	"insight/internal/chat"
)

// EventType discriminates the events produced by ingestion.
type EventType int

// Event type constants.
const (
	// EventChunk carries an incremental content delta.
	EventChunk EventType = iota

	// EventDone terminates the sequence successfully. History holds the
	// authoritative final transcript, or nil when the byte stream ended
	// without a terminal record and the locally accumulated content is to
	// be treated as final.
	EventDone

	// EventError terminates the sequence on transport failure. Chunks
	// already emitted are not rolled back.
	EventError
)

// Event is one element of the ingestion sequence.
type Event struct {
	Type    EventType
	Chunk   string
	History []chat.Message
	Err     error
}

// StatusError reports a non-success HTTP response from the chat endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned status %d", e.StatusCode)
}
