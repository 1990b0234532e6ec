// Package session provides the conversation thread collection with
// write-through persistence to durable storage.
package session

import (
	"time"

	"github.com/google/uuid"

	"insight/internal/chat"
)

// TitleSentinel is the title of a thread that has not yet been auto-titled.
const TitleSentinel = "New Session"

// Session is one conversation thread.
type Session struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Messages  []chat.Message `json:"messages"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

// newSession creates an empty thread with the sentinel title.
func newSession() *Session {
	now := time.Now().UnixMilli()
	return &Session{
		ID:        uuid.New().String(),
		Title:     TitleSentinel,
		Messages:  []chat.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// clone returns a deep copy so callers cannot mutate store state.
func (s *Session) clone() *Session {
	out := *s
	out.Messages = make([]chat.Message, len(s.Messages))
	for i, m := range s.Messages {
		if len(m.ToolCalls) > 0 {
			m.ToolCalls = append([]chat.ToolCall(nil), m.ToolCalls...)
		}
		out.Messages[i] = m
	}
	return &out
}
