// Package chat defines the conversation domain types shared by the session
// store, the stream client, and the turn engine.
package chat

import (
	"encoding/json"
	"time"
)

// Role represents the author of a message.
type Role string

// Role constants for message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolStatus represents the outcome of a tool invocation.
type ToolStatus string

// Tool status constants.
const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
	ToolStatusPending ToolStatus = "pending"
)

// ToolCall records one tool invocation attached to a finalized assistant
// message.
type ToolCall struct {
	Thought     string          `json:"thought,omitempty"`
	Action      string          `json:"action"`
	ActionInput json.RawMessage `json:"action_input,omitempty"`
	Observation string          `json:"observation,omitempty"`
	Status      ToolStatus      `json:"status"`
}

// Message is one turn's content. An assistant message under construction
// from a stream is provisional: its content grows by appends only, and it
// freezes the moment Provisional flips to false. Provisional messages are
// never persisted.
type Message struct {
	Role        Role       `json:"role"`
	Content     string     `json:"content"`
	ToolCalls   []ToolCall `json:"tool_calls,omitempty"`
	Timestamp   int64      `json:"timestamp,omitempty"`
	Provisional bool       `json:"-"`
}

// NewUserMessage creates a finalized user message stamped with the current
// instant.
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewAssistantMessage creates a finalized assistant message stamped with the
// current instant.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewProvisionalMessage creates an empty assistant message that will be
// assembled incrementally from a stream.
func NewProvisionalMessage() Message {
	return Message{
		Role:        RoleAssistant,
		Timestamp:   time.Now().UnixMilli(),
		Provisional: true,
	}
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Finalize stamps a timestamp if the message lacks one and clears the
// provisional flag.
func Finalize(messages []Message) []Message {
	now := time.Now().UnixMilli()
	out := make([]Message, len(messages))
	for i, m := range messages {
		if m.Timestamp == 0 {
			m.Timestamp = now
		}
		m.Provisional = false
		out[i] = m
	}
	return out
}
