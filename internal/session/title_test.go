package session

import (
	"strings"
	"testing"

	"insight/internal/chat"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		messages []chat.Message
		want     string
	}{
		{
			name:     "short message used verbatim",
			messages: []chat.Message{chat.NewUserMessage("how was my week")},
			want:     "how was my week",
		},
		{
			name:     "long message truncated with ellipsis",
			messages: []chat.Message{chat.NewUserMessage(strings.Repeat("a", 30))},
			want:     strings.Repeat("a", 20) + "...",
		},
		{
			name: "truncation counts runes not bytes",
			messages: []chat.Message{
				chat.NewUserMessage(strings.Repeat("情", 25)),
			},
			want: strings.Repeat("情", 20) + "...",
		},
		{
			name: "skips assistant messages",
			messages: []chat.Message{
				chat.NewAssistantMessage("welcome back"),
				chat.NewUserMessage("log an expense"),
			},
			want: "log an expense",
		},
		{
			name:     "no user message yields the sentinel",
			messages: []chat.Message{chat.NewAssistantMessage("welcome back")},
			want:     TitleSentinel,
		},
		{
			name: "empty transcript yields the sentinel",
			want: TitleSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.messages); got != tt.want {
				t.Errorf("deriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
