package session

import "insight/internal/chat"

// titleMaxRunes is the display length titles are truncated to.
const titleMaxRunes = 20

// deriveTitle returns the automatic title for a thread: the first user
// message, truncated with an ellipsis marker. Returns the sentinel when the
// thread has no user message yet.
func deriveTitle(messages []chat.Message) string {
	for _, m := range messages {
		if m.Role != chat.RoleUser {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) > titleMaxRunes {
			return string(runes[:titleMaxRunes]) + "..."
		}
		return m.Content
	}
	return TitleSentinel
}
