// Package tracker provides the life-record types and the REST client for the
// tracking backend. The assistant core only consumes this surface; screens
// and charts live elsewhere.
package tracker

import "encoding/json"

// Emotion is one emotion journal record.
type Emotion struct {
	ID             int64    `json:"id,omitempty"`
	Content        string   `json:"content"`
	Date           string   `json:"date"` // YYYY-MM-DD
	Tags           []string `json:"tags,omitempty"`
	Sentiment      string   `json:"sentiment,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// Finance is one income or expense record.
type Finance struct {
	ID          int64    `json:"id,omitempty"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category"` // income or expense
	Subcategory string   `json:"subcategory"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Skill is one tracked skill with its level and progress.
type Skill struct {
	ID               int64           `json:"id,omitempty"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Level            int             `json:"level,omitempty"`    // 1-5
	Progress         int             `json:"progress,omitempty"` // 0-100
	Description      string          `json:"description,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	LearningPaths    json.RawMessage `json:"learning_paths,omitempty"`
	FutureDirections []string        `json:"future_directions,omitempty"`
	RelatedSkills    []string        `json:"related_skills,omitempty"`
	SkillTreeID      *int64          `json:"skill_tree_id,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
	UpdatedAt        string          `json:"updated_at,omitempty"`
}

// Learning is one study-session record.
type Learning struct {
	ID        int64    `json:"id,omitempty"`
	Topic     string   `json:"topic"`
	Duration  int      `json:"duration"` // minutes
	Content   string   `json:"content,omitempty"`
	Date      string   `json:"date"`
	Tags      []string `json:"tags,omitempty"`
	SkillID   *int64   `json:"skill_id,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}
