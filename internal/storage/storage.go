// Package storage provides the durable local key-value store used for
// session and configuration persistence. Values are whole JSON documents;
// there are no partial updates at this layer.
package storage

import (
	"context"
	"errors"
)

// Well-known document keys.
const (
	KeySessions = "chat_sessions"
	KeyConfig   = "ai_model_config"
)

// ErrNotFound is returned when a key has no stored document.
var ErrNotFound = errors.New("storage: key not found")

// Store reads and writes whole JSON documents under string keys.
type Store interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the document stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the document stored under key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
}
