package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"insight/internal/chat"
	"insight/internal/observability"
)

const (
	completePath = "/api/agent/chat"
	streamPath   = "/api/agent/chat/stream"

	readBufferSize = 4096
)

// Request is the wire shape of both chat calls.
type Request struct {
	Input       string         `json:"input"`
	ChatHistory []chat.Message `json:"chat_history"`
	Model       string         `json:"model,omitempty"`
	ModelName   string         `json:"model_name,omitempty"`
	APIKey      string         `json:"api_key,omitempty"`
}

// completeResponse is the single-shot call's response body.
type completeResponse struct {
	Response    string         `json:"response"`
	ChatHistory []chat.Message `json:"chat_history"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithoutStreaming forces the single request/response mode for backends that
// do not support incremental delivery.
func WithoutStreaming() ClientOption {
	return func(c *Client) {
		c.streaming = false
	}
}

// WithLogger replaces the client's logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// Client talks to the remote chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	streaming  bool
	logger     *slog.Logger
}

// NewClient creates a chat client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		streaming:  true,
		logger:     observability.Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete performs the single-shot completion call and returns the
// authoritative transcript.
func (c *Client) Complete(ctx context.Context, req Request) ([]chat.Message, error) {
	resp, err := c.post(ctx, completePath, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var out completeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	return chat.Finalize(out.ChatHistory), nil
}

// Ingest opens the completion request and produces the event sequence on the
// returned channel. The sequence is finite and not restartable: it ends with
// exactly one EventDone or EventError, after which the channel is closed.
// Cancelling the context abandons the stream; no terminal event is emitted.
//
// In non-streaming mode the full response is applied as one EventDone.
func (c *Client) Ingest(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		if !c.streaming {
			history, err := c.Complete(ctx, req)
			if err != nil {
				emit(ctx, events, Event{Type: EventError, Err: err})
				return
			}
			emit(ctx, events, Event{Type: EventDone, History: history})
			return
		}

		c.ingestStream(ctx, req, events)
	}()

	return events
}

func (c *Client) ingestStream(ctx context.Context, req Request, events chan<- Event) {
	resp, err := c.post(ctx, streamPath, req)
	if err != nil {
		emit(ctx, events, Event{Type: EventError, Err: err})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		emit(ctx, events, Event{Type: EventError, Err: &StatusError{StatusCode: resp.StatusCode}})
		return
	}

	decoder := NewDecoder(c.logger)
	buf := make([]byte, readBufferSize)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, p := range decoder.Feed(buf[:n]) {
				if p.Done {
					emit(ctx, events, Event{Type: EventDone, History: chat.Finalize(p.History)})
					return
				}
				if p.Chunk != "" {
					if !emit(ctx, events, Event{Type: EventChunk, Chunk: p.Chunk}) {
						return
					}
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				// Stream ended without a terminal record: the caller's
				// accumulated content is treated as final.
				if decoder.Buffered() {
					c.logger.Warn("stream ended with incomplete record")
				}
				emit(ctx, events, Event{Type: EventDone})
				return
			}
			if ctx.Err() != nil {
				return
			}
			emit(ctx, events, Event{Type: EventError, Err: readErr})
			return
		}
	}
}

func (c *Client) post(ctx context.Context, path string, req Request) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if path == streamPath {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	return c.httpClient.Do(httpReq)
}

// emit delivers an event unless the context is cancelled first. Returns
// false when the consumer is gone.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
