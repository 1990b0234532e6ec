package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	emotionsPath  = "/api/emotions/"
	financesPath  = "/api/finances/"
	skillsPath    = "/api/skills/"
	learningsPath = "/api/learnings/"

	readRetries = 3
)

// StatusError reports a non-success response from the tracking backend.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracker backend returned status %d", e.StatusCode)
}

// Client is a thin typed client for the tracking backend's CRUD endpoints.
// Idempotent reads are retried; writes are attempted once.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a tracker client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListEmotions returns all emotion records.
func (c *Client) ListEmotions(ctx context.Context) ([]Emotion, error) {
	return list[Emotion](ctx, c, emotionsPath)
}

// CreateEmotion creates an emotion record and returns the stored version.
func (c *Client) CreateEmotion(ctx context.Context, rec Emotion) (Emotion, error) {
	return write[Emotion](ctx, c, http.MethodPost, emotionsPath, rec)
}

// UpdateEmotion updates an emotion record by id.
func (c *Client) UpdateEmotion(ctx context.Context, id int64, rec Emotion) (Emotion, error) {
	return write[Emotion](ctx, c, http.MethodPut, fmt.Sprintf("%s%d", emotionsPath, id), rec)
}

// DeleteEmotion deletes an emotion record by id.
func (c *Client) DeleteEmotion(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("%s%d", emotionsPath, id))
}

// ListFinances returns all finance records.
func (c *Client) ListFinances(ctx context.Context) ([]Finance, error) {
	return list[Finance](ctx, c, financesPath)
}

// CreateFinance creates a finance record and returns the stored version.
func (c *Client) CreateFinance(ctx context.Context, rec Finance) (Finance, error) {
	return write[Finance](ctx, c, http.MethodPost, financesPath, rec)
}

// UpdateFinance updates a finance record by id.
func (c *Client) UpdateFinance(ctx context.Context, id int64, rec Finance) (Finance, error) {
	return write[Finance](ctx, c, http.MethodPut, fmt.Sprintf("%s%d", financesPath, id), rec)
}

// DeleteFinance deletes a finance record by id.
func (c *Client) DeleteFinance(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("%s%d", financesPath, id))
}

// ListSkills returns all skill records.
func (c *Client) ListSkills(ctx context.Context) ([]Skill, error) {
	return list[Skill](ctx, c, skillsPath)
}

// CreateSkill creates a skill record and returns the stored version.
func (c *Client) CreateSkill(ctx context.Context, rec Skill) (Skill, error) {
	return write[Skill](ctx, c, http.MethodPost, skillsPath, rec)
}

// UpdateSkill updates a skill record by id.
func (c *Client) UpdateSkill(ctx context.Context, id int64, rec Skill) (Skill, error) {
	return write[Skill](ctx, c, http.MethodPut, fmt.Sprintf("%s%d", skillsPath, id), rec)
}

// DeleteSkill deletes a skill record by id.
func (c *Client) DeleteSkill(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("%s%d", skillsPath, id))
}

// ListLearnings returns all learning records.
func (c *Client) ListLearnings(ctx context.Context) ([]Learning, error) {
	return list[Learning](ctx, c, learningsPath)
}

// CreateLearning creates a learning record and returns the stored version.
func (c *Client) CreateLearning(ctx context.Context, rec Learning) (Learning, error) {
	return write[Learning](ctx, c, http.MethodPost, learningsPath, rec)
}

// UpdateLearning updates a learning record by id.
func (c *Client) UpdateLearning(ctx context.Context, id int64, rec Learning) (Learning, error) {
	return write[Learning](ctx, c, http.MethodPut, fmt.Sprintf("%s%d", learningsPath, id), rec)
}

// DeleteLearning deletes a learning record by id.
func (c *Client) DeleteLearning(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("%s%d", learningsPath, id))
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	return retry.DoWithData(
		func() ([]T, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return nil, retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				err := &StatusError{StatusCode: resp.StatusCode}
				if resp.StatusCode >= 500 {
					return nil, err
				}
				return nil, retry.Unrecoverable(err)
			}

			var out []T
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("decoding response: %w", err))
			}
			return out, nil
		},
		retry.Attempts(readRetries),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}

func write[T any](ctx context.Context, c *Client, method, path string, rec T) (T, error) {
	var zero T

	body, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encoding record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &StatusError{StatusCode: resp.StatusCode}
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
