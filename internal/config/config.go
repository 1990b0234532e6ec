// Package config provides model provider configuration and resolution.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/sjson"

	"insight/internal/storage"
)

// Provider identifies a known chat model provider.
type Provider string

// The fixed set of known providers.
const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
	ProviderDoubao   Provider = "doubao"
)

// SelectionAuto is the sentinel model selection meaning "pick for me".
const SelectionAuto = "auto"

// providerPriority is the evaluation order of the auto cascade.
var providerPriority = []Provider{ProviderOpenAI, ProviderDeepSeek, ProviderDoubao}

// defaultModels maps each provider to the model used when no override is
// configured.
var defaultModels = map[Provider]string{
	ProviderOpenAI:   "gpt-3.5-turbo",
	ProviderDeepSeek: "deepseek-chat",
	ProviderDoubao:   "doubao-seed-1-6-251015",
}

// modelPrefixes maps a model-name prefix to its owning provider.
var modelPrefixes = []struct {
	prefix   string
	provider Provider
}{
	{"gpt-", ProviderOpenAI},
	{"deepseek-", ProviderDeepSeek},
	{"doubao-", ProviderDoubao},
}

// ProviderSettings holds one provider's stored credential and model override.
type ProviderSettings struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Config is the stored model configuration. It is loaded from durable
// storage at the start of every turn rather than cached, so changes made in
// settings take effect on the next turn.
type Config struct {
	Providers     map[Provider]ProviderSettings `json:"providers,omitempty"`
	SelectedModel string                        `json:"selected_model,omitempty"`
}

// New creates an empty Config with the auto selection.
func New() *Config {
	return &Config{
		Providers:     make(map[Provider]ProviderSettings),
		SelectedModel: SelectionAuto,
	}
}

// Load reads the configuration document from durable storage. A missing
// document yields an empty configuration, not an error.
func Load(ctx context.Context, store storage.Store) (*Config, error) {
	data, err := store.Get(ctx, storage.KeyConfig)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[Provider]ProviderSettings)
	}
	if cfg.SelectedModel == "" {
		cfg.SelectedModel = SelectionAuto
	}
	return cfg, nil
}

// Save writes the full configuration document to durable storage.
func Save(ctx context.Context, store storage.Store, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := store.Set(ctx, storage.KeyConfig, data); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// SetField updates a single field of the stored configuration document using
// JSON path notation, leaving every other field untouched.
func SetField(ctx context.Context, store storage.Store, path string, value any) error {
	data, err := store.Get(ctx, storage.KeyConfig)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		data = []byte("{}")
	}

	updated, err := sjson.Set(string(data), path, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", path, err)
	}

	if err := store.Set(ctx, storage.KeyConfig, []byte(updated)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// apiKey returns the stored credential for a provider.
func (c *Config) apiKey(p Provider) string {
	return c.Providers[p].APIKey
}

// model returns the model to address for a provider: the configured override
// or the provider default.
func (c *Config) model(p Provider) string {
	if m := c.Providers[p].Model; m != "" {
		return m
	}
	return defaultModels[p]
}
