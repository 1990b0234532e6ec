package config

import (
	"context"
	"testing"

	"insight/internal/storage"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document yields empty config", func(t *testing.T) {
		store := storage.NewMemoryStore()

		cfg, err := Load(ctx, store)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.SelectedModel != SelectionAuto {
			t.Errorf("SelectedModel = %q, want %q", cfg.SelectedModel, SelectionAuto)
		}
		if len(cfg.Providers) != 0 {
			t.Errorf("Providers = %v, want empty", cfg.Providers)
		}
	})

	t.Run("round trips through save", func(t *testing.T) {
		store := storage.NewMemoryStore()

		cfg := New()
		cfg.SelectedModel = "gpt-4"
		cfg.Providers[ProviderOpenAI] = ProviderSettings{APIKey: "sk-test", Model: "gpt-4o"}
		if err := Save(ctx, store, cfg); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		loaded, err := Load(ctx, store)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.SelectedModel != "gpt-4" {
			t.Errorf("SelectedModel = %q, want gpt-4", loaded.SelectedModel)
		}
		if got := loaded.Providers[ProviderOpenAI]; got != (ProviderSettings{APIKey: "sk-test", Model: "gpt-4o"}) {
			t.Errorf("Providers[openai] = %+v", got)
		}
	})
}

func TestSetField(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the document when missing", func(t *testing.T) {
		store := storage.NewMemoryStore()

		if err := SetField(ctx, store, "selected_model", "deepseek-chat"); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}

		cfg, err := Load(ctx, store)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.SelectedModel != "deepseek-chat" {
			t.Errorf("SelectedModel = %q, want deepseek-chat", cfg.SelectedModel)
		}
	})

	t.Run("leaves sibling fields untouched", func(t *testing.T) {
		store := storage.NewMemoryStore()

		if err := SetField(ctx, store, "providers.openai.api_key", "sk-openai"); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}
		if err := SetField(ctx, store, "providers.doubao.api_key", "sk-doubao"); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}
		if err := SetField(ctx, store, "selected_model", "auto"); err != nil {
			t.Fatalf("SetField() error = %v", err)
		}

		cfg, err := Load(ctx, store)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Providers[ProviderOpenAI].APIKey != "sk-openai" {
			t.Errorf("openai api key = %q, want sk-openai", cfg.Providers[ProviderOpenAI].APIKey)
		}
		if cfg.Providers[ProviderDoubao].APIKey != "sk-doubao" {
			t.Errorf("doubao api key = %q, want sk-doubao", cfg.Providers[ProviderDoubao].APIKey)
		}
	})
}
