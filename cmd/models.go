package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"insight/internal/config"
	"insight/internal/storage"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show and configure AI model providers",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withConfig(func(ctx context.Context, store storage.Store) error {
				cfg, err := config.Load(ctx, store)
				if err != nil {
					return err
				}

				fmt.Printf("Selected model: %s\n\n", cfg.SelectedModel)
				for _, p := range []config.Provider{
					config.ProviderOpenAI,
					config.ProviderDeepSeek,
					config.ProviderDoubao,
				} {
					settings := cfg.Providers[p]
					key := "not set"
					if settings.APIKey != "" {
						key = "set"
					}
					model := settings.Model
					if model == "" {
						model = "(default)"
					}
					fmt.Printf("%-10s api key: %-8s model: %s\n", p, key, model)
				}

				if res, err := cfg.Resolve(cfg.SelectedModel); err == nil {
					fmt.Printf("\nNext turn would use %s / %s\n", res.Provider, res.ModelName)
				} else {
					fmt.Println("\nNo provider is usable; add an API key with: insight models set-key <provider> <key>")
				}
				return nil
			})
		},
	}

	cmd.AddCommand(newModelsUseCmd(), newModelsSetKeyCmd())
	return cmd
}

func withConfig(fn func(context.Context, storage.Store) error) error {
	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(context.Background(), store)
}

func newModelsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <model|auto>",
		Short: "Select the model for new turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withConfig(func(ctx context.Context, store storage.Store) error {
				return config.SetField(ctx, store, "selected_model", args[0])
			})
		},
	}
}

func newModelsSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider> <key>",
		Short: "Store a provider API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			switch config.Provider(args[0]) {
			case config.ProviderOpenAI, config.ProviderDeepSeek, config.ProviderDoubao:
			default:
				return fmt.Errorf("unknown provider %q", args[0])
			}
			return withConfig(func(ctx context.Context, store storage.Store) error {
				path := fmt.Sprintf("providers.%s.api_key", args[0])
				return config.SetField(ctx, store, path, args[1])
			})
		},
	}
}
