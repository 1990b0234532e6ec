package config

import (
	"errors"
	"strings"
)

// ErrNoProvider signals that no provider has a usable credential. Callers
// must surface this as a turn-level failure without attempting a network
// call.
var ErrNoProvider = errors.New("config: no provider with a usable API key")

// Resolution is the addressing information for one turn.
type Resolution struct {
	Provider  Provider
	ModelName string
	APIKey    string
}

// Resolve picks exactly one (provider, model, credential) triple for the
// given selection.
//
// auto selections walk the provider priority order and take the first
// provider with a credential. A concrete selection is routed to its owning
// provider by model-name prefix; if that provider has no credential the
// selection falls back to the full auto cascade, so a turn is never blocked
// solely because the last-chosen model lost its credential while some other
// credential exists.
func (c *Config) Resolve(selection string) (Resolution, error) {
	if selection == "" || selection == SelectionAuto {
		return c.resolveAuto()
	}

	for _, rule := range modelPrefixes {
		if !strings.HasPrefix(selection, rule.prefix) {
			continue
		}
		if key := c.apiKey(rule.provider); key != "" {
			return Resolution{
				Provider:  rule.provider,
				ModelName: selection,
				APIKey:    key,
			}, nil
		}
		break
	}

	// Unknown prefix, or owning provider has no credential.
	return c.resolveAuto()
}

func (c *Config) resolveAuto() (Resolution, error) {
	for _, p := range providerPriority {
		if key := c.apiKey(p); key != "" {
			return Resolution{
				Provider:  p,
				ModelName: c.model(p),
				APIKey:    key,
			}, nil
		}
	}
	return Resolution{}, ErrNoProvider
}
