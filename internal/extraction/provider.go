package extraction

import (
	"context"
	"fmt"
)

// NewCompleter creates a completer based on configuration. "disabled"
// (and an unset provider) yields a NoOp completer, which makes the
// orchestrator skip the model pass entirely.
func NewCompleter(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "", "disabled":
		return &NoOpCompleter{}, nil
	}

	providerCfg, ok := cfg.Providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case "anthropic":
		return newAnthropicCompleter(providerCfg)
	case "openai":
		return newOpenAICompleter(providerCfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// NoOpCompleter is a no-op implementation of Completer.
type NoOpCompleter struct{}

// Complete always fails; NoOpCompleter exists so wiring never carries a
// nil Completer.
func (n *NoOpCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("model extraction disabled")
}

// Available returns false for NoOpCompleter.
func (n *NoOpCompleter) Available() bool { return false }

// Ensure interface is implemented.
var _ Completer = (*NoOpCompleter)(nil)
