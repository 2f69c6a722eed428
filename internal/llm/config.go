// Package llm provides the text-generation client abstraction used by the
// content generator, with model tiers and a bounded per-request timeout.
package llm

import "time"

// ModelTier selects model capability for a request.
type ModelTier string

const (
	// TierLite is for short mechanical tasks: summaries, normalization.
	TierLite ModelTier = "lite"
	// TierProse is for chapter prose generation.
	TierProse ModelTier = "prose"
)

// Provider identifies a text-generation provider.
type Provider string

// ProviderGemini is the Google Gemini provider.
const ProviderGemini Provider = "gemini"

// Config holds provider and model selection plus request bounds.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// RequestTimeout bounds every generation call. Chapter generation
	// substitutes placeholder text when a call exceeds it.
	RequestTimeout time.Duration
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:  "gemini-2.5-flash-lite",
			TierProse: "gemini-2.5-flash",
		},
		RequestTimeout: 90 * time.Second,
	}
}

// Model returns the model name for tier, falling back to the prose model.
func (c *Config) Model(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierProse]
}
