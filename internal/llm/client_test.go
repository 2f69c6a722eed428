package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.Models[TierLite])
	assert.NotEmpty(t, cfg.Models[TierProse])
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
}

func TestConfig_ModelFallsBackToProse(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierProse: "prose-model"}}

	assert.Equal(t, "prose-model", cfg.Model(TierLite))
	assert.Equal(t, "prose-model", cfg.Model(TierProse))
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, "", StripCodeFence("``````"))
}
