package generation

import (
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMClient(t *testing.T) {
	t.Run("Stub provider needs no credentials", func(t *testing.T) {
		client, err := NewLLMClient(&Config{Provider: ProviderStub})
		require.NoError(t, err)
		assert.IsType(t, &StubClient{}, client)
	})

	t.Run("Claude provider requires API key", func(t *testing.T) {
		_, err := NewLLMClient(&Config{Provider: ProviderClaude})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("Claude provider with API key", func(t *testing.T) {
		client, err := NewLLMClient(&Config{Provider: ProviderClaude, APIKey: "test-key"})
		require.NoError(t, err)
		assert.IsType(t, &ClaudeClient{}, client)
	})

	t.Run("Gemini provider requires API key", func(t *testing.T) {
		_, err := NewLLMClient(&Config{Provider: ProviderGemini})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := NewLLMClient(&Config{Provider: "unknown"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider")
	})

	t.Run("Nil config", func(t *testing.T) {
		_, err := NewLLMClient(nil)
		assert.Error(t, err)
	})
}

func TestNewClaudeClient(t *testing.T) {
	t.Run("Defaults applied", func(t *testing.T) {
		client, err := NewClaudeClient(&Config{Provider: ProviderClaude, APIKey: "test-key"})
		require.NoError(t, err)
		assert.Equal(t, defaultClaudeModel, client.model)
		assert.Equal(t, 1024, client.maxTokens)
		assert.Equal(t, 60*time.Second, client.timeout)
	})

	t.Run("Text blocks concatenated, other block types skipped", func(t *testing.T) {
		blocks := []anthropic.ContentBlockUnion{
			{Type: "text", Text: "The payment service SLA "},
			{Type: "tool_use"},
			{Type: "text", Text: "is 99.9%."},
		}

		assert.Equal(t, "The payment service SLA is 99.9%.", textFromBlocks(blocks))
	})

	t.Run("No text blocks yields empty answer", func(t *testing.T) {
		assert.Equal(t, "", textFromBlocks([]anthropic.ContentBlockUnion{{Type: "tool_use"}}))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("Defaults without environment", func(t *testing.T) {
		config, err := NewConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderStub, config.Provider)
		assert.Equal(t, 1024, config.MaxTokens)
		assert.Equal(t, 60*time.Second, config.Timeout)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "claude")
		t.Setenv("LLM_API_KEY", "test-key")
		t.Setenv("LLM_MODEL", "claude-sonnet-4-20250514")
		t.Setenv("LLM_MAX_TOKENS", "2048")
		t.Setenv("LLM_TIMEOUT", "30s")

		config, err := NewConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderClaude, config.Provider)
		assert.Equal(t, "test-key", config.APIKey)
		assert.Equal(t, "claude-sonnet-4-20250514", config.Model)
		assert.Equal(t, 2048, config.MaxTokens)
		assert.Equal(t, 30*time.Second, config.Timeout)
	})

	t.Run("Invalid max tokens", func(t *testing.T) {
		t.Setenv("LLM_MAX_TOKENS", "not-a-number")

		_, err := NewConfigFromEnv()
		assert.Error(t, err)
	})

	t.Run("Invalid timeout", func(t *testing.T) {
		t.Setenv("LLM_TIMEOUT", "soon")

		_, err := NewConfigFromEnv()
		assert.Error(t, err)
	})
}
