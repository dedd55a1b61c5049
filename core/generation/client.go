package generation

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// GenerationError indicates the language model backend failed.
// It propagates to the caller, generation failures are not recovered locally.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// LLMClient generates an answer for a fully built prompt
type LLMClient interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// ProviderType selects the language model backend
type ProviderType string

const (
	ProviderClaude ProviderType = "claude"
	ProviderGemini ProviderType = "gemini"
	ProviderStub   ProviderType = "stub"
)

// Config holds the language model client configuration
type Config struct {
	Provider    ProviderType
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// NewConfigFromEnv reads the LLM configuration from environment variables.
// Loads a .env file first if one is present. LLM_PROVIDER defaults to stub,
// so the agent runs without credentials out of the box.
func NewConfigFromEnv() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Provider:    ProviderStub,
		APIKey:      os.Getenv("LLM_API_KEY"),
		Model:       os.Getenv("LLM_MODEL"),
		MaxTokens:   1024,
		Temperature: 0,
		Timeout:     60 * time.Second,
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.Provider = ProviderType(provider)
	}
	if maxTokens := os.Getenv("LLM_MAX_TOKENS"); maxTokens != "" {
		parsed, err := strconv.Atoi(maxTokens)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_MAX_TOKENS %q: %w", maxTokens, err)
		}
		config.MaxTokens = parsed
	}
	if temperature := os.Getenv("LLM_TEMPERATURE"); temperature != "" {
		parsed, err := strconv.ParseFloat(temperature, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", temperature, err)
		}
		config.Temperature = float32(parsed)
	}
	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", timeout, err)
		}
		config.Timeout = parsed
	}

	return config, nil
}

// NewLLMClient creates the client for the configured provider
func NewLLMClient(config *Config) (LLMClient, error) {
	if config == nil {
		return nil, fmt.Errorf("config is nil")
	}

	switch config.Provider {
	case ProviderClaude:
		return NewClaudeClient(config)
	case ProviderGemini:
		return NewGeminiClient(config)
	case ProviderStub:
		return NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s (use 'claude', 'gemini' or 'stub')", config.Provider)
	}
}
