package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

// ClaudeClient generates answers through the Anthropic API
type ClaudeClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewClaudeClient creates a client for the Anthropic API
func NewClaudeClient(config *Config) (*ClaudeClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required for the claude provider")
	}

	model := config.Model
	if model == "" {
		model = defaultClaudeModel
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	return &ClaudeClient{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     timeout,
	}, nil
}

// GenerateAnswer sends the prompt as a single user message and returns the
// concatenated text blocks of the response
func (c *ClaudeClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	answer := textFromBlocks(resp.Content)
	if answer == "" {
		return "", &GenerationError{Err: fmt.Errorf("no response generated")}
	}

	return answer, nil
}

// textFromBlocks concatenates the text blocks of a response, skipping
// tool use and other non-text block types
func textFromBlocks(blocks []anthropic.ContentBlockUnion) string {
	var answer strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			answer.WriteString(block.Text)
		}
	}
	return answer.String()
}
