package generation

import (
	"context"
	"regexp"
	"strings"
)

// NoInformationAnswer is what the stub answers when the prompt carries the
// no-information marker
const NoInformationAnswer = "I could not find any relevant information in the knowledge base to answer this question."

var sourceTagPattern = regexp.MustCompile(`\[Source \d+\] ?`)

// StubClient is a deterministic offline language model. It answers by echoing
// the context section of the prompt, which keeps the full pipeline runnable
// in tests and development without any API credentials.
type StubClient struct{}

// NewStubClient creates a new stub client
func NewStubClient() *StubClient {
	return &StubClient{}
}

// GenerateAnswer extracts the context section of the prompt and returns it as
// the answer. Prompts carrying the no-information marker get the fixed
// no-information answer.
func (c *StubClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &GenerationError{Err: err}
	}

	contextText := extractContext(prompt)

	if contextText == "" || strings.Contains(contextText, NoInformationMarker) {
		return NoInformationAnswer, nil
	}

	return "Based on the indexed documents: " + contextText, nil
}

// extractContext returns the text between the context header and the question
// line, with source tags stripped
func extractContext(prompt string) string {
	start := strings.Index(prompt, contextHeader)
	if start < 0 {
		return ""
	}
	start += len(contextHeader)

	end := strings.Index(prompt[start:], questionPrefix)
	if end < 0 {
		end = len(prompt) - start
	}

	contextText := prompt[start : start+end]
	contextText = sourceTagPattern.ReplaceAllString(contextText, "")

	var lines []string
	for _, line := range strings.Split(contextText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, " ")
}
