package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DmitryB21/neurodoc/core/generation"
)

// LLMJudge scores answers by asking a language model for a JSON verdict
type LLMJudge struct {
	client generation.LLMClient
}

// NewLLMJudge creates a judge over the given language model client
func NewLLMJudge(client generation.LLMClient) (*LLMJudge, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is nil")
	}
	return &LLMJudge{client: client}, nil
}

// Judge asks the model to score the answer and parses the JSON verdict.
// Any transport or parse failure is returned as an EvaluationError for the
// evaluator to recover from.
func (j *LLMJudge) Judge(ctx context.Context, question string, answer string, contexts []string) (map[string]float64, error) {
	prompt := j.buildJudgePrompt(question, answer, contexts)

	response, err := j.client.GenerateAnswer(ctx, prompt)
	if err != nil {
		return nil, &EvaluationError{Err: err}
	}

	scores, err := parseVerdict(response)
	if err != nil {
		return nil, &EvaluationError{Err: err}
	}

	return scores, nil
}

func (j *LLMJudge) buildJudgePrompt(question string, answer string, contexts []string) string {
	var prompt strings.Builder

	prompt.WriteString("You are grading a question answering system. ")
	prompt.WriteString("Score faithfulness (is the answer supported by the context?) and answer_relevancy (does the answer address the question?), both between 0 and 1.\n\n")

	prompt.WriteString("Context:\n")
	if len(contexts) == 0 {
		prompt.WriteString("(none)\n")
	}
	for _, contextText := range contexts {
		prompt.WriteString("- ")
		prompt.WriteString(contextText)
		prompt.WriteString("\n")
	}

	prompt.WriteString("\nQuestion: ")
	prompt.WriteString(question)
	prompt.WriteString("\nAnswer: ")
	prompt.WriteString(answer)
	prompt.WriteString("\n\nRespond with only a JSON object: {\"faithfulness\": <float>, \"answer_relevancy\": <float>}")

	return prompt.String()
}

// parseVerdict extracts the first JSON object from the model response
func parseVerdict(response string) (map[string]float64, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in judge response")
	}

	scores := map[string]float64{}
	err := json.Unmarshal([]byte(response[start:end+1]), &scores)
	if err != nil {
		return nil, fmt.Errorf("invalid judge response: %w", err)
	}

	return scores, nil
}
