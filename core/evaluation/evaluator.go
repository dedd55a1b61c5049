package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Metric keys returned by EvaluateAll
const (
	MetricFaithfulness    = "faithfulness"
	MetricAnswerRelevancy = "answer_relevancy"
)

// EvaluationError indicates an external judge failed. It is always recovered
// locally via the heuristic fallback and never reaches the caller.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Judge scores an answer externally, typically through a language model
type Judge interface {
	Judge(ctx context.Context, question string, answer string, contexts []string) (map[string]float64, error)
}

// Evaluator computes answer quality metrics. Without a judge it scores with
// deterministic lexical heuristics; with one it delegates and falls back to
// the heuristics on any judge error.
type Evaluator struct {
	judge  Judge
	logger *slog.Logger
}

// NewEvaluator creates a heuristic-only evaluator
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// NewJudgedEvaluator creates an evaluator that delegates to the given judge
func NewJudgedEvaluator(judge Judge, logger *slog.Logger) *Evaluator {
	evaluator := NewEvaluator(logger)
	evaluator.judge = judge
	return evaluator
}

// EvaluateAll returns faithfulness and answer relevancy, both in [0,1].
// It never fails: judge errors and out-of-range judge scores fall back to
// the heuristic baseline.
func (e *Evaluator) EvaluateAll(ctx context.Context, question string, answer string, contexts []string) map[string]float64 {
	if e.judge != nil {
		scores, err := e.judge.Judge(ctx, question, answer, contexts)
		if err != nil {
			e.logger.Warn("Judge failed, falling back to heuristic scoring", "error", err)
		} else if validScores(scores) {
			return map[string]float64{
				MetricFaithfulness:    scores[MetricFaithfulness],
				MetricAnswerRelevancy: scores[MetricAnswerRelevancy],
			}
		} else {
			e.logger.Warn("Judge returned invalid scores, falling back to heuristic scoring", "scores", scores)
		}
	}

	return map[string]float64{
		MetricFaithfulness:    e.faithfulness(answer, contexts),
		MetricAnswerRelevancy: e.answerRelevancy(question, answer),
	}
}

// faithfulness is high when a context appears verbatim in the answer,
// otherwise it scales with the share of answer tokens grounded in a context
func (e *Evaluator) faithfulness(answer string, contexts []string) float64 {
	if strings.TrimSpace(answer) == "" || len(contexts) == 0 {
		return 0
	}

	answerLower := strings.ToLower(answer)
	for _, contextText := range contexts {
		trimmed := strings.TrimSpace(contextText)
		if trimmed != "" && strings.Contains(answerLower, strings.ToLower(trimmed)) {
			return 0.92
		}
	}

	answerTokens := significantTokens(answer)
	if len(answerTokens) == 0 {
		return 0
	}

	best := 0.0
	for _, contextText := range contexts {
		contextTokens := significantTokens(contextText)
		matched := 0
		for token := range answerTokens {
			if _, ok := contextTokens[token]; ok {
				matched++
			}
		}
		overlap := float64(matched) / float64(len(answerTokens))
		if overlap > best {
			best = overlap
		}
	}

	return clamp01(0.25 + 0.65*best)
}

// answerRelevancy scales with how many of the question's significant tokens
// reappear in the answer
func (e *Evaluator) answerRelevancy(question string, answer string) float64 {
	questionTokens := significantTokens(question)
	if len(questionTokens) == 0 {
		return 0.5
	}

	answerTokens := significantTokens(answer)
	matched := 0
	for token := range questionTokens {
		if _, ok := answerTokens[token]; ok {
			matched++
		}
	}
	coverage := float64(matched) / float64(len(questionTokens))

	return clamp01(0.4 + 0.6*coverage)
}

func validScores(scores map[string]float64) bool {
	for _, key := range []string{MetricFaithfulness, MetricAnswerRelevancy} {
		value, ok := scores[key]
		if !ok || value < 0 || value > 1 {
			return false
		}
	}
	return true
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "why": {}, "when": {},
	"where": {}, "does": {}, "did": {}, "can": {}, "could": {}, "should": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "into": {}, "about": {},
	"has": {}, "have": {}, "had": {}, "not": {}, "you": {}, "all": {},
}

func significantTokens(text string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()[]")
		if len(word) <= 2 {
			continue
		}
		if _, ok := stopwords[word]; ok {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
