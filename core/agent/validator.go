package agent

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError indicates a malformed or underspecified query. It is
// handled locally by the controller with a clarification response and never
// propagates to the caller.
type ValidationError struct {
	Reason        string
	Clarification string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// Queries matching one of these are too vague to retrieve anything useful
var ambiguousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(what|how|why|when|where|who)\s*\?*$`),
	regexp.MustCompile(`(?i)^(help|info|hello|hi|test)\s*!*\?*$`),
	regexp.MustCompile(`(?i)^(tell me more|more|and|ok|yes|no)\s*\?*$`),
}

// Short queries naming a concrete domain term are still answerable
var contextKeywords = []string{
	"sla", "api", "service", "limit", "rate", "deploy", "rollback",
	"error", "timeout", "cache", "queue", "incident", "oncall", "release",
}

// QueryValidator decides whether a query is specific enough to run the
// retrieval pipeline for
type QueryValidator struct {
	// Queries shorter than this need a domain keyword to pass
	MinLength int
}

// NewQueryValidator creates a validator with the default minimum length
func NewQueryValidator() *QueryValidator {
	return &QueryValidator{MinLength: 20}
}

// Validate returns nil for an answerable query, otherwise a ValidationError
// carrying the clarification question to send back to the user
func (v *QueryValidator) Validate(query string) *ValidationError {
	trimmed := strings.TrimSpace(query)

	if trimmed == "" {
		return &ValidationError{
			Reason:        "empty query",
			Clarification: "Please ask a question, for example: \"What is the SLA for the payment service?\"",
		}
	}

	for _, pattern := range ambiguousPatterns {
		if pattern.MatchString(trimmed) {
			return &ValidationError{
				Reason:        "ambiguous query",
				Clarification: "Could you be more specific? Name the service, document or topic you are asking about.",
			}
		}
	}

	if len(trimmed) < v.MinLength && !containsContextKeyword(trimmed) {
		return &ValidationError{
			Reason:        "query below minimum length",
			Clarification: "Your question is very short. Could you add more detail, for example which service or setting you mean?",
		}
	}

	return nil
}

func containsContextKeyword(query string) bool {
	lower := strings.ToLower(query)
	for _, keyword := range contextKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
