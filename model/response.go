package model

// AgentResponse is the result of one full agent pipeline run.
// It is created once per query and immutable after construction.
type AgentResponse struct {
	Answer  string             `json:"answer"`
	Sources []Source           `json:"sources"`
	Metrics map[string]float64 `json:"metrics"`
}
