package agent

import (
	"fmt"
	"sync"
)

// State is one phase of the request pipeline
type State string

const (
	StateIdle                 State = "IDLE"
	StateValidateQuery        State = "VALIDATE_QUERY"
	StateRequestClarification State = "REQUEST_CLARIFICATION"
	StateRetrieve             State = "RETRIEVE"
	StateMetadataFilter       State = "METADATA_FILTER"
	StateRerank               State = "RERANK"
	StateGenerate             State = "GENERATE"
	StateValidateAnswer       State = "VALIDATE_ANSWER"
	StateLogMetrics           State = "LOG_METRICS"
	StateReturnResponse       State = "RETURN_RESPONSE"
)

// allowedTransitions is the explicit transition table of the pipeline.
// IDLE is reachable from every state so an aborted request can always be
// reset for the next one.
var allowedTransitions = map[State][]State{
	StateIdle:                 {StateValidateQuery},
	StateValidateQuery:        {StateRequestClarification, StateRetrieve},
	StateRequestClarification: {},
	StateRetrieve:             {StateMetadataFilter, StateRerank, StateGenerate},
	StateMetadataFilter:       {StateRerank, StateGenerate},
	StateRerank:               {StateGenerate},
	StateGenerate:             {StateValidateAnswer},
	StateValidateAnswer:       {StateLogMetrics},
	StateLogMetrics:           {StateReturnResponse},
	StateReturnResponse:       {},
}

// StateMachine tracks the current pipeline state and the ordered history of
// every transition. Transitions outside the table are rejected, concurrent
// use of one instance is serialized internally.
type StateMachine struct {
	mu      sync.Mutex
	current State
	history []State
}

// NewStateMachine creates a state machine in IDLE
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateIdle}
}

// TransitionTo moves to the next state and appends it to the history.
// Transitioning to IDLE is allowed from every state.
func (m *StateMachine) TransitionTo(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if next != StateIdle && !transitionAllowed(m.current, next) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, next)
	}

	m.current = next
	m.history = append(m.history, next)
	return nil
}

// Current returns the current state
func (m *StateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// History returns a copy of the ordered transition history
func (m *StateMachine) History() []State {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := make([]State, len(m.history))
	copy(history, m.history)
	return history
}

// Reset returns to IDLE and clears the history
func (m *StateMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = StateIdle
	m.history = nil
}

func transitionAllowed(from State, to State) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
