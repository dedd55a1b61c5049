package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DmitryB21/neurodoc/core/evaluation"
	"github.com/DmitryB21/neurodoc/core/generation"
	"github.com/DmitryB21/neurodoc/core/rerank"
	"github.com/DmitryB21/neurodoc/core/retrieval"
	"github.com/DmitryB21/neurodoc/database"
	"github.com/DmitryB21/neurodoc/model"
)

// Controller sequences one ask request through the pipeline:
// validate, retrieve, filter, rerank, generate, evaluate, log, respond.
// Each request runs synchronously to completion. Retrieval and generation
// failures propagate to the caller, validation is answered with a
// clarification and evaluation failures never surface.
type Controller struct {
	retriever   retrieval.Retriever
	filter      *retrieval.MetadataFilter
	reranker    *rerank.Reranker
	prompts     *generation.PromptBuilder
	llm         generation.LLMClient
	evaluator   *evaluation.Evaluator
	validator   *QueryValidator
	state       *StateMachine
	decisions   *DecisionLog
	experiments database.ExperimentsDBHandlerFunctions
	logger      *slog.Logger
}

// NewController creates a controller over the given collaborators.
// The evaluator may be nil, in which case heuristic scoring is used.
func NewController(retriever retrieval.Retriever, llm generation.LLMClient, evaluator *evaluation.Evaluator, logger *slog.Logger) (*Controller, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever is nil")
	}
	if llm == nil {
		return nil, fmt.Errorf("llm client is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if evaluator == nil {
		evaluator = evaluation.NewEvaluator(logger)
	}

	return &Controller{
		retriever: retriever,
		filter:    retrieval.NewMetadataFilter(),
		reranker:  rerank.NewReranker(),
		prompts:   generation.NewPromptBuilder(),
		llm:       llm,
		evaluator: evaluator,
		validator: NewQueryValidator(),
		state:     NewStateMachine(),
		decisions: NewDecisionLog(),
		logger:    logger,
	}, nil
}

// SetExperimentsHandler enables persisting per-request metrics as experiments
func (c *Controller) SetExperimentsHandler(experiments database.ExperimentsDBHandlerFunctions) {
	c.experiments = experiments
}

// SetPromptBuilder replaces the default prompt builder
func (c *Controller) SetPromptBuilder(prompts *generation.PromptBuilder) {
	if prompts != nil {
		c.prompts = prompts
	}
}

// StateMachine exposes the pipeline state machine, mainly for inspection
func (c *Controller) StateMachine() *StateMachine {
	return c.state
}

// DecisionLog exposes the append-only decision log
func (c *Controller) DecisionLog() *DecisionLog {
	return c.decisions
}

// Ask runs the full pipeline for one query and returns the agent response.
// Underspecified queries short-circuit with a clarification answer and no
// sources. Zero retrieved chunks still produce an answer, generated from the
// explicit no-information prompt, with no fabricated sources.
func (c *Controller) Ask(ctx context.Context, query string, options model.AskOptions) (*model.AgentResponse, error) {
	start := time.Now()

	if options.TopK <= 0 {
		options.TopK = model.DefaultAskOptions().TopK
	}

	err := c.state.TransitionTo(StateValidateQuery)
	if err != nil {
		return nil, err
	}
	c.logStep(StateValidateQuery, "validate_query", query, "", nil)

	validationErr := c.validator.Validate(query)
	if validationErr != nil {
		if err := c.state.TransitionTo(StateRequestClarification); err != nil {
			return nil, err
		}
		c.logStep(StateRequestClarification, "request_clarification", query, validationErr.Clarification, map[string]interface{}{
			"reason":     validationErr.Reason,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		c.logger.Info("Query needs clarification", "reason", validationErr.Reason)

		c.state.TransitionTo(StateIdle)
		return &model.AgentResponse{
			Answer:  validationErr.Clarification,
			Metrics: map[string]float64{},
		}, nil
	}

	err = c.state.TransitionTo(StateRetrieve)
	if err != nil {
		return nil, err
	}
	chunks, err := c.retriever.Retrieve(ctx, query, options.TopK)
	if err != nil {
		c.abort(StateRetrieve, "retrieve", err)
		return nil, err
	}
	c.logStep(StateRetrieve, "retrieve", query, fmt.Sprintf("%d chunks", len(chunks)), nil)

	if options.HasMetadataFilter() {
		err = c.state.TransitionTo(StateMetadataFilter)
		if err != nil {
			return nil, err
		}
		before := len(chunks)
		chunks = c.filter.Filter(chunks, options)
		c.logStep(StateMetadataFilter, "metadata_filter", fmt.Sprintf("%d chunks", before), fmt.Sprintf("%d chunks", len(chunks)), nil)
	}

	if options.UseReranking && len(chunks) > 0 {
		err = c.state.TransitionTo(StateRerank)
		if err != nil {
			return nil, err
		}
		topK := options.RerankTopK
		if topK <= 0 {
			topK = options.TopK
		}
		reranked := c.reranker.Rerank(query, chunks, topK)
		chunks = make([]*model.RetrievedChunk, len(reranked))
		for i, rerankedChunk := range reranked {
			chunks[i] = &model.RetrievedChunk{
				ID:       rerankedChunk.ID,
				Text:     rerankedChunk.Text,
				Score:    rerankedChunk.RerankScore,
				Metadata: rerankedChunk.Metadata,
			}
		}
		c.logStep(StateRerank, "rerank", query, fmt.Sprintf("%d chunks", len(chunks)), nil)
	}

	err = c.state.TransitionTo(StateGenerate)
	if err != nil {
		return nil, err
	}
	prompt := c.prompts.Build(query, chunks)
	answer, err := c.llm.GenerateAnswer(ctx, prompt)
	if err != nil {
		c.abort(StateGenerate, "generate", err)
		return nil, err
	}
	c.logStep(StateGenerate, "generate", shorten(prompt, 120), shorten(answer, 120), nil)

	err = c.state.TransitionTo(StateValidateAnswer)
	if err != nil {
		return nil, err
	}
	contextTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		contextTexts[i] = chunk.Text
	}
	metrics := c.evaluator.EvaluateAll(ctx, query, answer, contextTexts)
	if len(options.GroundTruthRelevant) > 0 {
		metrics["precision_at_k"] = precisionAtK(chunks, options.GroundTruthRelevant)
	}
	c.logStep(StateValidateAnswer, "evaluate", query, fmt.Sprintf("%v", metrics), nil)

	err = c.state.TransitionTo(StateLogMetrics)
	if err != nil {
		return nil, err
	}
	c.logStep(StateLogMetrics, "log_metrics", "", "", map[string]interface{}{"metrics": metrics})
	c.recordExperiment(query, options, metrics)

	err = c.state.TransitionTo(StateReturnResponse)
	if err != nil {
		return nil, err
	}
	response := &model.AgentResponse{
		Answer:  answer,
		Sources: sourcesFromChunks(chunks),
		Metrics: metrics,
	}
	c.logStep(StateReturnResponse, "respond", "", shorten(answer, 120), map[string]interface{}{
		"latency_ms": time.Since(start).Milliseconds(),
	})

	c.state.TransitionTo(StateIdle)
	return response, nil
}

// abort returns the state machine to IDLE after a collaborator failure so the
// instance stays usable for the next request
func (c *Controller) abort(state State, action string, err error) {
	c.logStep(state, action, "", "", map[string]interface{}{"error": err.Error()})
	c.logger.Error("Pipeline aborted", "action", action, "error", err)
	c.state.TransitionTo(StateIdle)
}

func (c *Controller) logStep(state State, action string, input string, output string, metadata map[string]interface{}) {
	c.decisions.Append(DecisionLogEntry{
		State:    state,
		Action:   action,
		Input:    input,
		Output:   output,
		Metadata: metadata,
	})
	c.logger.Debug("Pipeline step", "state", string(state), "action", action)
}

func (c *Controller) recordExperiment(query string, options model.AskOptions, metrics map[string]float64) {
	if c.experiments == nil {
		return
	}

	experiment := &model.Experiment{
		Config: model.ExperimentConfig{
			TopK:         options.TopK,
			UseReranking: options.UseReranking,
		},
		Metrics:     metrics,
		Description: shorten(query, 200),
	}
	err := c.experiments.InsertExperiment(experiment)
	if err != nil {
		c.logger.Warn("Failed to record experiment", "error", err)
	}
}

// precisionAtK is the share of returned chunks that are known to be relevant
func precisionAtK(chunks []*model.RetrievedChunk, relevant []string) float64 {
	if len(chunks) == 0 {
		return 0
	}

	relevantSet := map[string]struct{}{}
	for _, id := range relevant {
		relevantSet[id] = struct{}{}
	}

	hits := 0
	for _, chunk := range chunks {
		if _, ok := relevantSet[chunk.ID]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(chunks))
}

func sourcesFromChunks(chunks []*model.RetrievedChunk) []model.Source {
	sources := make([]model.Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, model.Source{
			ID:       chunk.ID,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}
	return sources
}

// shorten truncates log excerpts to max runes, never splitting a multi-byte
// character
func shorten(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
