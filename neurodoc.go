package neurodoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/DmitryB21/neurodoc/core/agent"
	"github.com/DmitryB21/neurodoc/core/evaluation"
	"github.com/DmitryB21/neurodoc/core/generation"
	"github.com/DmitryB21/neurodoc/core/pipeline"
	"github.com/DmitryB21/neurodoc/core/retrieval"
	"github.com/DmitryB21/neurodoc/database"
	"github.com/DmitryB21/neurodoc/helper"
	"github.com/DmitryB21/neurodoc/model"
	loadSql "github.com/DmitryB21/neurodoc/sql"
)

// Assistant provides a unified interface to the document assistant:
// database handlers, the processing pipeline and the agent controller
type Assistant struct {
	DB          *helper.Database
	Documents   *database.DocumentsDBHandler
	Chunks      *database.ChunksDBHandler
	Experiments *database.ExperimentsDBHandler
	Pipeline    *pipeline.Pipeline // Optional chunking pipeline
	Retriever   *retrieval.VectorRetriever
	LLM         generation.LLMClient
	Controller  *agent.Controller
	// Logging
	log *slog.Logger

	embeddingDim        int
	similarityThreshold float64
	evaluator           *evaluation.Evaluator
}

// NewAssistant creates a new Assistant instance with all handlers initialized.
// If llm is nil the client is built from the environment (LLM_PROVIDER etc.),
// defaulting to the deterministic stub provider.
func NewAssistant(config *helper.DatabaseConfiguration, embeddingDim int, llm generation.LLMClient) (*Assistant, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("neurodoc", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (documents first, then chunks)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	experiments, err := database.NewExperimentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create experiments handler", err)
	}

	if llm == nil {
		llmConfig, err := generation.NewConfigFromEnv()
		if err != nil {
			return nil, helper.NewError("load llm configuration", err)
		}
		llm, err = generation.NewLLMClient(llmConfig)
		if err != nil {
			return nil, helper.NewError("create llm client", err)
		}
	}

	return &Assistant{
		DB:           db,
		Documents:    documents,
		Chunks:       chunks,
		Experiments:  experiments,
		LLM:          llm,
		log:          logger,
		embeddingDim: embeddingDim,
		evaluator:    evaluation.NewEvaluator(logger),
	}, nil
}

// Close closes the database connection
func (a *Assistant) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetSimilarityThreshold sets the minimum similarity for retrieved chunks.
// Must be called before SetPipeline, <= 0 disables the threshold.
func (a *Assistant) SetSimilarityThreshold(threshold float64) {
	a.similarityThreshold = threshold
}

// UseLLMJudge switches answer evaluation from the lexical heuristics to an
// LLM judge backed by the assistant's client. Must be called before SetPipeline.
func (a *Assistant) UseLLMJudge() error {
	judge, err := evaluation.NewLLMJudge(a.LLM)
	if err != nil {
		return helper.NewError("create llm judge", err)
	}
	a.evaluator = evaluation.NewJudgedEvaluator(judge, a.log)
	return nil
}

// SetPipeline sets the chunking pipeline for document processing and wires
// the retriever and agent controller on top of its embedder
func (a *Assistant) SetPipeline(p *pipeline.Pipeline) error {
	if p == nil || p.Embedder == nil {
		return helper.NewError("set pipeline", fmt.Errorf("pipeline with embedder is required"))
	}
	a.Pipeline = p

	retriever, err := retrieval.NewVectorRetriever(a.Chunks, p.Embedder, a.similarityThreshold)
	if err != nil {
		return helper.NewError("create retriever", err)
	}
	a.Retriever = retriever

	controller, err := agent.NewController(retriever, a.LLM, a.evaluator, a.log)
	if err != nil {
		return helper.NewError("create agent controller", err)
	}
	controller.SetExperimentsHandler(a.Experiments)
	a.Controller = controller

	return nil
}

// UseDefaultPipeline sets up the default semantic chunking and embedding pipeline.
// This uses DefaultChunker with 500 char max chunks and 0.7 similarity threshold,
// and DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions)
func (a *Assistant) UseDefaultPipeline() error {
	chunker := pipeline.DefaultChunker(500, 0.7)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	return a.SetPipeline(pipeline.NewPipeline(chunker, embedder))
}

// ProcessAndInsertDocument processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Processing the content into chunks using the pipeline
// 3. Inserting all chunks with the document ID
// The document's Content field is used for processing but not stored in the database.
// Returns the number of chunks inserted and any error encountered.
func (a *Assistant) ProcessAndInsertDocument(doc *model.Document) (int, error) {
	if a.Pipeline == nil {
		return 0, helper.NewError("process document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if doc.Content == "" {
		return 0, helper.NewError("process document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	// Insert document metadata
	if err := a.Documents.InsertDocument(doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	a.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("title", doc.Title))

	// Process content into chunks
	chunks, err := a.Pipeline.Process(content)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	a.log.Info("Processed document into chunks", slog.Int("num_chunks", len(chunks)), slog.String("document_id", doc.RID.String()))

	// Insert all chunks
	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := a.Chunks.InsertChunk(chunk); err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	return len(chunks), nil
}

// Ask runs the full agent pipeline for a question: query validation,
// retrieval, optional filtering and reranking, generation and evaluation
func (a *Assistant) Ask(ctx context.Context, query string, options model.AskOptions) (*model.AgentResponse, error) {
	if a.Controller == nil {
		return nil, helper.NewError("ask", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Controller.Ask(ctx, query, options)
}

// Search performs vector similarity search without the agent pipeline
func (a *Assistant) Search(ctx context.Context, query string, k int) ([]*model.RetrievedChunk, error) {
	if a.Retriever == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Retriever.Retrieve(ctx, query, k)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (a *Assistant) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return a.Chunks.ChangeIndexType(ctx, indexType, params)
}
