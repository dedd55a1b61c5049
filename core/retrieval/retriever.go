package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DmitryB21/neurodoc/core/pipeline"
	"github.com/DmitryB21/neurodoc/database"
	"github.com/DmitryB21/neurodoc/model"
)

// RetrievalError indicates the vector search backend failed.
// It propagates to the caller, retrieval failures are not recovered locally.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Retriever returns the top k passages for a query, ordered by relevance
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]*model.RetrievedChunk, error)
}

// VectorRetriever retrieves chunks from the database by embedding similarity
type VectorRetriever struct {
	chunks              database.ChunksDBHandlerFunctions
	embedder            pipeline.EmbedFunc
	similarityThreshold float64
}

// NewVectorRetriever creates a retriever over the chunks table.
// The threshold is passed through to the similarity search, <= 0 disables it.
func NewVectorRetriever(chunks database.ChunksDBHandlerFunctions, embedder pipeline.EmbedFunc, similarityThreshold float64) (*VectorRetriever, error) {
	if chunks == nil {
		return nil, fmt.Errorf("chunks handler is nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	return &VectorRetriever{
		chunks:              chunks,
		embedder:            embedder,
		similarityThreshold: similarityThreshold,
	}, nil
}

// Retrieve embeds the query and returns the k most similar chunks
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]*model.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RetrievalError{Err: err}
	}

	embedding, err := r.embedder(query)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	chunks, err := r.chunks.SelectChunksBySimilarity(embedding, k, r.similarityThreshold)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	retrieved := make([]*model.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		score := 0.0
		if chunk.Similarity != nil {
			score = *chunk.Similarity
		}

		metadata := map[string]interface{}{}
		for key, value := range chunk.Metadata {
			metadata[key] = value
		}
		metadata["document_id"] = chunk.DocumentID

		retrieved = append(retrieved, &model.RetrievedChunk{
			ID:       chunk.RID.String(),
			Text:     chunk.Content,
			Score:    score,
			Metadata: metadata,
		})
	}

	return retrieved, nil
}

// StaticRetriever is a deterministic in-memory retriever over fixed passages.
// It scores by lexical word overlap between query and passage, useful for
// tests and for running the agent without a database or embedding model.
type StaticRetriever struct {
	passages []*model.RetrievedChunk
}

// NewStaticRetriever creates a retriever over the given passages
func NewStaticRetriever(passages []*model.RetrievedChunk) *StaticRetriever {
	return &StaticRetriever{passages: passages}
}

// Retrieve returns the k passages with the highest word overlap with the query.
// Passages with no overlap are skipped. Ties keep the original passage order.
func (r *StaticRetriever) Retrieve(ctx context.Context, query string, k int) ([]*model.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RetrievalError{Err: err}
	}

	queryWords := wordSet(query)

	var scored []*model.RetrievedChunk
	for _, passage := range r.passages {
		overlap := overlapRatio(queryWords, wordSet(passage.Text))
		if overlap <= 0 {
			continue
		}
		scored = append(scored, &model.RetrievedChunk{
			ID:       passage.ID,
			Text:     passage.Text,
			Score:    overlap,
			Metadata: passage.Metadata,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}

func wordSet(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()[]")
		if word != "" {
			words[word] = struct{}{}
		}
	}
	return words
}

func overlapRatio(query, passage map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for word := range query {
		if _, ok := passage[word]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
