package pipeline

import "github.com/DmitryB21/neurodoc/model"

// ChunkFunc is a function that splits text into spans ready for embedding
type ChunkFunc func(text string) ([]ChunkSpan, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// ChunkSpan represents one piece of a document produced by a chunker
type ChunkSpan struct {
	Content    string
	StartPos   *int
	EndPos     *int
	ChunkIndex *int
	Metadata   map[string]interface{}
}

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process processes text through the pipeline, returning chunks with embeddings
func (p *Pipeline) Process(text string) ([]*model.Chunk, error) {
	spans, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, 0, len(spans))
	for _, span := range spans {
		embedding, err := p.Embedder(span.Content)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, &model.Chunk{
			Content:    span.Content,
			Embedding:  embedding,
			StartPos:   span.StartPos,
			EndPos:     span.EndPos,
			ChunkIndex: span.ChunkIndex,
			Metadata:   span.Metadata,
		})
	}

	return chunks, nil
}
