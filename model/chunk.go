package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents a stored document chunk
type Chunk struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	DocumentID int64     `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	StartPos   *int      `json:"start_pos,omitempty"`
	EndPos     *int      `json:"end_pos,omitempty"`
	ChunkIndex *int      `json:"chunk_index,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Result fields, populated by similarity queries
	Similarity *float64 `json:"similarity,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
}
