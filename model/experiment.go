package model

import (
	"time"

	"github.com/google/uuid"
)

// ExperimentConfig captures the tunable parameters of one retrieval experiment
type ExperimentConfig struct {
	ChunkSize      int    `json:"chunk_size"`
	TopK           int    `json:"top_k"`
	UseReranking   bool   `json:"use_reranking"`
	EmbeddingModel string `json:"embedding_model"`
	EmbeddingDim   int    `json:"embedding_dim"`
}

// Experiment represents the recorded outcome of one agent run with a given configuration
type Experiment struct {
	ID          int64              `json:"id"`
	RID         uuid.UUID          `json:"rid"`
	Config      ExperimentConfig   `json:"config"`
	Metrics     map[string]float64 `json:"metrics"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}
