package model

// RetrievedChunk represents a passage returned by the retriever.
// It is produced once per query and never mutated afterwards.
type RetrievedChunk struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// RerankedChunk is a RetrievedChunk with a secondary relevance score.
// RerankScore is always in [0,1]; slices of RerankedChunk are ordered
// by RerankScore descending.
type RerankedChunk struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Score       float64  `json:"score"`
	RerankScore float64  `json:"rerank_score"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Source represents a cited passage in an agent response
type Source struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata,omitempty"`
}
