package model

// AskOptions represents per-query configuration for the agent pipeline
type AskOptions struct {
	// Number of chunks to retrieve
	TopK int `json:"top_k"`
	// Minimum similarity score for retrieved chunks (0 disables the threshold)
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`

	// Reranking
	UseReranking bool `json:"use_reranking"`
	// Number of chunks kept after reranking (defaults to TopK)
	RerankTopK int `json:"rerank_top_k,omitempty"`

	// Metadata filtering of retrieved chunks
	FilterSource   string `json:"filter_source,omitempty"`
	FilterCategory string `json:"filter_category,omitempty"`
	FilterPath     string `json:"filter_path,omitempty"`
	FilterTag      string `json:"filter_tag,omitempty"`

	// Chunk IDs known to be relevant, used for precision@K (optional)
	GroundTruthRelevant []string `json:"ground_truth_relevant,omitempty"`
}

// DefaultAskOptions returns a sensible default configuration
func DefaultAskOptions() AskOptions {
	return AskOptions{
		TopK:                3,
		SimilarityThreshold: 0,
		UseReranking:        false,
	}
}

// HasMetadataFilter reports whether any metadata filter criterion is set
func (o AskOptions) HasMetadataFilter() bool {
	return o.FilterSource != "" || o.FilterCategory != "" || o.FilterPath != "" || o.FilterTag != ""
}
