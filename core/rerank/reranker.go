package rerank

import (
	"sort"
	"strings"

	"github.com/DmitryB21/neurodoc/model"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {},
	"what": {}, "which": {}, "who": {}, "how": {}, "why": {}, "when": {},
	"where": {}, "does": {}, "did": {}, "can": {}, "could": {}, "should": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "into": {}, "about": {},
	"his": {}, "her": {}, "its": {}, "our": {}, "their": {}, "your": {},
	"has": {}, "have": {}, "had": {}, "not": {}, "you": {}, "all": {},
}

// Reranker reorders retrieved chunks by mixing the original retrieval score
// with a keyword overlap score between query and chunk text. Scoring is fully
// deterministic, identical inputs always produce identical ordering.
type Reranker struct {
	// Weight of the original retrieval score, the keyword score gets the rest
	OriginalWeight float64
}

// NewReranker creates a reranker with the default weighting
func NewReranker() *Reranker {
	return &Reranker{OriginalWeight: 0.7}
}

// Rerank scores and reorders the chunks, returning at most topK of them.
// Every rerank score lies in [0,1]. Ties keep the original retrieval order.
func (r *Reranker) Rerank(query string, chunks []*model.RetrievedChunk, topK int) []*model.RerankedChunk {
	queryKeywords := keywords(query)

	reranked := make([]*model.RerankedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		keywordScore := r.keywordScore(queryKeywords, keywords(chunk.Text))
		score := r.OriginalWeight*clamp01(chunk.Score) + (1-r.OriginalWeight)*keywordScore

		reranked = append(reranked, &model.RerankedChunk{
			ID:          chunk.ID,
			Text:        chunk.Text,
			Score:       chunk.Score,
			Metadata:    chunk.Metadata,
			RerankScore: clamp01(score),
		})
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankScore > reranked[j].RerankScore
	})

	if topK > 0 && len(reranked) > topK {
		reranked = reranked[:topK]
	}

	return reranked
}

// keywordScore mixes Jaccard similarity with query keyword coverage.
// Coverage weighs how many of the query's keywords appear in the chunk,
// Jaccard penalizes chunks that bury them in unrelated text.
func (r *Reranker) keywordScore(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}

	intersection := 0
	for word := range query {
		if _, ok := chunk[word]; ok {
			intersection++
		}
	}

	union := len(query) + len(chunk) - intersection
	jaccard := float64(intersection) / float64(union)
	coverage := float64(intersection) / float64(len(query))

	return 0.6*jaccard + 0.4*coverage
}

// keywords extracts lowercase significant words, dropping stopwords and
// anything shorter than three characters
func keywords(text string) map[string]struct{} {
	result := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()[]")
		if len(word) <= 2 {
			continue
		}
		if _, ok := stopwords[word]; ok {
			continue
		}
		result[word] = struct{}{}
	}
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
