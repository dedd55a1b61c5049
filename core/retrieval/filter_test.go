package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitryB21/neurodoc/model"
)

func testChunks() []*model.RetrievedChunk {
	return []*model.RetrievedChunk{
		{ID: "1", Text: "chunk one", Score: 0.9, Metadata: map[string]interface{}{
			"source": "docs/api.md", "category": "reference", "path": "docs/api/limits", "tags": []string{"api", "limits"},
		}},
		{ID: "2", Text: "chunk two", Score: 0.8, Metadata: map[string]interface{}{
			"source": "docs/sla.md", "category": "policy", "path": "docs/sla/payment", "tags": []interface{}{"sla", "payment"},
		}},
		{ID: "3", Text: "chunk three", Score: 0.7, Metadata: map[string]interface{}{
			"source": "docs/api.md", "category": "guide",
		}},
		{ID: "4", Text: "chunk four", Score: 0.6, Metadata: nil},
	}
}

func TestMetadataFilter(t *testing.T) {
	filter := NewMetadataFilter()

	t.Run("No criteria returns input unchanged", func(t *testing.T) {
		chunks := testChunks()
		filtered := filter.Filter(chunks, model.AskOptions{})
		assert.Equal(t, chunks, filtered)
	})

	t.Run("Filter by source", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterSource: "docs/api.md"})
		require.Len(t, filtered, 2)
		assert.Equal(t, "1", filtered[0].ID)
		assert.Equal(t, "3", filtered[1].ID)
	})

	t.Run("Filter by category", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterCategory: "policy"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "2", filtered[0].ID)
	})

	t.Run("Filter by path substring", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterPath: "sla"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "2", filtered[0].ID)
	})

	t.Run("Filter by tag with string slice", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterTag: "limits"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "1", filtered[0].ID)
	})

	t.Run("Filter by tag with interface slice", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterTag: "payment"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "2", filtered[0].ID)
	})

	t.Run("Combined criteria", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterSource: "docs/api.md", FilterCategory: "guide"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "3", filtered[0].ID)
	})

	t.Run("Chunks without metadata never match criteria", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterSource: "docs/api.md"})
		for _, chunk := range filtered {
			assert.NotEqual(t, "4", chunk.ID)
		}
	})

	t.Run("Order is preserved", func(t *testing.T) {
		filtered := filter.Filter(testChunks(), model.AskOptions{FilterSource: "docs/api.md"})
		require.Len(t, filtered, 2)
		assert.Greater(t, filtered[0].Score, filtered[1].Score)
	})
}
