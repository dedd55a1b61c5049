package retrieval

import (
	"strings"

	"github.com/DmitryB21/neurodoc/model"
)

// MetadataFilter narrows retrieved chunks by their source metadata.
// Filtering preserves the incoming chunk order.
type MetadataFilter struct{}

// NewMetadataFilter creates a new metadata filter
func NewMetadataFilter() *MetadataFilter {
	return &MetadataFilter{}
}

// Filter returns the chunks matching every criterion set in the options.
// Criteria left empty are ignored. Source and category match exactly,
// path matches by substring, tag matches any element of a "tags" list.
func (f *MetadataFilter) Filter(chunks []*model.RetrievedChunk, options model.AskOptions) []*model.RetrievedChunk {
	if !options.HasMetadataFilter() {
		return chunks
	}

	var filtered []*model.RetrievedChunk
	for _, chunk := range chunks {
		if options.FilterSource != "" && metadataString(chunk.Metadata, "source") != options.FilterSource {
			continue
		}
		if options.FilterCategory != "" && metadataString(chunk.Metadata, "category") != options.FilterCategory {
			continue
		}
		if options.FilterPath != "" && !strings.Contains(metadataString(chunk.Metadata, "path"), options.FilterPath) {
			continue
		}
		if options.FilterTag != "" && !hasTag(chunk.Metadata, options.FilterTag) {
			continue
		}
		filtered = append(filtered, chunk)
	}

	return filtered
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key].(string)
	if !ok {
		return ""
	}
	return value
}

func hasTag(metadata map[string]interface{}, tag string) bool {
	if metadata == nil {
		return false
	}

	switch tags := metadata["tags"].(type) {
	case []string:
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
	case []interface{}:
		// JSON unmarshalling produces []interface{}
		for _, t := range tags {
			if s, ok := t.(string); ok && s == tag {
				return true
			}
		}
	case string:
		return tags == tag
	}

	return false
}
