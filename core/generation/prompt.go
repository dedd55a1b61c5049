package generation

import (
	"fmt"
	"strings"

	"github.com/DmitryB21/neurodoc/model"
)

// NoInformationMarker is placed in the prompt instead of context when
// retrieval produced no chunks. The model is instructed to admit it cannot
// answer rather than fabricate sources.
const NoInformationMarker = "No relevant information was found in the knowledge base."

const (
	contextHeader  = "Context:"
	questionPrefix = "Question:"
)

const defaultInstruction = "You are a documentation assistant. Answer the question using only the provided context. " +
	"Refer to sources as [Source N] where relevant. If the context does not contain the answer, say so."

// PromptBuilder assembles the prompt sent to the language model
type PromptBuilder struct {
	// Instruction placed at the top of every prompt
	Instruction string
}

// NewPromptBuilder creates a prompt builder with the default instruction
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{Instruction: defaultInstruction}
}

// Build assembles the full prompt from the query and retrieved chunks.
// With zero chunks the prompt still carries an explicit no-information
// marker and forbids inventing sources.
func (b *PromptBuilder) Build(query string, chunks []*model.RetrievedChunk) string {
	var prompt strings.Builder

	prompt.WriteString(b.Instruction)
	prompt.WriteString("\n\n")
	prompt.WriteString(contextHeader)
	prompt.WriteString("\n")

	if len(chunks) == 0 {
		prompt.WriteString(NoInformationMarker)
		prompt.WriteString("\n\nState that the knowledge base contains no information on this topic. Do not invent facts or cite sources.")
	} else {
		for i, chunk := range chunks {
			prompt.WriteString(fmt.Sprintf("[Source %d] %s\n", i+1, chunk.Text))
		}
	}

	prompt.WriteString("\n\n")
	prompt.WriteString(questionPrefix)
	prompt.WriteString(" ")
	prompt.WriteString(query)
	prompt.WriteString("\n\nAnswer:")

	return prompt.String()
}
