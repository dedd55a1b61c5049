package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitryB21/neurodoc/model"
)

func TestStubClientGenerateAnswer(t *testing.T) {
	builder := NewPromptBuilder()
	stub := NewStubClient()

	t.Run("Echoes context without source tags", func(t *testing.T) {
		chunks := []*model.RetrievedChunk{
			{ID: "1", Text: "The payment service SLA is 99.9%."},
		}
		prompt := builder.Build("What is the SLA?", chunks)

		answer, err := stub.GenerateAnswer(context.Background(), prompt)

		require.NoError(t, err)
		assert.Contains(t, answer, "The payment service SLA is 99.9%.")
		assert.NotContains(t, answer, "[Source 1]")
	})

	t.Run("No-information prompt yields no-information answer", func(t *testing.T) {
		prompt := builder.Build("What is the SLA?", nil)

		answer, err := stub.GenerateAnswer(context.Background(), prompt)

		require.NoError(t, err)
		assert.Equal(t, NoInformationAnswer, answer)
	})

	t.Run("Prompt without context section yields no-information answer", func(t *testing.T) {
		answer, err := stub.GenerateAnswer(context.Background(), "just a bare question")

		require.NoError(t, err)
		assert.Equal(t, NoInformationAnswer, answer)
	})

	t.Run("Deterministic across calls", func(t *testing.T) {
		chunks := []*model.RetrievedChunk{{ID: "1", Text: "Fixed content."}}
		prompt := builder.Build("query", chunks)

		first, err := stub.GenerateAnswer(context.Background(), prompt)
		require.NoError(t, err)
		second, err := stub.GenerateAnswer(context.Background(), prompt)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Cancelled context yields GenerationError", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := stub.GenerateAnswer(ctx, "prompt")

		require.Error(t, err)
		var generationErr *GenerationError
		assert.ErrorAs(t, err, &generationErr, "Expected a GenerationError")
	})
}
