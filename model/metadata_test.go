package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValue(t *testing.T) {
	t.Run("Marshal simple metadata", func(t *testing.T) {
		m := Metadata{"source": "hr", "category": "policy"}

		value, err := m.Value()

		require.NoError(t, err)
		assert.Contains(t, string(value.([]byte)), `"source":"hr"`)
	})

	t.Run("Marshal empty metadata", func(t *testing.T) {
		m := Metadata{}

		value, err := m.Value()

		require.NoError(t, err)
		assert.Equal(t, "{}", string(value.([]byte)))
	})

	t.Run("Marshal nested metadata", func(t *testing.T) {
		m := Metadata{"tags": []string{"sla", "payments"}}

		value, err := m.Value()

		require.NoError(t, err)
		assert.Contains(t, string(value.([]byte)), `"tags":["sla","payments"]`)
	})
}

func TestMetadataScan(t *testing.T) {
	t.Run("Scan JSON bytes", func(t *testing.T) {
		var m Metadata
		err := m.Scan([]byte(`{"source":"it","text_length":42}`))

		require.NoError(t, err)
		assert.Equal(t, "it", m["source"])
		assert.Equal(t, float64(42), m["text_length"])
	})

	t.Run("Scan nil value", func(t *testing.T) {
		var m Metadata
		err := m.Scan(nil)

		require.NoError(t, err)
		assert.NotNil(t, m)
		assert.Empty(t, m)
	})

	t.Run("Scan existing Metadata value", func(t *testing.T) {
		var m Metadata
		err := m.Scan(Metadata{"source": "compliance"})

		require.NoError(t, err)
		assert.Equal(t, "compliance", m["source"])
	})

	t.Run("Scan invalid type fails", func(t *testing.T) {
		var m Metadata
		err := m.Scan(42)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "byte assertion")
	})
}
