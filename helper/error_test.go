package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Wraps action and cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewError("connect to database", cause)

		assert.Contains(t, err.Error(), "connect to database")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewError("do thing", cause)

		assert.True(t, errors.Is(err, cause))
	})
}
