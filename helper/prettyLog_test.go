package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{},
		}

		handler := NewPrettyHandler(&buf, opts)

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Create PrettyHandler with debug level", func(t *testing.T) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		}

		handler := NewPrettyHandler(&buf, opts)

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
	})

	t.Run("Create PrettyHandler with empty options", func(t *testing.T) {
		var buf bytes.Buffer

		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected handler to be created with empty options")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	newHandler := func(level slog.Level) (*PrettyHandler, *bytes.Buffer) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: level,
			},
		}
		return NewPrettyHandler(&buf, opts), &buf
	}

	t.Run("Handle DEBUG pipeline step log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelDebug)

		record := slog.NewRecord(time.Now(), slog.LevelDebug, "Pipeline step", 0)
		record.AddAttrs(slog.String("state", "RETRIEVE"), slog.String("action", "retrieve"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "DEBUG:", "Expected output to contain DEBUG level")
		assert.Contains(t, output, "Pipeline step", "Expected output to contain the message")
		assert.Contains(t, output, "state", "Expected output to contain attribute key")
		assert.Contains(t, output, "RETRIEVE", "Expected output to contain attribute value")
	})

	t.Run("Handle INFO document ingestion log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Processed document into chunks", 0)
		record.AddAttrs(slog.Int("num_chunks", 7), slog.String("title", "Payment Service Runbook"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "INFO:", "Expected output to contain INFO level")
		assert.Contains(t, output, "Processed document into chunks", "Expected output to contain the message")
		assert.Contains(t, output, "num_chunks", "Expected output to contain attribute key")
		assert.Contains(t, output, "7", "Expected output to contain attribute value")
		assert.Contains(t, output, "Payment Service Runbook", "Expected output to contain the document title")
	})

	t.Run("Handle WARN evaluation fallback log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelWarn, "Judge failed, falling back to heuristics", 0)
		record.AddAttrs(slog.String("error", "invalid verdict"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "WARN:", "Expected output to contain WARN level")
		assert.Contains(t, output, "falling back to heuristics", "Expected output to contain the message")
		assert.Contains(t, output, "invalid verdict", "Expected output to contain attribute value")
	})

	t.Run("Handle ERROR pipeline abort log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelError, "Pipeline aborted", 0)
		record.AddAttrs(slog.String("action", "generate"), slog.String("error", "api timeout"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "ERROR:", "Expected output to contain ERROR level")
		assert.Contains(t, output, "Pipeline aborted", "Expected output to contain the message")
		assert.Contains(t, output, "api timeout", "Expected output to contain the error value")
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Connected to database", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "Connected to database", "Expected output to contain the message")
		assert.Contains(t, output, "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle log with metrics map attribute", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Answer evaluated", 0)
		record.AddAttrs(slog.Any("metrics", map[string]float64{
			"faithfulness":     0.92,
			"answer_relevancy": 0.81,
		}))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "Answer evaluated", "Expected output to contain the message")
		assert.Contains(t, output, "faithfulness", "Expected output to contain the metric name")
		assert.Contains(t, output, "0.92", "Expected output to contain the metric value")
	})

	t.Run("Handle log formats timestamp correctly", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Ask completed", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		// Timestamp should be in format [15:04:05.000]
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(),
			"Expected output to contain properly formatted timestamp")
	})
}
