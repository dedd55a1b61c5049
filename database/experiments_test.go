package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DmitryB21/neurodoc/model"
)

func TestExperimentsNewExperimentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewExperimentsDBHandler", func(t *testing.T) {
		experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewExperimentsDBHandler to not return an error")
		require.NotNil(t, experimentsDbHandler, "Expected NewExperimentsDBHandler to return a non-nil instance")
		require.NotNil(t, experimentsDbHandler.db, "Expected NewExperimentsDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewExperimentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewExperimentsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating ExperimentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestExperimentsInsert(t *testing.T) {
	database := initDB(t)

	experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
	require.NoError(t, err)

	experiment := &model.Experiment{
		Config: model.ExperimentConfig{
			ChunkSize:      512,
			TopK:           3,
			UseReranking:   true,
			EmbeddingModel: "sentence-transformers/all-MiniLM-L6-v2",
			EmbeddingDim:   384,
		},
		Metrics:     map[string]float64{"faithfulness": 0.91, "answer_relevancy": 0.88},
		Description: "baseline with reranking",
	}

	err = experimentsDbHandler.InsertExperiment(experiment)
	assert.NoError(t, err, "Expected Insert to not return an error")
	assert.NotEmpty(t, experiment.RID, "Expected inserted experiment to have a RID")
	assert.WithinDuration(t, experiment.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")

	// Cleanup
	experimentsDbHandler.DeleteExperiment(experiment.RID)
}

func TestExperimentsGet(t *testing.T) {
	database := initDB(t)

	experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
	require.NoError(t, err)

	experiment := &model.Experiment{
		Config: model.ExperimentConfig{
			ChunkSize:    256,
			TopK:         5,
			EmbeddingDim: 384,
		},
		Metrics: map[string]float64{"faithfulness": 0.8},
	}
	err = experimentsDbHandler.InsertExperiment(experiment)
	require.NoError(t, err)

	retrieved, err := experimentsDbHandler.SelectExperiment(experiment.RID)
	assert.NoError(t, err, "Expected Get to not return an error")
	require.NotNil(t, retrieved, "Expected Get to return a non-nil experiment")
	assert.Equal(t, experiment.RID, retrieved.RID, "Expected experiment RIDs to match")
	assert.Equal(t, 256, retrieved.Config.ChunkSize, "Expected config to round-trip")
	assert.Equal(t, 5, retrieved.Config.TopK, "Expected config to round-trip")
	assert.InDelta(t, 0.8, retrieved.Metrics["faithfulness"], 1e-9, "Expected metrics to round-trip")

	// Cleanup
	experimentsDbHandler.DeleteExperiment(experiment.RID)
}

func TestExperimentsGetAll(t *testing.T) {
	database := initDB(t)

	experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
	require.NoError(t, err)

	experimentCount := 4
	experiments := make([]*model.Experiment, experimentCount)
	for i := 0; i < experimentCount; i++ {
		experiments[i] = &model.Experiment{
			Config:  model.ExperimentConfig{ChunkSize: 128 * (i + 1), TopK: 3},
			Metrics: map[string]float64{"answer_relevancy": 0.5 + float64(i)*0.1},
		}
		err = experimentsDbHandler.InsertExperiment(experiments[i])
		require.NoError(t, err)
	}

	retrieved, err := experimentsDbHandler.SelectAllExperiments(10)
	assert.NoError(t, err, "Expected SelectAllExperiments to not return an error")
	assert.GreaterOrEqual(t, len(retrieved), experimentCount, "Expected to retrieve at least the inserted experiments")

	limited, err := experimentsDbHandler.SelectAllExperiments(2)
	assert.NoError(t, err, "Expected SelectAllExperiments to not return an error")
	assert.LessOrEqual(t, len(limited), 2, "Expected at most 2 experiments")

	// Cleanup
	for _, experiment := range experiments {
		experimentsDbHandler.DeleteExperiment(experiment.RID)
	}
}

func TestExperimentsBestByMetric(t *testing.T) {
	database := initDB(t)

	experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
	require.NoError(t, err)

	low := &model.Experiment{
		Config:  model.ExperimentConfig{ChunkSize: 256, TopK: 3},
		Metrics: map[string]float64{"faithfulness": 0.6},
	}
	high := &model.Experiment{
		Config:  model.ExperimentConfig{ChunkSize: 512, TopK: 3, UseReranking: true},
		Metrics: map[string]float64{"faithfulness": 0.95},
	}
	err = experimentsDbHandler.InsertExperiment(low)
	require.NoError(t, err)
	err = experimentsDbHandler.InsertExperiment(high)
	require.NoError(t, err)

	t.Run("Best by recorded metric", func(t *testing.T) {
		best, err := experimentsDbHandler.SelectBestExperimentByMetric("faithfulness")
		assert.NoError(t, err, "Expected SelectBestExperimentByMetric to not return an error")
		require.NotNil(t, best, "Expected a best experiment")
		assert.Equal(t, high.RID, best.RID, "Expected the experiment with the highest faithfulness")
	})

	t.Run("Best by unknown metric", func(t *testing.T) {
		best, err := experimentsDbHandler.SelectBestExperimentByMetric("unknown_metric")
		assert.NoError(t, err, "Expected SelectBestExperimentByMetric to not return an error")
		assert.Nil(t, best, "Expected nil for a metric no experiment recorded")
	})

	// Cleanup
	experimentsDbHandler.DeleteExperiment(low.RID)
	experimentsDbHandler.DeleteExperiment(high.RID)
}

func TestExperimentsDelete(t *testing.T) {
	database := initDB(t)

	experimentsDbHandler, err := NewExperimentsDBHandler(database, true)
	require.NoError(t, err)

	experiment := &model.Experiment{
		Config:  model.ExperimentConfig{ChunkSize: 256},
		Metrics: map[string]float64{},
	}
	err = experimentsDbHandler.InsertExperiment(experiment)
	require.NoError(t, err)

	err = experimentsDbHandler.DeleteExperiment(experiment.RID)
	assert.NoError(t, err, "Expected Delete to not return an error")

	_, err = experimentsDbHandler.SelectExperiment(experiment.RID)
	assert.Error(t, err, "Expected Get to return an error for deleted experiment")
}
