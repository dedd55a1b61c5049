package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/DmitryB21/neurodoc/helper"
	"github.com/DmitryB21/neurodoc/model"
	loadSql "github.com/DmitryB21/neurodoc/sql"
)

// ExperimentsDBHandlerFunctions defines the interface for Experiments database operations.
type ExperimentsDBHandlerFunctions interface {
	InsertExperiment(experiment *model.Experiment) error
	SelectExperiment(rid uuid.UUID) (*model.Experiment, error)
	SelectAllExperiments(limit int) ([]*model.Experiment, error)
	SelectBestExperimentByMetric(metric string) (*model.Experiment, error)
	DeleteExperiment(rid uuid.UUID) error
}

// ExperimentsDBHandler handles experiment-related database operations
type ExperimentsDBHandler struct {
	db *helper.Database
}

// NewExperimentsDBHandler creates a new experiments database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewExperimentsDBHandler(db *helper.Database, force bool) (*ExperimentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	experimentsDbHandler := &ExperimentsDBHandler{
		db: db,
	}

	err := loadSql.LoadExperimentsSql(experimentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load experiments sql", err)
	}

	err = experimentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ExperimentsDBHandler")

	return experimentsDbHandler, nil
}

// CreateTable creates the 'experiments' table in the database.
// If the table already exists, it does not create it again.
func (h *ExperimentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_experiments();`)
	if err != nil {
		log.Panicf("error initializing experiments table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table experiments")

	return nil
}

// InsertExperiment inserts a new experiment and fills in the generated fields
func (h *ExperimentsDBHandler) InsertExperiment(experiment *model.Experiment) error {
	configJson, err := json.Marshal(experiment.Config)
	if err != nil {
		return helper.NewError("marshal config", err)
	}
	metricsJson, err := json.Marshal(experiment.Metrics)
	if err != nil {
		return helper.NewError("marshal metrics", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_experiment($1, $2, $3)`,
		configJson,
		metricsJson,
		experiment.Description,
	)

	return h.scanExperiment(row, experiment)
}

// SelectExperiment retrieves an experiment by RID
func (h *ExperimentsDBHandler) SelectExperiment(rid uuid.UUID) (*model.Experiment, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_experiment($1)`,
		rid,
	)

	experiment := &model.Experiment{}
	err := h.scanExperiment(row, experiment)
	if err != nil {
		return nil, err
	}

	return experiment, nil
}

// SelectAllExperiments retrieves experiments ordered by creation time descending
func (h *ExperimentsDBHandler) SelectAllExperiments(limit int) ([]*model.Experiment, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_experiments($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var experiments []*model.Experiment
	for rows.Next() {
		experiment := &model.Experiment{}
		err := h.scanExperiment(rows, experiment)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, experiment)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return experiments, nil
}

// SelectBestExperimentByMetric retrieves the experiment with the highest value
// for the given metric. Returns nil if no experiment recorded that metric.
func (h *ExperimentsDBHandler) SelectBestExperimentByMetric(metric string) (*model.Experiment, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_best_experiment_by_metric($1)`,
		metric,
	)

	experiment := &model.Experiment{}
	err := h.scanExperiment(row, experiment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return experiment, nil
}

// DeleteExperiment deletes an experiment by RID
func (h *ExperimentsDBHandler) DeleteExperiment(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_experiment($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (h *ExperimentsDBHandler) scanExperiment(row scannable, experiment *model.Experiment) error {
	var configJson, metricsJson []byte
	err := row.Scan(
		&experiment.ID,
		&experiment.RID,
		&configJson,
		&metricsJson,
		&experiment.Description,
		&experiment.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return err
	} else if err != nil {
		return helper.NewError("scan", err)
	}

	err = json.Unmarshal(configJson, &experiment.Config)
	if err != nil {
		return helper.NewError("unmarshal config", err)
	}
	err = json.Unmarshal(metricsJson, &experiment.Metrics)
	if err != nil {
		return helper.NewError("unmarshal metrics", err)
	}

	return nil
}
