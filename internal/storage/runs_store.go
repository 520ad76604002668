package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"prio/internal/engine"
	"prio/internal/errors"
)

// Run is one persisted prioritization run. Plan is only populated when a
// single run is fetched; listings return the summary columns alone.
type Run struct {
	ID             string             `json:"id"`
	RepoID         int64              `json:"repo_id"`
	Budget         float64            `json:"budget"`
	Weights        engine.Weights     `json:"weights"`
	ItemsTotal     int                `json:"items_total"`
	ItemsSelected  int                `json:"items_selected"`
	EffortTotal    float64            `json:"effort_total"`
	EffortSelected float64            `json:"effort_selected"`
	Plan           []engine.PlanEntry `json:"plan,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// RunStore persists prioritization runs. Stored plans can reach thousands
// of entries, so the plan JSON is zstd-compressed before insert.
type RunStore struct {
	db      *DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewRunStore creates a run store over an open database.
func NewRunStore(db *DB) (*RunStore, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &RunStore{db: db, encoder: encoder, decoder: decoder}, nil
}

// RecordRun persists a run and fills in its generated id and timestamp.
func (s *RunStore) RecordRun(run *Run) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	weightsJSON, err := json.Marshal(run.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	planJSON, err := json.Marshal(run.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	planBlob := s.encoder.EncodeAll(planJSON, nil)

	_, err = s.db.Exec(`
		INSERT INTO prioritization_runs (
			id, repo_id, budget, weights, items_total, items_selected,
			effort_total, effort_selected, plan, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.RepoID, run.Budget, string(weightsJSON),
		run.ItemsTotal, run.ItemsSelected, run.EffortTotal, run.EffortSelected,
		planBlob, run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return errors.New(errors.StoreUnavailable, "failed to record run", err)
	}
	return nil
}

// ListRuns returns the most recent runs for a repo, newest first, without
// their plans.
func (s *RunStore) ListRuns(repoID int64, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, repo_id, budget, weights, items_total, items_selected,
		       effort_total, effort_selected, created_at
		FROM prioritization_runs
		WHERE repo_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, repoID, limit)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to list runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var weightsJSON, createdAt string
		if err := rows.Scan(&run.ID, &run.RepoID, &run.Budget, &weightsJSON,
			&run.ItemsTotal, &run.ItemsSelected, &run.EffortTotal,
			&run.EffortSelected, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(weightsJSON), &run.Weights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weights for run %s: %w", run.ID, err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run including its decompressed plan.
func (s *RunStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, repo_id, budget, weights, items_total, items_selected,
		       effort_total, effort_selected, plan, created_at
		FROM prioritization_runs
		WHERE id = ?
	`, id)

	var run Run
	var weightsJSON, createdAt string
	var planBlob []byte
	err := row.Scan(&run.ID, &run.RepoID, &run.Budget, &weightsJSON,
		&run.ItemsTotal, &run.ItemsSelected, &run.EffortTotal,
		&run.EffortSelected, &planBlob, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.RunNotFound, "no run with id "+id, nil)
	}
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to fetch run", err)
	}

	if err := json.Unmarshal([]byte(weightsJSON), &run.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights for run %s: %w", run.ID, err)
	}

	planJSON, err := s.decoder.DecodeAll(planBlob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress plan for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal(planJSON, &run.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan for run %s: %w", run.ID, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &run, nil
}
