package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackclub/hermes/internal/domain"
)

// RunRepository persists billing run reports. Reports are operational
// history, written best effort after each pass, so this repository stays on
// plain SQL instead of the generated query layer.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Create inserts a billing run report.
func (r *RunRepository) Create(ctx context.Context, run *domain.BillingRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO billing_runs (id, pass, started_at, finished_at, result)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.pool.Exec(ctx, query,
		run.ID,
		run.Pass,
		run.StartedAt,
		run.FinishedAt,
		resultJSON,
	)

	return err
}

// ListRecent retrieves the most recent run reports, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.BillingRun, error) {
	query := `
		SELECT id, pass, started_at, finished_at, result
		FROM billing_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.BillingRun
	for rows.Next() {
		var run domain.BillingRun
		var resultJSON []byte

		err := rows.Scan(
			&run.ID,
			&run.Pass,
			&run.StartedAt,
			&run.FinishedAt,
			&resultJSON,
		)
		if err != nil {
			return nil, err
		}

		if resultJSON != nil {
			_ = json.Unmarshal(resultJSON, &run.Result)
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
