package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appErr "github.com/samims/indexer/internal/errors"
	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/pkg/tracing"
)

const runsTable = "indexing_runs"

type PostgresStorage struct {
	db     *pgxpool.Pool
	tracer *tracing.Tracer
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: pool, tracer: tracing.NewTracer(tracing.GetTracer("storage"))}
}

// Migrate creates the runs table if it does not exist.
func (ps *PostgresStorage) Migrate(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS indexing_runs (
			id                  UUID PRIMARY KEY,
			started_at          TIMESTAMPTZ NOT NULL,
			finished_at         TIMESTAMPTZ NOT NULL,
			accounts            INT NOT NULL,
			total_urls_tried    INT NOT NULL,
			successful_urls     INT NOT NULL,
			urls_with_error_429 INT NOT NULL,
			other_errors        INT NOT NULL,
			report              JSONB NOT NULL
		)
	`
	if _, err := ps.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("migrate %s: %w", runsTable, err)
	}
	return nil
}

func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.db.Ping(ctx)
}

func (ps *PostgresStorage) Save(ctx context.Context, report *model.RunReport) error {
	ctx, span := ps.tracer.StartClientSpan(ctx, "SaveRun")
	defer span.End()
	start := time.Now()

	data, err := json.Marshal(report)
	if err != nil {
		ps.tracer.RecordError(span, err)
		return fmt.Errorf("failed to encode run: %w", err)
	}

	const query = `
		INSERT INTO indexing_runs(id, started_at, finished_at, accounts,
			total_urls_tried, successful_urls, urls_with_error_429, other_errors, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = ps.db.Exec(ctx, query,
		report.RunID, report.StartedAt, report.FinishedAt, len(report.Accounts),
		report.TotalURLsTried, report.SuccessfulURLs, report.URLsWithError429, report.OtherErrors,
		data)
	ps.tracer.AddDatabaseAttributes(span, "INSERT", runsTable, time.Since(start))
	if err != nil {
		ps.tracer.RecordError(span, err)
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (ps *PostgresStorage) FindAll(ctx context.Context, limit int) ([]model.RunSummary, error) {
	ctx, span := ps.tracer.StartClientSpan(ctx, "FindRuns")
	defer span.End()
	start := time.Now()

	const query = `
		SELECT id, started_at, finished_at, accounts,
			total_urls_tried, successful_urls, urls_with_error_429, other_errors
		FROM indexing_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := ps.db.Query(ctx, query, limit)
	if err != nil {
		ps.tracer.RecordError(span, err)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	runs := []model.RunSummary{}
	for rows.Next() {
		var r model.RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Accounts,
			&r.TotalURLsTried, &r.SuccessfulURLs, &r.URLsWithError429, &r.OtherErrors); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	ps.tracer.AddDatabaseAttributes(span, "SELECT", runsTable, time.Since(start))
	return runs, nil
}

func (ps *PostgresStorage) FindByID(ctx context.Context, id string) (model.RunReport, error) {
	ctx, span := ps.tracer.StartClientSpan(ctx, "FindRun")
	defer span.End()
	start := time.Now()

	const query = `SELECT report FROM indexing_runs WHERE id = $1`

	var data []byte
	err := ps.db.QueryRow(ctx, query, id).Scan(&data)
	ps.tracer.AddDatabaseAttributes(span, "SELECT", runsTable, time.Since(start))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RunReport{}, appErr.NewNotFound("run %s", id)
		}
		ps.tracer.RecordError(span, err)
		return model.RunReport{}, fmt.Errorf("find by id failed: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return model.RunReport{}, fmt.Errorf("failed to decode run: %w", err)
	}
	for i := range report.Accounts {
		report.Accounts[i].Index = report.Accounts[i].Account - 1
	}
	return report, nil
}
