package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	probe "github.com/Protocol-Lattice/go-probe"
)

// PostgresStore persists result records in a probe_results table with JSONB
// input/output columns.
type PostgresStore struct {
	DB *pgxpool.Pool
}

const createResultsTable = `
CREATE TABLE IF NOT EXISTS probe_results (
    id BIGSERIAL PRIMARY KEY,
    run_id TEXT NOT NULL,
    tool_name TEXT NOT NULL,
    tool_type TEXT,
    status TEXT,
    input JSONB,
    output JSONB,
    error TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// NewPostgresStore connects to Postgres and ensures the results table exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if _, err := db.Exec(ctx, createResultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// Save inserts one record.
func (ps *PostgresStore) Save(ctx context.Context, runID string, rec probe.Record) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	_, err := ps.DB.Exec(ctx, `
        INSERT INTO probe_results (run_id, tool_name, tool_type, status, input, output, error)
        VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7);`,
		runID, rec.Name, rec.ToolType, string(rec.Status),
		marshalJSONB(rec.Input), marshalOutput(rec.Output), rec.Err)
	return err
}

// Close releases the pool.
func (ps *PostgresStore) Close(_ context.Context) error {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
	return nil
}

// marshalJSONB renders a value for a nullable JSONB column; nil input stays
// a SQL NULL instead of the string "null".
func marshalJSONB(v map[string]any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(data)
}

func marshalOutput(out *probe.Response) any {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return string(data)
}
