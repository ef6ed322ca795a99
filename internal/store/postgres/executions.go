package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.ExecutionStore = (*ExecutionStore)(nil)

// ExecutionStore is persistence for workflow execution records. Executions
// are keyed externally by ARN; the surrogate key feeds linkage rows and
// report lookups.
type ExecutionStore struct {
	pool *pgxpool.Pool
}

const executionColumns = `internal_id, arn, status, created_at, updated_at`

// UpsertByARN inserts or refreshes an execution row and returns the stored
// record including its surrogate key.
func (e *ExecutionStore) UpsertByARN(ctx context.Context, record types.ExecutionRecord) (types.ExecutionRecord, error) {
	if record.ARN == "" {
		return types.ExecutionRecord{}, fmt.Errorf("execution arn is required: %w", store.ErrInvalidArgument)
	}
	row := e.pool.QueryRow(ctx, `
		INSERT INTO executions (arn, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (arn) DO UPDATE SET
			status     = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING `+executionColumns,
		record.ARN, string(record.Status),
		types.NormalizeTime(record.CreatedAt), types.NormalizeTime(record.UpdatedAt))

	stored, err := scanExecution(row)
	if err != nil {
		return types.ExecutionRecord{}, fmt.Errorf("upsert execution: %w", err)
	}
	return stored, nil
}

// Get returns the execution with the given surrogate key, or
// store.ErrNotFound.
func (e *ExecutionStore) Get(ctx context.Context, internalID int64) (types.ExecutionRecord, error) {
	row := e.pool.QueryRow(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE internal_id = $1`, internalID)
	record, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ExecutionRecord{}, fmt.Errorf("execution %d: %w", internalID, store.ErrNotFound)
		}
		return types.ExecutionRecord{}, fmt.Errorf("get execution: %w", err)
	}
	return record, nil
}

func scanExecution(row pgx.Row) (types.ExecutionRecord, error) {
	var record types.ExecutionRecord
	if err := row.Scan(
		&record.InternalID,
		&record.ARN,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return types.ExecutionRecord{}, err
	}
	return record, nil
}
