package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.LinkageStore = (*LinkageStore)(nil)

// LinkageStore is persistence for granule-to-execution association rows.
// Rows are append-only; the guarded upsert path embeds this table's
// existence check but never mutates rows through it.
type LinkageStore struct {
	pool *pgxpool.Pool
}

const insertLinkageQuery = `INSERT INTO granules_executions
		(granule_internal_id, execution_internal_id)
	VALUES ($1, $2)
	ON CONFLICT (granule_internal_id, execution_internal_id) DO NOTHING`

// linkageNotExistsClause renders the existence guard embedded in the granule
// upsert. It is correlated to the granules row under conflict; executionArg
// is the 1-based bind position of the execution internal id.
func linkageNotExistsClause(executionArg int) string {
	return fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM granules_executions
		WHERE granule_internal_id = granules.internal_id
		AND execution_internal_id = $%d)`, executionArg)
}

// linkageFilterClause renders a LinkageFilter as a WHERE fragment with bound
// args. An empty filter matches all rows.
func linkageFilterClause(filter store.LinkageFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.GranuleInternalID != nil {
		args = append(args, *filter.GranuleInternalID)
		clauses = append(clauses, fmt.Sprintf("granule_internal_id = $%d", len(args)))
	}
	if filter.ExecutionInternalID != nil {
		args = append(args, *filter.ExecutionInternalID)
		clauses = append(clauses, fmt.Sprintf("execution_internal_id = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(clauses, " AND "), args
}

// Create inserts a linkage row. Inserting an existing pair is a no-op; the
// pair is unique and never field-updated.
func (l *LinkageStore) Create(ctx context.Context, linkage types.ExecutionLinkage) error {
	_, err := l.pool.Exec(ctx, insertLinkageQuery,
		linkage.GranuleInternalID, linkage.ExecutionInternalID)
	if err != nil {
		return fmt.Errorf("insert granule execution linkage: %w", err)
	}
	return nil
}

// Delete removes linkage rows matching the filter and returns the count.
func (l *LinkageStore) Delete(ctx context.Context, filter store.LinkageFilter) (int64, error) {
	where, args := linkageFilterClause(filter)
	tag, err := l.pool.Exec(ctx, `DELETE FROM granules_executions WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete granule execution linkage: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Search returns linkage rows matching any subset of the pair columns.
func (l *LinkageStore) Search(ctx context.Context, filter store.LinkageFilter) ([]types.ExecutionLinkage, error) {
	where, args := linkageFilterClause(filter)
	rows, err := l.pool.Query(ctx, `
		SELECT granule_internal_id, execution_internal_id
		FROM granules_executions
		WHERE `+where+`
		ORDER BY granule_internal_id, execution_internal_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("search granule execution linkages: %w", err)
	}
	defer rows.Close()

	var linkages []types.ExecutionLinkage
	for rows.Next() {
		var linkage types.ExecutionLinkage
		if err := rows.Scan(&linkage.GranuleInternalID, &linkage.ExecutionInternalID); err != nil {
			return nil, fmt.Errorf("scan linkage: %w", err)
		}
		linkages = append(linkages, linkage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search granule execution linkages: %w", err)
	}
	return linkages, nil
}
