package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adtisdal-ASDC/cumulus/internal/metrics"
	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Merge policy for the two status classes. A non-terminal event (running or
// queued) merges only the event-time fields and status, so a terminal
// writer's richer payload is not clobbered by a lightweight progress ping. A
// terminal event is authoritative end-of-life state and replaces the row.
const (
	mergeEventTimeFields = `
		status     = EXCLUDED.status,
		timestamp  = EXCLUDED.timestamp,
		updated_at = EXCLUDED.updated_at,
		created_at = EXCLUDED.created_at`

	mergeAllFields = `
		status              = EXCLUDED.status,
		created_at          = EXCLUDED.created_at,
		updated_at          = EXCLUDED.updated_at,
		timestamp           = EXCLUDED.timestamp,
		published           = EXCLUDED.published,
		duration            = EXCLUDED.duration,
		product_volume      = EXCLUDED.product_volume,
		error               = EXCLUDED.error,
		cmr_link            = EXCLUDED.cmr_link,
		provider            = EXCLUDED.provider,
		beginning_date_time = EXCLUDED.beginning_date_time,
		ending_date_time    = EXCLUDED.ending_date_time`

	// stalenessGuard rejects any event strictly older than the stored row.
	// Equal created_at applies, so the last writer among ties wins by
	// arrival. Both sides went through the same UTC normalization at write
	// time.
	stalenessGuard = `granules.created_at <= EXCLUDED.created_at`
)

// Upsert applies an incoming status event as a single atomic conditional
// write. The staleness guard and (when applicable) the linkage-existence
// guard are evaluated by the database together with the insert/merge itself,
// never as a separate read. A rejected event is a silent no-op: zero rows
// returned, no error. Repeated identical delivery is idempotent; the engine
// never retries.
//
// When executionID is supplied and the status is non-terminal, the write is
// additionally gated on no linkage row existing for (granule, execution),
// and a linkage row is created at most once in the same transaction as the
// accepted write.
func (g *GranuleStore) Upsert(ctx context.Context, record types.GranuleRecord, executionID *int64) ([]types.GranuleRecord, error) {
	if record.CreatedAt.IsZero() {
		return nil, fmt.Errorf("created_at is required on upsert: %w", store.ErrInvalidArgument)
	}

	args := granuleArgs(record)
	merge := mergeAllFields
	guardLinkage := false
	if !types.IsTerminal(record.Status) {
		merge = mergeEventTimeFields
		guardLinkage = executionID != nil
	}

	guard := stalenessGuard
	if guardLinkage {
		args = append(args, *executionID)
		guard += " AND " + linkageNotExistsClause(len(args))
	}

	query := insertGranuleValues + `
	ON CONFLICT (granule_id, collection_id) DO UPDATE SET` + merge + `
	WHERE ` + guard + `
	RETURNING ` + granuleColumns

	if !guardLinkage {
		rows, err := g.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("upsert granule: %w", err)
		}
		stored, err := collectUpserted(rows)
		if err != nil {
			return nil, err
		}
		countUpsert(len(stored), 0)
		return stored, nil
	}

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("upsert granule: %w", err)
	}
	stored, err := collectUpserted(rows)
	if err != nil {
		return nil, err
	}

	var linked int64
	if len(stored) > 0 {
		tag, err := tx.Exec(ctx, insertLinkageQuery, stored[0].InternalID, *executionID)
		if err != nil {
			return nil, fmt.Errorf("insert granule execution linkage: %w", err)
		}
		linked = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	countUpsert(len(stored), linked)
	return stored, nil
}

// countUpsert records the outcome of a finished upsert. Counters move only
// after the write is durable, so a failed commit never shows up as applied
// work.
func countUpsert(stored int, linked int64) {
	if stored == 0 {
		metrics.UpsertsDiscardedStale.Add(1)
		return
	}
	metrics.GranulesUpserted.Add(1)
	if linked > 0 {
		metrics.LinkagesCreated.Add(1)
	}
}

func collectUpserted(rows pgx.Rows) ([]types.GranuleRecord, error) {
	defer rows.Close()

	var stored []types.GranuleRecord
	for rows.Next() {
		record, err := scanGranule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upserted granule: %w", err)
		}
		stored = append(stored, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("upsert granule: %w", err)
	}
	return stored, nil
}
