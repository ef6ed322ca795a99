package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.GranuleStore = (*GranuleStore)(nil)

// GranuleStore is keyed persistence for granule records plus the guarded
// upsert engine, backed by the granules table.
type GranuleStore struct {
	pool *pgxpool.Pool
}

const granuleColumns = `internal_id, granule_id, collection_id, status,
	created_at, updated_at, timestamp, published, duration, product_volume,
	error, cmr_link, provider, beginning_date_time, ending_date_time`

const insertGranuleValues = `INSERT INTO granules (
		granule_id, collection_id, status, created_at, updated_at, timestamp,
		published, duration, product_volume, error, cmr_link, provider,
		beginning_date_time, ending_date_time)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

const insertGranuleQuery = insertGranuleValues + `
	RETURNING ` + granuleColumns

// Create inserts a full row with no conflict resolution. A row with the same
// (granule_id, collection_id) pair yields store.ErrDuplicateKey.
func (g *GranuleStore) Create(ctx context.Context, record types.GranuleRecord) (types.GranuleRecord, error) {
	row := g.pool.QueryRow(ctx, insertGranuleQuery, granuleArgs(record)...)
	created, err := scanGranule(row)
	if err != nil {
		if isUniqueViolation(err) {
			return types.GranuleRecord{}, fmt.Errorf("granule %q collection %d: %w",
				record.GranuleID, record.CollectionID, store.ErrDuplicateKey)
		}
		return types.GranuleRecord{}, fmt.Errorf("insert granule: %w", err)
	}
	return created, nil
}

// Get returns exactly one record matching the selector.
func (g *GranuleStore) Get(ctx context.Context, sel store.Selector) (types.GranuleRecord, error) {
	where, args, err := selectorClause(sel)
	if err != nil {
		return types.GranuleRecord{}, err
	}
	row := g.pool.QueryRow(ctx, `SELECT `+granuleColumns+` FROM granules WHERE `+where, args...)
	record, err := scanGranule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.GranuleRecord{}, store.ErrNotFound
		}
		return types.GranuleRecord{}, fmt.Errorf("get granule: %w", err)
	}
	return record, nil
}

// Exists reports whether a record matches the selector. Only ErrNotFound is
// translated to false; any other failure propagates.
func (g *GranuleStore) Exists(ctx context.Context, sel store.Selector) (bool, error) {
	_, err := g.Get(ctx, sel)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes all rows matching the selector and returns the count
// deleted. Zero is a valid, non-error result.
func (g *GranuleStore) Delete(ctx context.Context, sel store.Selector) (int64, error) {
	where, args, err := selectorClause(sel)
	if err != nil {
		return 0, err
	}
	tag, err := g.pool.Exec(ctx, `DELETE FROM granules WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete granule: %w", err)
	}
	return tag.RowsAffected(), nil
}

// selectorClause renders a Selector as a WHERE fragment with bound args.
// Malformed selectors fail before any storage access.
func selectorClause(sel store.Selector) (string, []any, error) {
	switch s := sel.(type) {
	case store.ByInternalID:
		return "internal_id = $1", []any{s.ID}, nil
	case store.ByGranuleCollection:
		if s.GranuleID == "" {
			return "", nil, fmt.Errorf("granule id is required: %w", store.ErrInvalidArgument)
		}
		if s.CollectionID <= 0 {
			return "", nil, fmt.Errorf("collection id is required: %w", store.ErrInvalidArgument)
		}
		return "granule_id = $1 AND collection_id = $2", []any{s.GranuleID, s.CollectionID}, nil
	default:
		return "", nil, fmt.Errorf("unknown selector kind: %w", store.ErrInvalidArgument)
	}
}

// granuleArgs renders a record's writable columns as bound args, applying the
// canonical time normalization to every event-time field.
func granuleArgs(record types.GranuleRecord) []any {
	return []any{
		record.GranuleID,
		record.CollectionID,
		string(record.Status),
		types.NormalizeTime(record.CreatedAt),
		types.NormalizeTime(record.UpdatedAt),
		types.NormalizeTime(record.Timestamp),
		record.Published,
		nullFloat(record.Duration),
		nullInt(record.ProductVolume),
		record.Error,
		nullStr(record.CMRLink),
		nullStr(record.Provider),
		record.BeginningDateTime,
		record.EndingDateTime,
	}
}

type granuleScanner interface {
	Scan(dest ...any) error
}

func scanGranule(scanner granuleScanner) (types.GranuleRecord, error) {
	var record types.GranuleRecord
	var duration *float64
	var productVolume *int64
	var cmrLink, provider *string
	if err := scanner.Scan(
		&record.InternalID,
		&record.GranuleID,
		&record.CollectionID,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.Timestamp,
		&record.Published,
		&duration,
		&productVolume,
		&record.Error,
		&cmrLink,
		&provider,
		&record.BeginningDateTime,
		&record.EndingDateTime,
	); err != nil {
		return types.GranuleRecord{}, err
	}
	if duration != nil {
		record.Duration = *duration
	}
	if productVolume != nil {
		record.ProductVolume = *productVolume
	}
	if cmrLink != nil {
		record.CMRLink = *cmrLink
	}
	if provider != nil {
		record.Provider = *provider
	}
	return record, nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func nullInt(i int64) *int64 {
	if i == 0 {
		return nil
	}
	return &i
}

// isUniqueViolation returns true if the error is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
