package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtisdal-ASDC/cumulus/internal/metrics"
	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Validation happens before any storage access, so these run against a store
// with no pool.

func TestSelectorValidation(t *testing.T) {
	granules := &GranuleStore{}
	ctx := context.Background()

	tests := []struct {
		name string
		sel  store.Selector
	}{
		{"missing collection id", store.ByGranuleCollection{GranuleID: "g1"}},
		{"missing granule id", store.ByGranuleCollection{CollectionID: 5}},
		{"nil selector", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := granules.Get(ctx, tt.sel)
			assert.ErrorIs(t, err, store.ErrInvalidArgument)

			_, err = granules.Delete(ctx, tt.sel)
			assert.ErrorIs(t, err, store.ErrInvalidArgument)
		})
	}
}

func TestExistsPropagatesInvalidArgument(t *testing.T) {
	granules := &GranuleStore{}

	// Only ErrNotFound maps to false; other failures propagate unchanged.
	_, err := granules.Exists(context.Background(), store.ByGranuleCollection{GranuleID: "g1"})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestUpsertRequiresCreatedAt(t *testing.T) {
	granules := &GranuleStore{}

	_, err := granules.Upsert(context.Background(), types.GranuleRecord{
		GranuleID:    "g1",
		CollectionID: 1,
		Status:       types.GranuleRunning,
	}, nil)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestSearchEmptyIDs(t *testing.T) {
	granules := &GranuleStore{}

	records, err := granules.SearchByInternalIDs(context.Background(), []int64{}, store.SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchRejectsUnknownSortField(t *testing.T) {
	granules := &GranuleStore{}

	_, err := granules.SearchByInternalIDs(context.Background(), []int64{1}, store.SearchParams{
		Sort: []store.SortDirective{{Field: "granule_id; DROP TABLE granules", Order: store.SortAsc}},
	})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func TestLinkageFilterClause(t *testing.T) {
	gid := int64(7)
	eid := int64(11)

	where, args := linkageFilterClause(store.LinkageFilter{})
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)

	where, args = linkageFilterClause(store.LinkageFilter{GranuleInternalID: &gid})
	assert.Equal(t, "granule_internal_id = $1", where)
	assert.Equal(t, []any{gid}, args)

	where, args = linkageFilterClause(store.LinkageFilter{GranuleInternalID: &gid, ExecutionInternalID: &eid})
	assert.Equal(t, "granule_internal_id = $1 AND execution_internal_id = $2", where)
	assert.Equal(t, []any{gid, eid}, args)
}

func TestCountUpsert(t *testing.T) {
	applied := metrics.GranulesUpserted.Value()
	discarded := metrics.UpsertsDiscardedStale.Value()
	linked := metrics.LinkagesCreated.Value()

	countUpsert(0, 0)
	assert.Equal(t, discarded+1, metrics.UpsertsDiscardedStale.Value())
	assert.Equal(t, applied, metrics.GranulesUpserted.Value())

	countUpsert(1, 0)
	assert.Equal(t, applied+1, metrics.GranulesUpserted.Value())
	assert.Equal(t, linked, metrics.LinkagesCreated.Value())

	countUpsert(1, 1)
	assert.Equal(t, applied+2, metrics.GranulesUpserted.Value())
	assert.Equal(t, linked+1, metrics.LinkagesCreated.Value())
}

func TestGranuleArgsNormalizesTimes(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	at := time.Date(2026, 3, 1, 10, 0, 0, 123456789, loc)

	args := granuleArgs(types.GranuleRecord{
		GranuleID:    "g1",
		CollectionID: 1,
		Status:       types.GranuleRunning,
		CreatedAt:    at,
		UpdatedAt:    at,
		Timestamp:    at,
	})

	createdAt, ok := args[3].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, createdAt.Location())
	assert.Equal(t, 123000000, createdAt.Nanosecond(), "sub-millisecond precision is dropped")
}
