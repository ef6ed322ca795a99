// Package store defines the storage interfaces and selector types for the
// granule tracking core.
package store

import (
	"context"
	"errors"

	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Sentinel errors returned by the storage layer. Callers match them with
// errors.Is; everything else propagates from the backing store unmodified.
var (
	// ErrNotFound indicates a lookup matched zero rows.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidArgument indicates a malformed selector or input, detected
	// before any storage access.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateKey indicates a plain insert hit an existing unique pair.
	// The guarded upsert path never returns it.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Selector identifies a granule row by one of two explicit shapes. Callers
// construct a ByInternalID or ByGranuleCollection value; there is no
// structural guessing at the storage boundary.
type Selector interface {
	selector()
}

// ByInternalID selects a granule by its immutable surrogate key.
type ByInternalID struct {
	ID int64
}

// ByGranuleCollection selects a granule by its natural unique pair. Both
// fields are required.
type ByGranuleCollection struct {
	GranuleID    string
	CollectionID int64
}

func (ByInternalID) selector()        {}
func (ByGranuleCollection) selector() {}

// LinkageFilter narrows an ExecutionLinkage search to any subset of the pair
// columns. A nil field is unconstrained.
type LinkageFilter struct {
	GranuleInternalID   *int64
	ExecutionInternalID *int64
}

// SortOrder is the direction of a single sort directive.
type SortOrder string

// SortOrder values.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortDirective names a column and an order. Directives apply in the given
// sequence as a stable multi-key sort, first directive primary.
type SortDirective struct {
	Field string
	Order SortOrder
}

// SearchParams bounds and orders a batch read. Limit and Offset apply only
// when non-zero.
type SearchParams struct {
	Limit  int
	Offset int
	Sort   []SortDirective
}

// GranuleStore is keyed persistence for granule records plus the guarded
// upsert engine.
type GranuleStore interface {
	// Create inserts a full row; ErrDuplicateKey if the unique pair exists.
	// This path performs no conflict resolution.
	Create(ctx context.Context, record types.GranuleRecord) (types.GranuleRecord, error)
	// Get returns exactly one record, ErrNotFound for zero matches, or
	// ErrInvalidArgument for a malformed selector.
	Get(ctx context.Context, sel Selector) (types.GranuleRecord, error)
	// Exists delegates to Get, translating ErrNotFound into false.
	Exists(ctx context.Context, sel Selector) (bool, error)
	// Delete removes matching rows and returns the count; 0 is not an error.
	Delete(ctx context.Context, sel Selector) (int64, error)
	// Upsert applies a status event under the staleness guard and merge
	// policy, coupled with at-most-once linkage creation when executionID is
	// supplied and the status is non-terminal. Returns the stored row(s);
	// zero rows means the guard rejected the event (not an error).
	Upsert(ctx context.Context, record types.GranuleRecord, executionID *int64) ([]types.GranuleRecord, error)
	// SearchByInternalIDs batch-reads granules by surrogate key with
	// pagination and multi-key sort.
	SearchByInternalIDs(ctx context.Context, ids []int64, params SearchParams) ([]types.GranuleRecord, error)
}

// LinkageStore is persistence for granule-to-execution association rows.
type LinkageStore interface {
	Create(ctx context.Context, linkage types.ExecutionLinkage) error
	Delete(ctx context.Context, filter LinkageFilter) (int64, error)
	Search(ctx context.Context, filter LinkageFilter) ([]types.ExecutionLinkage, error)
}

// ExecutionStore is persistence for workflow execution records.
type ExecutionStore interface {
	// UpsertByARN inserts or refreshes an execution row keyed by ARN and
	// returns the stored record including its surrogate key.
	UpsertByARN(ctx context.Context, record types.ExecutionRecord) (types.ExecutionRecord, error)
	Get(ctx context.Context, internalID int64) (types.ExecutionRecord, error)
}
