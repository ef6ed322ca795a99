package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// sortableColumns restricts sort directives to real granule columns; sort
// fields are interpolated into the query text and cannot be bound args.
var sortableColumns = map[string]bool{
	"internal_id":    true,
	"granule_id":     true,
	"collection_id":  true,
	"status":         true,
	"created_at":     true,
	"updated_at":     true,
	"timestamp":      true,
	"duration":       true,
	"product_volume": true,
	"cmr_link":       true,
	"provider":       true,
}

// SearchByInternalID is the single-id form of SearchByInternalIDs.
func (g *GranuleStore) SearchByInternalID(ctx context.Context, id int64, params store.SearchParams) ([]types.GranuleRecord, error) {
	return g.SearchByInternalIDs(ctx, []int64{id}, params)
}

// SearchByInternalIDs batch-reads granule records by surrogate key. Limit
// and offset apply only when non-zero. Sort directives apply in the given
// order as a stable multi-key sort, first directive primary; with no
// directives ordering is store-defined. An empty id sequence yields an empty
// result without touching storage.
func (g *GranuleStore) SearchByInternalIDs(ctx context.Context, ids []int64, params store.SearchParams) ([]types.GranuleRecord, error) {
	if len(ids) == 0 {
		return []types.GranuleRecord{}, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + granuleColumns + ` FROM granules WHERE internal_id = ANY($1)`)

	if len(params.Sort) > 0 {
		var orders []string
		for _, directive := range params.Sort {
			if !sortableColumns[directive.Field] {
				return nil, fmt.Errorf("unsortable field %q: %w", directive.Field, store.ErrInvalidArgument)
			}
			order := "ASC"
			if directive.Order == store.SortDesc {
				order = "DESC"
			}
			orders = append(orders, directive.Field+" "+order)
		}
		sb.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}

	args := []any{ids}
	if params.Limit > 0 {
		args = append(args, params.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := g.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search granules: %w", err)
	}
	defer rows.Close()

	records := make([]types.GranuleRecord, 0)
	for rows.Next() {
		record, err := scanGranule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan granule: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search granules: %w", err)
	}
	return records, nil
}
