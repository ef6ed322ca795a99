// Package report generates PAN (Product Acceptance Notification) text
// reports summarizing the outcome of a set of workflow executions.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adtisdal-ASDC/cumulus/internal/metrics"
	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

// Disposition values emitted in a PAN report.
const (
	DispositionSuccessful = "SUCCESSFUL"
	DispositionFailed     = "FAILED"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Generator builds PAN reports from execution status lookups. It holds no
// storage invariants of its own; the execution store is an injected
// collaborator.
type Generator struct {
	executions store.ExecutionStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewGenerator creates a Generator over the given execution store.
func NewGenerator(executions store.ExecutionStore) *Generator {
	return &Generator{
		executions: executions,
		logger:     slog.Default(),
		now:        time.Now,
	}
}

// ShortPAN looks up the status of each execution and renders a SHORTPAN
// report. The disposition is SUCCESSFUL unless at least one execution
// resolved to a failed status; an empty input yields SUCCESSFUL. Any lookup
// failure, including an unknown execution id, propagates to the caller.
func (g *Generator) ShortPAN(ctx context.Context, executionIDs []int64) (string, error) {
	statuses := make([]types.ExecutionStatus, len(executionIDs))

	eg, ctx := errgroup.WithContext(ctx)
	for i, id := range executionIDs {
		eg.Go(func() error {
			record, err := g.executions.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("looking up execution %d: %w", id, err)
			}
			statuses[i] = record.Status
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	disposition := DispositionSuccessful
	for _, status := range statuses {
		if status == types.ExecutionFailed {
			disposition = DispositionFailed
			break
		}
	}

	g.logger.Info("generated short PAN",
		"executions", len(executionIDs), "disposition", disposition)
	metrics.PANReportsGenerated.Add(1)

	return renderShortPAN(disposition, g.now().UTC()), nil
}

func renderShortPAN(disposition string, at time.Time) string {
	return fmt.Sprintf("MESSAGE_TYPE = %q;\nDISPOSITION = %q;\nTIME_STAMP = %s;\n",
		"SHORTPAN", disposition, at.Format(timestampLayout))
}
