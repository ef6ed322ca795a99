package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtisdal-ASDC/cumulus/internal/store"
	"github.com/adtisdal-ASDC/cumulus/pkg/types"
)

type fakeExecutionStore struct {
	executions map[int64]types.ExecutionRecord
}

func (f *fakeExecutionStore) UpsertByARN(_ context.Context, record types.ExecutionRecord) (types.ExecutionRecord, error) {
	return record, nil
}

func (f *fakeExecutionStore) Get(_ context.Context, internalID int64) (types.ExecutionRecord, error) {
	record, ok := f.executions[internalID]
	if !ok {
		return types.ExecutionRecord{}, fmt.Errorf("execution %d: %w", internalID, store.ErrNotFound)
	}
	return record, nil
}

func newTestGenerator(executions map[int64]types.ExecutionRecord) *Generator {
	gen := NewGenerator(&fakeExecutionStore{executions: executions})
	gen.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return gen
}

func TestShortPAN_AllSuccessful(t *testing.T) {
	gen := newTestGenerator(map[int64]types.ExecutionRecord{
		1: {InternalID: 1, Status: types.ExecutionCompleted},
		2: {InternalID: 2, Status: types.ExecutionRunning},
	})

	pan, err := gen.ShortPAN(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t,
		"MESSAGE_TYPE = \"SHORTPAN\";\n"+
			"DISPOSITION = \"SUCCESSFUL\";\n"+
			"TIME_STAMP = 2026-08-30T12:00:00.000Z;\n",
		pan)
}

func TestShortPAN_AnyFailure(t *testing.T) {
	gen := newTestGenerator(map[int64]types.ExecutionRecord{
		1: {InternalID: 1, Status: types.ExecutionCompleted},
		2: {InternalID: 2, Status: types.ExecutionFailed},
		3: {InternalID: 3, Status: types.ExecutionCompleted},
	})

	pan, err := gen.ShortPAN(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, pan, `DISPOSITION = "FAILED";`)
}

func TestShortPAN_EmptyInput(t *testing.T) {
	gen := newTestGenerator(nil)

	pan, err := gen.ShortPAN(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, pan, `DISPOSITION = "SUCCESSFUL";`)
}

func TestShortPAN_UnknownExecutionPropagates(t *testing.T) {
	gen := newTestGenerator(map[int64]types.ExecutionRecord{
		1: {InternalID: 1, Status: types.ExecutionCompleted},
	})

	_, err := gen.ShortPAN(context.Background(), []int64{1, 42})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
