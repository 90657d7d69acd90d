package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChange() StatusChange {
	return StatusChange{
		JobID:      "job-1",
		Ref:        "XD-000042",
		CompanyID:  "co-1",
		NewStatus:  "posted",
		OccurredAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	var mu sync.Mutex
	var got []StatusChange

	record := SinkFunc(func(_ context.Context, change StatusChange) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, change)
		return nil
	})

	d := NewDispatcher(nil, record, record, record)
	d.Dispatch(context.Background(), testChange())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	for _, change := range got {
		assert.Equal(t, "job-1", change.JobID)
		assert.Equal(t, "posted", change.NewStatus)
	}
}

func TestDispatcherSinkFailureDoesNotBlockOthers(t *testing.T) {
	var mu sync.Mutex
	delivered := 0

	failing := SinkFunc(func(context.Context, StatusChange) error {
		return errors.New("gateway timeout")
	})
	working := SinkFunc(func(context.Context, StatusChange) error {
		mu.Lock()
		defer mu.Unlock()
		delivered++
		return nil
	})

	d := NewDispatcher(nil, failing, working, working)
	d.Dispatch(context.Background(), testChange())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, delivered)
}

func TestDispatcherWithoutSinksIsANoOp(t *testing.T) {
	d := NewDispatcher(nil)
	d.Dispatch(context.Background(), testChange())
}

func TestSinkFuncNil(t *testing.T) {
	var f SinkFunc
	assert.NoError(t, f.SendStatusChange(context.Background(), testChange()))
}
