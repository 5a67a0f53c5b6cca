package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wimitasks/internal/models"
)

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 8, 0, 0, 0, time.UTC)
}

type fakeFetcher struct {
	mu      sync.Mutex
	lists   map[int64][]models.TaskList
	tasks   map[int64][]models.Task
	listErr error
	taskErr map[int64]error
	// gates delays TasksByList for a list until the channel is closed.
	gates map[int64]chan struct{}
	// listGates delays ListsByOwner for an owner until the channel is closed.
	listGates map[int64]chan struct{}
	// entered receives the owner id when ListsByOwner is called.
	entered chan int64
	// served receives the list id when TasksByList answers.
	served chan int64
}

func (f *fakeFetcher) ListsByOwner(ctx context.Context, userID int64) ([]models.TaskList, error) {
	f.mu.Lock()
	gate := f.listGates[userID]
	entered := f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- userID
	}
	if gate != nil {
		<-gate
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.TaskList(nil), f.lists[userID]...), nil
}

func (f *fakeFetcher) TasksByList(ctx context.Context, listID int64) ([]models.Task, error) {
	f.mu.Lock()
	gate := f.gates[listID]
	err := f.taskErr[listID]
	served := f.served
	f.mu.Unlock()
	if served != nil {
		defer func() { served <- listID }()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]models.Task(nil), f.tasks[listID]...), nil
}

func seeded() *fakeFetcher {
	return &fakeFetcher{
		lists: map[int64][]models.TaskList{
			1: {{ID: 10, Title: "Personal", UserID: 1, CreatedAt: at(5)}, {ID: 20, Title: "Work", UserID: 1, CreatedAt: at(1)}},
			2: {{ID: 30, Title: "Other", UserID: 2, CreatedAt: at(2)}},
		},
		tasks: map[int64][]models.Task{
			10: {
				{ID: 1, TodoListID: 10, Priority: models.PriorityLow, CreatedAt: at(6)},
				{ID: 2, TodoListID: 10, Priority: models.PriorityHigh, CreatedAt: at(5)},
			},
			20: {{ID: 3, TodoListID: 20, Priority: models.PriorityMedium, CreatedAt: at(2)}},
			30: {{ID: 4, TodoListID: 30, Priority: models.PriorityMedium, CreatedAt: at(3)}},
		},
		taskErr: map[int64]error{},
		gates:   map[int64]chan struct{}{},
	}
}

func TestLoadRestoresListOrderRegardlessOfCompletion(t *testing.T) {
	f := seeded()
	first := make(chan struct{})
	f.gates[10] = first
	f.served = make(chan int64, 2)
	a := New(f)

	done := make(chan struct{})
	var (
		view View
		err  error
	)
	go func() {
		defer close(done)
		view, err = a.Load(context.Background(), 1)
	}()

	// List 20 finishes while list 10 is still blocked.
	require.Equal(t, int64(20), <-f.served)
	close(first)
	<-done

	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, int64(10), view[0].ID)
	assert.Equal(t, int64(20), view[1].ID)
	assert.Equal(t, []int64{2, 1}, taskIDs(view[0].Tasks), "high priority first")
	assert.Equal(t, StatusReady, a.Snapshot().Status)
}

func TestLoadEmptyOwnerSucceeds(t *testing.T) {
	a := New(seeded())
	view, err := a.Load(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, view)
	assert.Equal(t, StatusReady, a.Snapshot().Status)
}

func TestLoadFailureKeepsPreviousView(t *testing.T) {
	f := seeded()
	a := New(f)
	_, err := a.Load(context.Background(), 1)
	require.NoError(t, err)

	f.taskErr[20] = errors.New("boom")
	_, err = a.Load(context.Background(), 1)

	var fetchErr *DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, int64(20), fetchErr.ListID)

	snap := a.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Error(t, snap.Err)
	assert.Len(t, snap.View, 2, "last good view kept")
}

func TestFirstLoadFailureLeavesEmptyView(t *testing.T) {
	f := seeded()
	f.listErr = errors.New("offline")
	a := New(f)

	_, err := a.Load(context.Background(), 1)
	var fetchErr *DataFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.ListID)

	snap := a.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Empty(t, snap.View)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	f := seeded()
	gate := make(chan struct{})
	f.listGates = map[int64]chan struct{}{1: gate}
	f.entered = make(chan int64, 2)
	a := New(f)

	staleDone := make(chan error, 1)
	go func() {
		_, err := a.Load(context.Background(), 1)
		staleDone <- err
	}()
	require.Equal(t, int64(1), <-f.entered)

	view, err := a.Load(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, view, 1)

	close(gate)
	assert.ErrorIs(t, <-staleDone, ErrStaleLoad)

	snap := a.Snapshot()
	assert.Equal(t, int64(2), snap.OwnerID)
	require.Len(t, snap.View, 1)
	assert.Equal(t, int64(30), snap.View[0].ID)
}

func TestResetInvalidatesInflightLoad(t *testing.T) {
	f := seeded()
	gate := make(chan struct{})
	f.listGates = map[int64]chan struct{}{1: gate}
	f.entered = make(chan int64, 1)
	a := New(f)

	errc := make(chan error, 1)
	go func() {
		_, err := a.Load(context.Background(), 1)
		errc <- err
	}()
	require.Equal(t, int64(1), <-f.entered)
	a.Reset()
	close(gate)

	assert.ErrorIs(t, <-errc, ErrStaleLoad)
	assert.Equal(t, StatusIdle, a.Snapshot().Status)
	assert.Empty(t, a.View())
}

func TestAggregatorApplyMutations(t *testing.T) {
	a := New(seeded())
	_, err := a.Load(context.Background(), 1)
	require.NoError(t, err)

	a.ApplyCreated(models.Task{ID: 9, TodoListID: 20, Priority: models.PriorityHigh, CreatedAt: at(9)})
	v := a.View()
	assert.Equal(t, int64(20), v[0].ID)
	assert.Equal(t, []int64{9, 3}, taskIDs(v[0].Tasks))

	a.ApplyDeleted(20, 9)
	v = a.View()
	assert.Equal(t, []int64{3}, taskIDs(v[0].Tasks))
}

func taskIDs(tasks []models.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
