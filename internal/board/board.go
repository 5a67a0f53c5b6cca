// Package board aggregates a user's lists and their tasks into a single view
// and owns every change to that view.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"wimitasks/internal/models"
)

// ErrStaleLoad is returned by a Load that was superseded by a later one.
var ErrStaleLoad = errors.New("load superseded by a newer request")

// DataFetchError wraps a failed read. ListID is zero when the list fetch failed.
type DataFetchError struct {
	Op     string
	ListID int64
	Err    error
}

func (e *DataFetchError) Error() string {
	if e.ListID != 0 {
		return fmt.Sprintf("%s for list %d: %v", e.Op, e.ListID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// Fetcher reads lists and tasks from the API.
type Fetcher interface {
	ListsByOwner(ctx context.Context, userID int64) ([]models.TaskList, error)
	TasksByList(ctx context.Context, listID int64) ([]models.Task, error)
}

// Status is the lifecycle of the aggregated view.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// Snapshot is a consistent copy of the aggregator state.
type Snapshot struct {
	OwnerID int64
	Status  Status
	Err     error
	View    View
}

// Aggregator loads and holds the view for one owner at a time.
type Aggregator struct {
	fetcher     Fetcher
	logger      *slog.Logger
	concurrency int

	mu        sync.Mutex
	token     uint64
	ownerID   int64
	viewOwner int64
	status    Status
	err       error
	view      View
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithConcurrency bounds the number of task fetches in flight. Zero means unbounded.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) { a.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an idle aggregator.
func New(fetcher Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{fetcher: fetcher, logger: slog.Default(), concurrency: 8}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load fetches every list of ownerID and then each list's tasks concurrently.
// Any failed request fails the whole load and the previous view is kept. When
// another Load starts before this one finishes, this result is dropped and
// ErrStaleLoad returned.
func (a *Aggregator) Load(ctx context.Context, ownerID int64) (View, error) {
	a.mu.Lock()
	a.token++
	token := a.token
	a.ownerID = ownerID
	if a.viewOwner != ownerID {
		a.view = nil
		a.viewOwner = ownerID
	}
	a.status = StatusLoading
	a.err = nil
	a.mu.Unlock()

	view, err := a.fetch(ctx, ownerID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if token != a.token {
		a.logger.Debug("discarding superseded load", slog.Int64("owner_id", ownerID), slog.Uint64("token", token), slog.Uint64("latest", a.token))
		return nil, ErrStaleLoad
	}
	if err != nil {
		a.status = StatusFailed
		a.err = err
		a.logger.Warn("load failed", slog.Int64("owner_id", ownerID), slog.String("error", err.Error()))
		return nil, err
	}
	a.view = view
	a.status = StatusReady
	return view.Clone(), nil
}

func (a *Aggregator) fetch(ctx context.Context, ownerID int64) (View, error) {
	lists, err := a.fetcher.ListsByOwner(ctx, ownerID)
	if err != nil {
		return nil, &DataFetchError{Op: "fetch lists", Err: err}
	}

	view := make(View, len(lists))
	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, list := range lists {
		g.Go(func() error {
			tasks, err := a.fetcher.TasksByList(gctx, list.ID)
			if err != nil {
				return &DataFetchError{Op: "fetch tasks", ListID: list.ID, Err: err}
			}
			own := make([]models.Task, 0, len(tasks))
			for _, t := range tasks {
				if t.TodoListID == list.ID {
					own = append(own, t)
				}
			}
			models.SortTasks(own)
			view[i] = ListWithTasks{TaskList: list, Tasks: own}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{OwnerID: a.ownerID, Status: a.status, Err: a.err, View: a.view.Clone()}
}

// View returns a copy of the current view.
func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.Clone()
}

// Reset drops the view and invalidates any load in flight.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token++
	a.ownerID = 0
	a.viewOwner = 0
	a.status = StatusIdle
	a.err = nil
	a.view = nil
}

// ApplyCreated records a task the API has just created.
func (a *Aggregator) ApplyCreated(t models.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = ApplyCreated(a.view, t)
}

// ApplyUpdated records the canonical copy of an updated task.
func (a *Aggregator) ApplyUpdated(t models.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = ApplyUpdated(a.view, t)
}

// ApplyDeleted records a task the API has just deleted.
func (a *Aggregator) ApplyDeleted(listID, taskID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = ApplyDeleted(a.view, listID, taskID)
}
