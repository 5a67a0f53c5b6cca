// Package item drives the actions available on a single task: the optimistic
// completion toggle, confirmed deletion and editing.
package item

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wimitasks/internal/form"
	"wimitasks/internal/models"
)

var (
	// ErrToggleInFlight is returned when a toggle is requested before the previous one resolved.
	ErrToggleInFlight = errors.New("toggle already in progress")
	// ErrBusy is returned while a delete or edit request for the task is outstanding.
	ErrBusy = errors.New("task has a request in progress")
	// ErrNotConfirmed is returned by ConfirmDelete without a prior RequestDelete.
	ErrNotConfirmed = errors.New("delete was not confirmed")
	// ErrDeleted is returned for any action on a task that has been removed.
	ErrDeleted = errors.New("task was deleted")
)

// DefaultNoticeTTL is how long an error notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// Updater issues the write requests on a task.
type Updater interface {
	UpdateTask(ctx context.Context, id int64, patch models.UpdateTaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Reconciler receives the server's view of successful writes.
type Reconciler interface {
	ApplyUpdated(t models.Task)
	ApplyDeleted(listID, taskID int64)
}

// Phase is the state of the optimistic completion toggle.
type Phase int

const (
	// Confirmed means the displayed task matches the last server response.
	Confirmed Phase = iota
	// Pending means the completed flag was flipped locally and the update is outstanding.
	Pending
	// Reverting means the update failed and the flag is being restored.
	Reverting
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Reverting:
		return "reverting"
	}
	return "confirmed"
}

// Notice is a transient message attached to the task.
type Notice struct {
	Message   string
	ExpiresAt time.Time
}

// Active reports whether the notice is still to be shown at now.
func (n Notice) Active(now time.Time) bool {
	return n.Message != "" && now.Before(n.ExpiresAt)
}

// EditInput holds the raw values of the edit surface.
type EditInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
}

func (in EditInput) fields() form.Fields {
	return form.Fields{Title: in.Title, Description: in.Description, Priority: in.Priority, DueDate: in.DueDate}
}

// Controller owns the displayed copy of one task.
type Controller struct {
	api       Updater
	rec       Reconciler
	logger    *slog.Logger
	now       func() time.Time
	noticeTTL time.Duration
	onPhase   func(Phase)

	mu         sync.Mutex
	task       models.Task
	phase      Phase
	busy       bool
	confirming bool
	deleted    bool
	editing    bool
	editErr    string
	notice     Notice
}

// Option customizes a Controller.
type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithNoticeTTL(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.noticeTTL = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPhaseHook registers fn to observe every toggle phase change.
func WithPhaseHook(fn func(Phase)) Option {
	return func(c *Controller) { c.onPhase = fn }
}

// New returns a controller displaying t.
func New(t models.Task, api Updater, rec Reconciler, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		rec:       rec,
		logger:    slog.Default(),
		now:       time.Now,
		noticeTTL: DefaultNoticeTTL,
		task:      t,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Task returns the task as it should be displayed, optimistic state included.
func (c *Controller) Task() models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.task
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Notice returns the current notice if it has not expired.
func (c *Controller) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.notice.Active(c.now()) {
		return Notice{}, false
	}
	return c.notice, true
}

// Deleted reports whether the task was removed on the server.
func (c *Controller) Deleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted
}

// Sync replaces the displayed task with a freshly loaded copy. It is ignored
// while a request is outstanding.
func (c *Controller) Sync(t models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == Confirmed && !c.busy && t.ID == c.task.ID {
		c.task = t
	}
}

func (c *Controller) setNotice(msg string) {
	c.notice = Notice{Message: msg, ExpiresAt: c.now().Add(c.noticeTTL)}
}

func (c *Controller) enter(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	if c.onPhase != nil {
		c.onPhase(p)
	}
}

// ToggleCompleted flips the completed flag immediately and asks the server to
// confirm it. A failed request restores the previous value and sets a notice.
func (c *Controller) ToggleCompleted(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.deleted:
		c.mu.Unlock()
		return ErrDeleted
	case c.phase != Confirmed:
		c.mu.Unlock()
		return ErrToggleInFlight
	case c.busy:
		c.mu.Unlock()
		return ErrBusy
	}
	prev := c.task.Completed
	next := !prev
	c.task.Completed = next
	id := c.task.ID
	c.mu.Unlock()
	c.enter(Pending)

	updated, err := c.api.UpdateTask(ctx, id, models.UpdateTaskInput{Completed: &next})
	if err != nil {
		c.enter(Reverting)
		c.mu.Lock()
		c.task.Completed = prev
		c.setNotice("could not update task: " + err.Error())
		c.mu.Unlock()
		c.enter(Confirmed)
		c.logger.Warn("toggle failed", slog.Int64("task_id", id), slog.String("error", err.Error()))
		return &models.WriteError{Op: "update", TaskID: id, Err: err}
	}

	c.mu.Lock()
	c.task = updated
	c.mu.Unlock()
	c.enter(Confirmed)
	c.rec.ApplyUpdated(updated)
	return nil
}

// RequestDelete opens the confirmation step.
func (c *Controller) RequestDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.deleted {
		c.confirming = true
	}
}

// CancelDelete closes the confirmation step without any request.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirming = false
}

// Confirming reports whether a delete awaits confirmation.
func (c *Controller) Confirming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirming
}

// ConfirmDelete issues the delete request. The task leaves the view only once
// the server accepted it.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.deleted:
		c.mu.Unlock()
		return ErrDeleted
	case !c.confirming:
		c.mu.Unlock()
		return ErrNotConfirmed
	case c.busy || c.phase != Confirmed:
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	t := c.task
	c.mu.Unlock()

	err := c.api.DeleteTask(ctx, t.ID)

	c.mu.Lock()
	c.busy = false
	c.confirming = false
	if err != nil {
		c.setNotice("could not delete task: " + err.Error())
		c.mu.Unlock()
		c.logger.Warn("delete failed", slog.Int64("task_id", t.ID), slog.String("error", err.Error()))
		return &models.WriteError{Op: "delete", TaskID: t.ID, Err: err}
	}
	c.deleted = true
	c.mu.Unlock()

	c.rec.ApplyDeleted(t.TodoListID, t.ID)
	return nil
}

// OpenEdit opens the edit surface and returns its initial values.
func (c *Controller) OpenEdit() EditInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = true
	c.editErr = ""
	return EditInput{
		Title:       c.task.Title,
		Description: c.task.Description,
		Priority:    string(c.task.Priority.OrDefault()),
		DueDate:     c.task.DueDate.String(),
	}
}

func (c *Controller) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = false
	c.editErr = ""
}

// Editing reports whether the edit surface is open.
func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// EditError is the inline message of the last failed edit.
func (c *Controller) EditError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editErr
}

// EditErrors evaluates the field rules against in.
func (c *Controller) EditErrors(in EditInput) form.Errors {
	return form.ValidateEdit(in.fields(), form.Today(c.now()))
}

// Edit replaces title, description, priority and due date. An empty due date
// clears it. On failure the edit surface stays open with the error inline.
func (c *Controller) Edit(ctx context.Context, in EditInput) error {
	if !c.EditErrors(in).Valid() {
		return form.ErrNotReady
	}
	c.mu.Lock()
	switch {
	case c.deleted:
		c.mu.Unlock()
		return ErrDeleted
	case c.busy || c.phase != Confirmed:
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.editErr = ""
	id := c.task.ID
	c.mu.Unlock()

	patch := editPatch(in)
	updated, err := c.api.UpdateTask(ctx, id, patch)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.editErr = err.Error()
		c.mu.Unlock()
		c.logger.Warn("edit failed", slog.Int64("task_id", id), slog.String("error", err.Error()))
		return &models.WriteError{Op: "update", TaskID: id, Err: err}
	}
	c.task = updated
	c.editing = false
	c.mu.Unlock()

	c.rec.ApplyUpdated(updated)
	return nil
}

// editPatch converts validated input into a full replacement of the editable fields.
func editPatch(in EditInput) models.UpdateTaskInput {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	priority, _ := models.ParsePriority(in.Priority)
	due, _ := models.ParseDate(in.DueDate)
	return models.UpdateTaskInput{
		Title:       &title,
		Description: &desc,
		Priority:    &priority,
		DueDate:     &due,
	}
}
