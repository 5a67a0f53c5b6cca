// Package form implements the task creation form: field rules evaluated on
// every change, and a submit that is only allowed while they all pass.
package form

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"wimitasks/internal/models"
)

var (
	// ErrNotReady is returned by Submit while a field rule is violated.
	ErrNotReady = errors.New("form has invalid fields")
	// ErrSubmitting is returned by Submit while a previous submission is in flight.
	ErrSubmitting = errors.New("submission already in progress")
	// ErrNoLists is returned when the user has no list to add a task to.
	ErrNoLists = errors.New("create a list before adding tasks")
)

// Creator issues the creation request.
type Creator interface {
	CreateTask(ctx context.Context, in models.CreateTaskInput) (models.Task, error)
}

// Reconciler receives tasks the API has created.
type Reconciler interface {
	ApplyCreated(t models.Task)
}

// Controller holds the state of one creation form.
type Controller struct {
	api    Creator
	rec    Reconciler
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	lists      []models.TaskList
	fields     Fields
	submitting bool
	submitErr  string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the due date rule.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController returns a form with default values for the given lists.
func NewController(api Creator, rec Reconciler, lists []models.TaskList, opts ...Option) *Controller {
	c := &Controller{api: api, rec: rec, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.lists = append([]models.TaskList(nil), lists...)
	c.fields = c.defaults()
	return c
}

func (c *Controller) defaults() Fields {
	f := Fields{Priority: string(models.PriorityMedium)}
	if len(c.lists) > 0 {
		f.ListID = strconv.FormatInt(c.lists[0].ID, 10)
	}
	return f
}

// SetLists replaces the selectable lists. A selection that no longer exists
// falls back to the first list.
func (c *Controller) SetLists(lists []models.TaskList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = append([]models.TaskList(nil), lists...)
	if id, err := strconv.ParseInt(c.fields.ListID, 10, 64); err != nil || !containsList(c.lists, id) {
		c.fields.ListID = c.defaults().ListID
	}
}

func (c *Controller) set(fn func(*Fields)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.fields)
}

func (c *Controller) SetTitle(s string)       { c.set(func(f *Fields) { f.Title = s }) }
func (c *Controller) SetDescription(s string) { c.set(func(f *Fields) { f.Description = s }) }
func (c *Controller) SetDueDate(s string)     { c.set(func(f *Fields) { f.DueDate = s }) }

func (c *Controller) SetList(id int64) {
	c.set(func(f *Fields) { f.ListID = strconv.FormatInt(id, 10) })
}

func (c *Controller) SetPriority(p models.Priority) {
	c.set(func(f *Fields) { f.Priority = string(p) })
}

// Fields returns the current raw values.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// Errors evaluates every rule against the current values.
func (c *Controller) Errors() Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Validate(c.fields, c.lists, Today(c.now()))
}

// CanSubmit reports whether Submit would issue a request.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists) > 0 && !c.submitting && Validate(c.fields, c.lists, Today(c.now())).Valid()
}

// Submitting reports whether a creation request is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// SubmitError is the message of the last failed submission, if any.
func (c *Controller) SubmitError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitErr
}

// Submit creates the task. On success the form is reset and the task handed
// to the reconciler; on failure the typed values are kept for a retry.
func (c *Controller) Submit(ctx context.Context) (models.Task, error) {
	c.mu.Lock()
	if len(c.lists) == 0 {
		c.mu.Unlock()
		return models.Task{}, ErrNoLists
	}
	if c.submitting {
		c.mu.Unlock()
		return models.Task{}, ErrSubmitting
	}
	if !Validate(c.fields, c.lists, Today(c.now())).Valid() {
		c.mu.Unlock()
		return models.Task{}, ErrNotReady
	}
	in := buildInput(c.fields)
	c.submitting = true
	c.submitErr = ""
	c.mu.Unlock()

	task, err := c.api.CreateTask(ctx, in)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.submitErr = err.Error()
		c.mu.Unlock()
		c.logger.Warn("create task failed", slog.String("error", err.Error()))
		return models.Task{}, &models.WriteError{Op: "create", Err: err}
	}
	c.fields = c.defaults()
	c.mu.Unlock()

	c.rec.ApplyCreated(task)
	return task, nil
}

// buildInput trims text and leaves empty optional fields unset. Fields must be valid.
func buildInput(f Fields) models.CreateTaskInput {
	listID, _ := strconv.ParseInt(strings.TrimSpace(f.ListID), 10, 64)
	priority, _ := models.ParsePriority(f.Priority)
	due, _ := models.ParseDate(f.DueDate)
	return models.CreateTaskInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		TodoListID:  listID,
		Priority:    priority,
		DueDate:     due,
	}
}
