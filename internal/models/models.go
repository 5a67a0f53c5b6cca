package models

import (
	"errors"
	"fmt"
	"time"
)

// Identity is the authenticated user as the client keeps it. It never carries a password.
type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
}

// DisplayName joins first and last name.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// Credentials is a user record as stored by the API, secret included.
type Credentials struct {
	Identity
	Password string `json:"password"`
}

// TaskList groups tasks owned by a single user.
type TaskList struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UserID    int64     `json:"userId"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task represents a single actionable item inside a list.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	TodoListID  int64     `json:"todoListId"`
	Priority    Priority  `json:"priority"`
	DueDate     Date      `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateTaskInput carries the client-supplied fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	TodoListID  int64
	Priority    Priority
	DueDate     Date
}

// UpdateTaskInput is a partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (u UpdateTaskInput) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil && u.Priority == nil && u.DueDate == nil
}

// Apply returns a copy of t with the update merged in.
func (u UpdateTaskInput) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	return t
}

// ErrWrite marks failures of create, update and delete requests.
var ErrWrite = errors.New("write failed")

// WriteError describes a failed remote write on a task.
type WriteError struct {
	Op     string
	TaskID int64
	Err    error
}

func (e *WriteError) Error() string {
	if e.TaskID == 0 {
		return fmt.Sprintf("%s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %d: %v", e.Op, e.TaskID, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }
