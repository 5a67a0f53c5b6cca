package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"wimitasks/internal/models"
)

type createTaskBody struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	TodoListID  int64           `json:"todoListId"`
	Priority    models.Priority `json:"priority"`
	DueDate     models.Date     `json:"dueDate"`
}

func taskPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

// TasksByList returns the list's tasks sorted by priority, then newest first.
func (c *Client) TasksByList(ctx context.Context, listID int64) ([]models.Task, error) {
	var tasks []models.Task
	q := url.Values{"todoListId": {strconv.FormatInt(listID, 10)}}
	if err := c.do(ctx, http.MethodGet, "/todos", q, nil, &tasks); err != nil {
		return nil, err
	}
	models.SortTasks(tasks)
	return tasks, nil
}

// CreateTask posts a new, not yet completed task. The server assigns id and createdAt.
func (c *Client) CreateTask(ctx context.Context, in models.CreateTaskInput) (models.Task, error) {
	body := createTaskBody{
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		TodoListID:  in.TodoListID,
		Priority:    in.Priority.OrDefault(),
		DueDate:     in.DueDate,
	}
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/todos", nil, body, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask sends only the fields set in patch.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch models.UpdateTaskInput) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id), nil, patch, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}
