package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wimitasks/internal/models"
)

type seedList struct {
	list  models.TaskList
	todos []models.Task
}

type seedUser struct {
	user  models.Credentials
	lists []seedList
}

func seedData(now time.Time) []seedUser {
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset).UTC() }
	due := func(offset int) models.Date { return models.DateOf(now.AddDate(0, 0, offset)) }

	return []seedUser{
		{
			user: models.Credentials{
				Identity: models.Identity{Email: "john.doe@example.com", FirstName: "John", LastName: "Doe", Avatar: "https://i.pravatar.cc/150?u=john", Role: "admin"},
				Password: "password123",
			},
			lists: []seedList{
				{
					list: models.TaskList{Title: "Work", Color: "#3b82f6", CreatedAt: day(-10)},
					todos: []models.Task{
						{Title: "Finish the monthly report", Description: "Numbers for Q3", Priority: models.PriorityHigh, DueDate: due(2), CreatedAt: day(-9)},
						{Title: "Review pull requests", Priority: models.PriorityMedium, CreatedAt: day(-5)},
						{Title: "Update team wiki", Priority: models.PriorityLow, Completed: true, CreatedAt: day(-8)},
					},
				},
				{
					list: models.TaskList{Title: "Personal", Color: "#10b981", CreatedAt: day(-3)},
					todos: []models.Task{
						{Title: "Book dentist appointment", Priority: models.PriorityMedium, DueDate: due(7), CreatedAt: day(-2)},
						{Title: "Buy groceries", Description: "Milk, eggs, bread", Priority: models.PriorityHigh, CreatedAt: day(-1)},
					},
				},
			},
		},
		{
			user: models.Credentials{
				Identity: models.Identity{Email: "jane.smith@example.com", FirstName: "Jane", LastName: "Smith", Avatar: "https://i.pravatar.cc/150?u=jane", Role: "user"},
				Password: "password456",
			},
			lists: []seedList{
				{
					list: models.TaskList{Title: "Side project", Color: "#8b5cf6", CreatedAt: day(-4)},
					todos: []models.Task{
						{Title: "Sketch landing page", Priority: models.PriorityMedium, CreatedAt: day(-4)},
					},
				},
			},
		},
	}
}

// Seed loads demo users, lists and todos when the database has no users yet.
func (s *Store) Seed(ctx context.Context) error {
	existing, err := s.CountUsers(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		s.logger.Debug("seed skipped", slog.Int("users", existing))
		return nil
	}

	for _, su := range seedData(s.now()) {
		user, err := s.CreateUser(ctx, su.user)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.user.Email, err)
		}
		for _, sl := range su.lists {
			sl.list.UserID = user.ID
			list, err := s.CreateTodoList(ctx, sl.list)
			if err != nil {
				return fmt.Errorf("seed list %s: %w", sl.list.Title, err)
			}
			for _, todo := range sl.todos {
				todo.TodoListID = list.ID
				if _, err := s.CreateTodo(ctx, todo); err != nil {
					return fmt.Errorf("seed todo %s: %w", todo.Title, err)
				}
			}
		}
	}
	s.logger.Info("seeded demo data")
	return nil
}
