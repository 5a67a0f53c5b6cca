package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wimitasks/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for server-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS todo_lists (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            title TEXT NOT NULL,
            color TEXT NOT NULL DEFAULT '#3b82f6',
            created_at DATETIME NOT NULL,
            FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS todos (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            todo_list_id INTEGER NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            completed INTEGER NOT NULL DEFAULT 0,
            priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
            due_date TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            FOREIGN KEY(todo_list_id) REFERENCES todo_lists(id) ON DELETE CASCADE
        );`,
		`CREATE INDEX IF NOT EXISTS idx_todo_lists_user ON todo_lists(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_list ON todos(todo_list_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// FindUsers returns users matching every non-nil filter, password included.
// A filter set to the empty string matches only empty values.
func (s *Store) FindUsers(ctx context.Context, email, password *string) ([]models.Credentials, error) {
	query := `SELECT id, email, password, first_name, last_name, avatar, role FROM users`
	var (
		where []string
		args  []any
	)
	if email != nil {
		where = append(where, "email = ?")
		args = append(args, *email)
	}
	if password != nil {
		where = append(where, "password = ?")
		args = append(args, *password)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	users := []models.Credentials{}
	for rows.Next() {
		var u models.Credentials
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Avatar, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateUser persists a user record.
func (s *Store) CreateUser(ctx context.Context, u models.Credentials) (models.Credentials, error) {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return models.Credentials{}, fmt.Errorf("user email and password must not be empty")
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(email, password, first_name, last_name, avatar, role) VALUES(?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(u.Email), u.Password, u.FirstName, u.LastName, u.Avatar, u.Role)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Credentials{}, fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	return u, nil
}

// ListTodoLists retrieves lists ordered by creation date, optionally filtered by owner.
func (s *Store) ListTodoLists(ctx context.Context, userID *int64) ([]models.TaskList, error) {
	query := `SELECT id, user_id, title, color, created_at FROM todo_lists`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todo lists: %w", err)
	}
	defer rows.Close()

	lists := []models.TaskList{}
	for rows.Next() {
		var l models.TaskList
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.Color, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan todo list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// CreateTodoList persists a new list with an optional color.
func (s *Store) CreateTodoList(ctx context.Context, l models.TaskList) (models.TaskList, error) {
	if strings.TrimSpace(l.Title) == "" {
		return models.TaskList{}, fmt.Errorf("list title must not be empty")
	}
	if l.Color == "" {
		l.Color = randomPaletteColor()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO todo_lists(user_id, title, color, created_at) VALUES(?, ?, ?, ?)`,
		l.UserID, strings.TrimSpace(l.Title), l.Color, l.CreatedAt)
	if err != nil {
		return models.TaskList{}, fmt.Errorf("insert todo list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TaskList{}, fmt.Errorf("todo list id: %w", err)
	}
	return s.GetTodoList(ctx, id)
}

// GetTodoList fetches a single list by id.
func (s *Store) GetTodoList(ctx context.Context, id int64) (models.TaskList, error) {
	var l models.TaskList
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, title, color, created_at FROM todo_lists WHERE id = ?`, id).
		Scan(&l.ID, &l.UserID, &l.Title, &l.Color, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskList{}, fmt.Errorf("todo list %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.TaskList{}, fmt.Errorf("get todo list: %w", err)
	}
	return l, nil
}

const todoColumns = `id, todo_list_id, title, description, completed, priority, due_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (models.Task, error) {
	var (
		t   models.Task
		due string
	)
	if err := row.Scan(&t.ID, &t.TodoListID, &t.Title, &t.Description, &t.Completed, &t.Priority, &due, &t.CreatedAt); err != nil {
		return models.Task{}, err
	}
	d, err := models.ParseDate(due)
	if err != nil {
		return models.Task{}, err
	}
	t.DueDate = d
	return t, nil
}

// ListTodos returns todos in insertion order, optionally filtered by list.
func (s *Store) ListTodos(ctx context.Context, listID *int64) ([]models.Task, error) {
	query := `SELECT ` + todoColumns + ` FROM todos`
	var args []any
	if listID != nil {
		query += ` WHERE todo_list_id = ?`
		args = append(args, *listID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTodo inserts a new todo; id and creation time are assigned here.
func (s *Store) CreateTodo(ctx context.Context, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, fmt.Errorf("todo title must not be empty")
	}
	t.Priority = t.Priority.OrDefault()
	if !t.Priority.Valid() {
		return models.Task{}, fmt.Errorf("invalid priority %q", t.Priority)
	}
	if _, err := s.GetTodoList(ctx, t.TodoListID); err != nil {
		return models.Task{}, err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO todos(todo_list_id, title, description, completed, priority, due_date, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		t.TodoListID, strings.TrimSpace(t.Title), strings.TrimSpace(t.Description), t.Completed, string(t.Priority), t.DueDate.String(), t.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("todo id: %w", err)
	}
	return s.GetTodo(ctx, id)
}

// GetTodo retrieves a todo by id.
func (s *Store) GetTodo(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// UpdateTodo merges the provided fields into the stored todo.
func (s *Store) UpdateTodo(ctx context.Context, id int64, changes models.UpdateTaskInput) (models.Task, error) {
	current, err := s.GetTodo(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	next := changes.Apply(current)
	if strings.TrimSpace(next.Title) == "" {
		return models.Task{}, fmt.Errorf("todo title must not be empty")
	}
	if !next.Priority.Valid() {
		return models.Task{}, fmt.Errorf("invalid priority %q", next.Priority)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE todos SET title = ?, description = ?, completed = ?, priority = ?, due_date = ? WHERE id = ?`,
		strings.TrimSpace(next.Title), next.Description, next.Completed, string(next.Priority), next.DueDate.String(), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update todo: %w", err)
	}
	return s.GetTodo(ctx, id)
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return nil
}

func randomPaletteColor() string {
	palette := []string{
		"#3b82f6", // blue-500
		"#8b5cf6", // violet-500
		"#ef4444", // red-500
		"#10b981", // emerald-500
		"#f97316", // orange-500
		"#f59e0b", // amber-500
		"#0ea5e9", // sky-500
	}
	return palette[rand.IntN(len(palette))]
}
