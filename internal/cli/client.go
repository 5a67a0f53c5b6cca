package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"

	"wimitasks/internal/api"
	"wimitasks/internal/board"
	"wimitasks/internal/models"
	"wimitasks/internal/session"
)

// errNotLoggedIn is returned by commands that need an identity.
var errNotLoggedIn = errors.New("not logged in, run `wimitasks login` first")

// client bundles the collaborators of the client commands.
type client struct {
	api     *api.Client
	session *session.Store
	close   func()
}

func (app *App) persistence() (session.Persistence, func(), error) {
	sc := app.cfg.Session
	switch sc.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
		})
		return session.NewRedisStore(rdb, sc.Key, 0), func() { _ = rdb.Close() }, nil
	case "memory":
		return session.NewMemoryStore(), func() {}, nil
	case "file":
		return session.NewFileStore(sc.Path, sc.Key), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", sc.Backend)
}

// openClient builds the API client and restores the persisted session.
func (app *App) openClient(ctx context.Context) (*client, error) {
	persist, closeFn, err := app.persistence()
	if err != nil {
		return nil, err
	}
	c := api.New(app.cfg.API.BaseURL, api.WithTimeout(app.cfg.API.Timeout), api.WithLogger(app.logger))
	s := session.New(c, persist, app.logger)
	s.Initialize(ctx)
	return &client{api: c, session: s, close: closeFn}, nil
}

func (c *client) identity() (models.Identity, error) {
	id, ok := c.session.Identity()
	if !ok {
		return models.Identity{}, errNotLoggedIn
	}
	return id, nil
}

// loadBoard loads the view of the logged-in user.
func (c *client) loadBoard(ctx context.Context, app *App) (*board.Aggregator, models.Identity, error) {
	id, err := c.identity()
	if err != nil {
		return nil, id, err
	}
	agg := board.New(c.api, board.WithLogger(app.logger))
	if _, err := agg.Load(ctx, id.ID); err != nil {
		return nil, id, err
	}
	return agg, id, nil
}

// findTask locates a task of the logged-in user in the loaded view.
func findTask(agg *board.Aggregator, id int64) (models.Task, string, error) {
	v := agg.View()
	t, ok := v.Task(id)
	if !ok {
		return models.Task{}, "", fmt.Errorf("task %d not found in your lists", id)
	}
	l, _ := v.List(t.TodoListID)
	return t, l.Title, nil
}

// prompt reads one trimmed line from r after writing label to w.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
