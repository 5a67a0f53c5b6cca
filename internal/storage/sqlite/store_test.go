package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wimitasks/internal/models"
)

func ptr(s string) *string { return &s }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	st, err := Open(filepath.Join(t.TempDir(), "test.db"), nil, WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.Seed(ctx))
	require.NoError(t, st.Seed(ctx))

	n, err := st.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	users, err := st.FindUsers(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestFindUsersMatchesBothFields(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.Seed(ctx))

	users, err := st.FindUsers(ctx, ptr("john.doe@example.com"), ptr("password123"))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "John", users[0].FirstName)

	users, err = st.FindUsers(ctx, ptr("john.doe@example.com"), ptr("wrong"))
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFindUsersEmptyFilterIsCompared(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.Seed(ctx))

	users, err := st.FindUsers(ctx, ptr("john.doe@example.com"), ptr(""))
	require.NoError(t, err)
	assert.Empty(t, users, "empty password matches no stored password")

	users, err = st.FindUsers(ctx, ptr(""), ptr("password123"))
	require.NoError(t, err)
	assert.Empty(t, users, "empty email matches no stored email")
}

func TestTodoLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	user, err := st.CreateUser(ctx, models.Credentials{Identity: models.Identity{Email: "a@b.c"}, Password: "pw"})
	require.NoError(t, err)
	list, err := st.CreateTodoList(ctx, models.TaskList{UserID: user.ID, Title: "Inbox"})
	require.NoError(t, err)
	assert.NotEmpty(t, list.Color)

	created, err := st.CreateTodo(ctx, models.Task{TodoListID: list.ID, Title: "  Write tests  ", DueDate: models.NewDate(2024, time.April, 1)})
	require.NoError(t, err)
	assert.Equal(t, "Write tests", created.Title)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "2024-04-01", created.DueDate.String())

	done := true
	high := models.PriorityHigh
	updated, err := st.UpdateTodo(ctx, created.ID, models.UpdateTaskInput{Completed: &done, Priority: &high})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, "Write tests", updated.Title)

	tasks, err := st.ListTodos(ctx, &list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NoError(t, st.DeleteTodo(ctx, created.ID))
	assert.ErrorIs(t, st.DeleteTodo(ctx, created.ID), ErrNotFound)
	_, err = st.GetTodo(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTodoRequiresExistingList(t *testing.T) {
	_, err := openTestStore(t).CreateTodo(context.Background(), models.Task{TodoListID: 99, Title: "Orphan"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTodoListsFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.Seed(ctx))

	users, err := st.FindUsers(ctx, ptr("jane.smith@example.com"), nil)
	require.NoError(t, err)
	require.Len(t, users, 1)

	lists, err := st.ListTodoLists(ctx, &users[0].ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Side project", lists[0].Title)
}
