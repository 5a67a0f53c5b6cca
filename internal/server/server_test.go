package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wimitasks/internal/models"
	"wimitasks/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Seed(t.Context()))
	return New(st, nil)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestFindUsersByCredentials(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/users?email=john.doe@example.com&password=password123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var users []models.Credentials
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Doe", users[0].LastName)

	rec = do(t, srv, http.MethodGet, "/users?email=john.doe@example.com&password=nope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFindUsersEmptyValueIsAFilter(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/users?email=john.doe@example.com&password=",
		"/users?email=&password=password123",
	} {
		rec := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}

	rec := do(t, srv, http.MethodGet, "/users?email=john.doe@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.Credentials
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 1, "an absent parameter does not filter")
}

func TestTodoListsFilteredByUser(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/todoLists?userId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var lists []models.TaskList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 2)
	for _, l := range lists {
		assert.Equal(t, int64(1), l.UserID)
	}

	rec = do(t, srv, http.MethodGet, "/todoLists?userId=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTodoCrud(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/todos", `{"title":"Call bank","description":"","completed":false,"todoListId":1,"priority":"high","dueDate":""}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.PriorityHigh, created.Priority)

	rec = do(t, srv, http.MethodPatch, "/todos/"+itoa(created.ID), `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var patched models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	assert.True(t, patched.Completed)
	assert.Equal(t, "Call bank", patched.Title)

	rec = do(t, srv, http.MethodDelete, "/todos/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/todos/"+itoa(created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/todos/"+itoa(created.ID), `{"completed":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTodoRequiresTitle(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/todos", `{"todoListId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestMissingRowIsLoggedAsWarning(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var buf bytes.Buffer
	srv := New(st, slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := do(t, srv, http.MethodGet, "/todos/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var levels []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry struct {
			Level  string `json:"level"`
			Msg    string `json:"msg"`
			Status int    `json:"status"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		if entry.Msg == "request failed" {
			levels = append(levels, entry.Level)
			assert.Equal(t, http.StatusNotFound, entry.Status)
		}
	}
	assert.Equal(t, []string{"WARN"}, levels)
}
