package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC)
}

func TestSortTasksPriorityBeatsCreatedAt(t *testing.T) {
	tasks := []Task{
		{ID: 1, Priority: PriorityLow, CreatedAt: at(20)},
		{ID: 2, Priority: PriorityHigh, CreatedAt: at(1)},
		{ID: 3, Priority: PriorityMedium, CreatedAt: at(15)},
	}
	SortTasks(tasks)

	ids := []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestSortTasksEqualPriorityNewestFirst(t *testing.T) {
	tasks := []Task{
		{ID: 1, Priority: PriorityMedium, CreatedAt: at(1)},
		{ID: 2, Priority: PriorityMedium, CreatedAt: at(3)},
		{ID: 3, Priority: PriorityMedium, CreatedAt: at(2)},
	}
	SortTasks(tasks)

	ids := []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestSortListsNewestFirst(t *testing.T) {
	lists := []TaskList{{ID: 1, CreatedAt: at(1)}, {ID: 2, CreatedAt: at(9)}}
	SortLists(lists)
	assert.Equal(t, int64(2), lists[0].ID)
}

func TestZeroPrioritySortsAsMedium(t *testing.T) {
	assert.Equal(t, PriorityMedium.Weight(), Priority("").Weight())

	tasks := []Task{
		{ID: 1, Priority: PriorityLow, CreatedAt: at(5)},
		{ID: 2, CreatedAt: at(1)},
	}
	SortTasks(tasks)
	assert.Equal(t, int64(2), tasks[0].ID)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"dueDate":"2024-05-01T10:30:00Z","priority":"low"}`), &task))
	assert.Equal(t, NewDate(2024, time.May, 1), task.DueDate)

	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":""}`), &task))
	assert.True(t, task.DueDate.IsZero())

	b, err := json.Marshal(Task{DueDate: NewDate(2024, time.June, 2)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"dueDate":"2024-06-02"`)

	b, err = json.Marshal(Task{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"dueDate":""`)
}

func TestDateCompare(t *testing.T) {
	today := DateOf(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC))
	yesterday := NewDate(2024, time.March, 9)

	assert.True(t, yesterday.Before(today))
	assert.False(t, today.Before(today))
	assert.Equal(t, 1, yesterday.DaysUntil(today))
	assert.Equal(t, -1, today.DaysUntil(yesterday))
}

func TestUpdateApply(t *testing.T) {
	done := true
	title := "Ship it"
	got := UpdateTaskInput{Completed: &done, Title: &title}.Apply(Task{ID: 1, Title: "Draft", Priority: PriorityLow})

	assert.True(t, got.Completed)
	assert.Equal(t, "Ship it", got.Title)
	assert.Equal(t, PriorityLow, got.Priority)
	assert.True(t, UpdateTaskInput{}.Empty())
}

func TestWriteErrorMatchesSentinel(t *testing.T) {
	cause := assert.AnError
	err := &WriteError{Op: "update", TaskID: 3, Err: cause}

	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "update task 3: "+cause.Error(), err.Error())
}
