package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wimitasks/internal/models"
)

func sampleView() View {
	return View{
		{TaskList: models.TaskList{ID: 2, Title: "Work"}, Tasks: []models.Task{
			{ID: 21, TodoListID: 2, Priority: models.PriorityMedium, CreatedAt: at(3)},
		}},
		{TaskList: models.TaskList{ID: 1, Title: "Home"}, Tasks: []models.Task{
			{ID: 11, TodoListID: 1, Priority: models.PriorityHigh, CreatedAt: at(2)},
			{ID: 12, TodoListID: 1, Priority: models.PriorityMedium, CreatedAt: at(4)},
			{ID: 13, TodoListID: 1, Priority: models.PriorityLow, CreatedAt: at(5)},
		}},
		{TaskList: models.TaskList{ID: 3, Title: "Misc"}},
	}
}

func TestApplyCreatedPlacesTaskAndPromotesList(t *testing.T) {
	before := sampleView()
	created := models.Task{ID: 14, TodoListID: 1, Priority: models.PriorityMedium, CreatedAt: at(9)}

	after := ApplyCreated(before, created)

	require.Len(t, after, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{after[0].ID, after[1].ID, after[2].ID})
	assert.Equal(t, []int64{11, 14, 12, 13}, taskIDs(after[0].Tasks))

	assert.Equal(t, int64(2), before[0].ID, "input untouched")
	assert.Len(t, before[1].Tasks, 3)
}

func TestApplyCreatedUnknownList(t *testing.T) {
	after := ApplyCreated(sampleView(), models.Task{ID: 99, TodoListID: 42})
	assert.Equal(t, sampleView(), after)
}

func TestApplyUpdatedKeepsPositionWithoutPriorityChange(t *testing.T) {
	updated := models.Task{ID: 13, TodoListID: 1, Priority: models.PriorityLow, Completed: true, CreatedAt: at(5)}

	after := ApplyUpdated(sampleView(), updated)

	list, ok := after.List(1)
	require.True(t, ok)
	assert.Equal(t, []int64{11, 12, 13}, taskIDs(list.Tasks))
	assert.True(t, list.Tasks[2].Completed)
}

func TestApplyUpdatedResortsOnPriorityChange(t *testing.T) {
	updated := models.Task{ID: 13, TodoListID: 1, Priority: models.PriorityHigh, CreatedAt: at(5)}

	after := ApplyUpdated(sampleView(), updated)

	list, _ := after.List(1)
	assert.Equal(t, []int64{13, 11, 12}, taskIDs(list.Tasks))
	assert.Equal(t, int64(2), after[0].ID, "list order unchanged")
}

func TestApplyDeleted(t *testing.T) {
	before := sampleView()
	after := ApplyDeleted(before, 1, 12)

	list, _ := after.List(1)
	assert.Equal(t, []int64{11, 13}, taskIDs(list.Tasks))
	assert.Len(t, before[1].Tasks, 3)

	same := ApplyDeleted(before, 2, 12)
	assert.Equal(t, before, same, "task looked up only in the given list")
}

func TestSummarize(t *testing.T) {
	v := ApplyUpdated(sampleView(), models.Task{ID: 11, TodoListID: 1, Priority: models.PriorityHigh, Completed: true, CreatedAt: at(2)})
	s := Summarize(v)

	assert.Equal(t, 3, s.Lists)
	assert.Equal(t, 4, s.Tasks)
	assert.Equal(t, ListStats{ListID: 1, Total: 3, Completed: 1}, s.ByList[1])
}

func TestViewLookups(t *testing.T) {
	v := sampleView()
	task, ok := v.Task(12)
	require.True(t, ok)
	assert.Equal(t, int64(1), task.TodoListID)

	_, ok = v.Task(404)
	assert.False(t, ok)
	assert.Len(t, v.Lists(), 3)
}
