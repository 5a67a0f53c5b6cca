package board

import (
	"slices"

	"wimitasks/internal/models"
)

// ListWithTasks pairs a list with its sorted tasks.
type ListWithTasks struct {
	models.TaskList
	Tasks []models.Task `json:"tasks"`
}

// View is the aggregated page: lists in display order, each with its tasks.
type View []ListWithTasks

// Clone returns a deep copy of v.
func (v View) Clone() View {
	if v == nil {
		return nil
	}
	out := make(View, len(v))
	for i, l := range v {
		out[i] = ListWithTasks{TaskList: l.TaskList, Tasks: slices.Clone(l.Tasks)}
	}
	return out
}

// List returns the list with the given id.
func (v View) List(id int64) (ListWithTasks, bool) {
	for _, l := range v {
		if l.ID == id {
			return l, true
		}
	}
	return ListWithTasks{}, false
}

// Task finds a task by id across all lists.
func (v View) Task(id int64) (models.Task, bool) {
	for _, l := range v {
		for _, t := range l.Tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Task{}, false
}

// Lists returns the bare lists in display order.
func (v View) Lists() []models.TaskList {
	out := make([]models.TaskList, len(v))
	for i, l := range v {
		out[i] = l.TaskList
	}
	return out
}

// ApplyCreated inserts t into its list at its sorted position and moves that
// list to the front. Other lists keep their relative order. A task whose list
// is not in the view leaves the view unchanged.
func ApplyCreated(v View, t models.Task) View {
	idx := slices.IndexFunc(v, func(l ListWithTasks) bool { return l.ID == t.TodoListID })
	if idx < 0 {
		return v.Clone()
	}

	target := ListWithTasks{TaskList: v[idx].TaskList, Tasks: make([]models.Task, 0, len(v[idx].Tasks)+1)}
	target.Tasks = append(target.Tasks, t)
	target.Tasks = append(target.Tasks, v[idx].Tasks...)
	models.SortTasks(target.Tasks)

	out := make(View, 0, len(v))
	out = append(out, target)
	for i, l := range v {
		if i == idx {
			continue
		}
		out = append(out, ListWithTasks{TaskList: l.TaskList, Tasks: slices.Clone(l.Tasks)})
	}
	return out
}

// ApplyUpdated replaces the task with t's id. The list is re-sorted only when
// the priority changed; otherwise the task keeps its position.
func ApplyUpdated(v View, t models.Task) View {
	out := v.Clone()
	for li := range out {
		i := slices.IndexFunc(out[li].Tasks, func(x models.Task) bool { return x.ID == t.ID })
		if i < 0 {
			continue
		}
		resort := out[li].Tasks[i].Priority != t.Priority
		out[li].Tasks[i] = t
		if resort {
			models.SortTasks(out[li].Tasks)
		}
		return out
	}
	return out
}

// ApplyDeleted removes the task from the given list.
func ApplyDeleted(v View, listID, taskID int64) View {
	out := v.Clone()
	for li := range out {
		if out[li].ID != listID {
			continue
		}
		out[li].Tasks = slices.DeleteFunc(out[li].Tasks, func(x models.Task) bool { return x.ID == taskID })
	}
	return out
}

// ListStats summarizes one list.
type ListStats struct {
	ListID    int64
	Total     int
	Completed int
}

// Stats counts lists, tasks and completed tasks per list.
type Stats struct {
	Lists  int
	Tasks  int
	ByList []ListStats
}

// Summarize computes Stats for v.
func Summarize(v View) Stats {
	s := Stats{Lists: len(v), ByList: make([]ListStats, 0, len(v))}
	for _, l := range v {
		ls := ListStats{ListID: l.ID, Total: len(l.Tasks)}
		for _, t := range l.Tasks {
			if t.Completed {
				ls.Completed++
			}
		}
		s.Tasks += ls.Total
		s.ByList = append(s.ByList, ls)
	}
	return s
}
