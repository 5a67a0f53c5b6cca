package models

import (
	"cmp"
	"slices"
)

// CompareTasks orders tasks by descending priority, then most recently created first.
func CompareTasks(a, b Task) int {
	if c := cmp.Compare(b.Priority.Weight(), a.Priority.Weight()); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// SortTasks sorts tasks in place by CompareTasks. Equal keys keep their order.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, CompareTasks)
}

// SortLists sorts lists in place, most recently created first.
func SortLists(lists []TaskList) {
	slices.SortStableFunc(lists, func(a, b TaskList) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
