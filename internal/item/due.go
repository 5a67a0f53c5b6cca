package item

import (
	"fmt"

	"wimitasks/internal/models"
)

// Urgency classifies a due date relative to today.
type Urgency int

const (
	DueNone Urgency = iota
	DueOverdue
	DueToday
	DueTomorrow
	DueSoon
	DueLater
)

// DueLabel describes a due date for display. Dates more than a week away are
// shown as is.
func DueLabel(due, today models.Date) (string, Urgency) {
	if due.IsZero() {
		return "", DueNone
	}
	days := today.DaysUntil(due)
	switch {
	case days < 0:
		n := -days
		if n == 1 {
			return "overdue by 1 day", DueOverdue
		}
		return fmt.Sprintf("overdue by %d days", n), DueOverdue
	case days == 0:
		return "due today", DueToday
	case days == 1:
		return "due tomorrow", DueTomorrow
	case days <= 7:
		return fmt.Sprintf("due in %d days", days), DueSoon
	}
	return due.String(), DueLater
}
