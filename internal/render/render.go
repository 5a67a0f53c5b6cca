// Package render formats the aggregated view for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"wimitasks/internal/board"
	"wimitasks/internal/item"
	"wimitasks/internal/models"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted   = ac("240", "243")
	colorDanger  = ac("160", "203")
	colorWarning = ac("166", "214")
	colorNotice  = ac("136", "221")
	colorInfo    = ac("27", "75")

	priorityColors = map[models.Priority]lipgloss.TerminalColor{
		models.PriorityHigh:   colorDanger,
		models.PriorityMedium: colorWarning,
		models.PriorityLow:    ac("28", "114"),
	}
)

// Muted is the style for secondary text.
func Muted() lipgloss.Style { return lipgloss.NewStyle().Foreground(colorMuted) }

// Danger is the style for errors.
func Danger() lipgloss.Style { return lipgloss.NewStyle().Foreground(colorDanger).Bold(true) }

// Options tunes Board.
type Options struct {
	// Today anchors due date labels.
	Today models.Date
	// Limit caps the tasks shown per list; zero shows all.
	Limit int
	// ShowIDs prefixes each task with its id.
	ShowIDs bool
}

// Header renders a list title in its color with the done/total count.
func Header(l board.ListWithTasks) string {
	st := lipgloss.NewStyle().Bold(true)
	if l.Color != "" {
		st = st.Foreground(lipgloss.Color(l.Color))
	}
	done := 0
	for _, t := range l.Tasks {
		if t.Completed {
			done++
		}
	}
	return st.Render("■ "+l.Title) + " " + Muted().Render(fmt.Sprintf("%d/%d", done, len(l.Tasks)))
}

// Checkbox renders the completion marker.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// PriorityBadge renders the priority in its color.
func PriorityBadge(p models.Priority) string {
	p = p.OrDefault()
	c, ok := priorityColors[p]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(p))
}

// Due renders the due date label, colored by urgency.
func Due(due, today models.Date) string {
	label, u := item.DueLabel(due, today)
	if label == "" {
		return ""
	}
	var c lipgloss.TerminalColor = colorMuted
	switch u {
	case item.DueOverdue:
		c = colorDanger
	case item.DueToday:
		c = colorWarning
	case item.DueTomorrow:
		c = colorNotice
	case item.DueSoon:
		c = colorInfo
	}
	return lipgloss.NewStyle().Foreground(c).Render(label)
}

// TaskLine renders one task on a single line.
func TaskLine(t models.Task, opts Options) string {
	title := t.Title
	if t.Completed {
		title = Muted().Strikethrough(true).Render(title)
	}
	parts := []string{Checkbox(t.Completed)}
	if opts.ShowIDs {
		parts = append(parts, Muted().Render(fmt.Sprintf("#%d", t.ID)))
	}
	parts = append(parts, title, PriorityBadge(t.Priority))
	if d := Due(t.DueDate, opts.Today); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " ")
}

// Board renders every list of v, one block per list.
func Board(v board.View, opts Options) string {
	if len(v) == 0 {
		return Muted().Render("No lists yet.") + "\n"
	}
	var b strings.Builder
	for i, l := range v {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Header(l))
		b.WriteString("\n")
		if len(l.Tasks) == 0 {
			b.WriteString("  " + Muted().Render("no tasks") + "\n")
			continue
		}
		shown := l.Tasks
		if opts.Limit > 0 && len(shown) > opts.Limit {
			shown = shown[:opts.Limit]
		}
		for _, t := range shown {
			b.WriteString("  " + TaskLine(t, opts) + "\n")
		}
		if rest := len(l.Tasks) - len(shown); rest > 0 {
			b.WriteString("  " + Muted().Render(fmt.Sprintf("+%d more tasks", rest)) + "\n")
		}
	}
	return b.String()
}

// Summary renders the totals line of the dashboard.
func Summary(s board.Stats) string {
	done := 0
	for _, l := range s.ByList {
		done += l.Completed
	}
	return Muted().Render(fmt.Sprintf("%d lists, %d tasks, %d completed", s.Lists, s.Tasks, done))
}

// Detail renders a single task with its description formatted as markdown.
func Detail(t models.Task, list string, opts Options, width int) (string, error) {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Title) + "\n")
	meta := []string{Checkbox(t.Completed), PriorityBadge(t.Priority)}
	if list != "" {
		meta = append(meta, Muted().Render("in "+list))
	}
	if d := Due(t.DueDate, opts.Today); d != "" {
		meta = append(meta, d)
	}
	b.WriteString(strings.Join(meta, " ") + "\n")
	if strings.TrimSpace(t.Description) == "" {
		return b.String(), nil
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	desc, err := r.Render(t.Description)
	if err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	b.WriteString(desc)
	return b.String(), nil
}
