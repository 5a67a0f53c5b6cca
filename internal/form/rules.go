package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"wimitasks/internal/models"
)

// Field names used as keys of Errors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldList        = "todoListId"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
)

// Limits on user input.
const (
	TitleMin       = 3
	TitleMax       = 100
	DescriptionMax = 500
)

// Messages shown next to invalid fields.
const (
	MsgTitleRequired  = "title is required"
	MsgTitleTooShort  = "minimum 3 characters"
	MsgTitleTooLong   = "maximum 100 characters"
	MsgDescTooLong    = "maximum 500 characters"
	MsgListRequired   = "select a list"
	MsgListUnknown    = "unknown list"
	MsgPriority       = "invalid priority"
	MsgDueDateInvalid = "invalid date"
	MsgDueDatePast    = "due date cannot be in the past"
)

// Errors maps a field name to its message. Empty means valid.
type Errors map[string]string

// Valid reports whether no rule is violated.
func (e Errors) Valid() bool { return len(e) == 0 }

// Fields is the raw text a user typed into a task form.
type Fields struct {
	Title       string
	Description string
	ListID      string
	Priority    string
	DueDate     string
}

// textRules holds the trimmed values checked by the validator.
type textRules struct {
	Title       string `validate:"required,min=3,max=100"`
	Description string `validate:"max=500"`
	Priority    string `validate:"omitempty,oneof=low medium high"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkText applies the length rules on trimmed title and description.
func checkText(f Fields, errs Errors) {
	trimmed := textRules{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Priority:    strings.TrimSpace(f.Priority),
	}
	err := validate.Struct(trimmed)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Title":
			switch fe.Tag() {
			case "required":
				errs[FieldTitle] = MsgTitleRequired
			case "min":
				errs[FieldTitle] = MsgTitleTooShort
			case "max":
				errs[FieldTitle] = MsgTitleTooLong
			}
		case "Description":
			errs[FieldDescription] = MsgDescTooLong
		case "Priority":
			errs[FieldPriority] = MsgPriority
		}
	}
}

// checkDueDate rejects unparseable dates and days before today.
func checkDueDate(raw string, today models.Date, errs Errors) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	due, err := models.ParseDate(raw)
	if err != nil {
		errs[FieldDueDate] = MsgDueDateInvalid
		return
	}
	if due.Before(today) {
		errs[FieldDueDate] = MsgDueDatePast
	}
}

// Validate checks every creation rule. lists is the set of lists the task may
// go into; today is the current calendar day.
func Validate(f Fields, lists []models.TaskList, today models.Date) Errors {
	errs := Errors{}
	checkText(f, errs)
	checkDueDate(f.DueDate, today, errs)

	raw := strings.TrimSpace(f.ListID)
	if raw == "" {
		errs[FieldList] = MsgListRequired
		return errs
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !containsList(lists, id) {
		errs[FieldList] = MsgListUnknown
	}
	return errs
}

// ValidateEdit checks the rules that apply when editing an existing task.
func ValidateEdit(f Fields, today models.Date) Errors {
	errs := Errors{}
	checkText(f, errs)
	checkDueDate(f.DueDate, today, errs)
	return errs
}

func containsList(lists []models.TaskList, id int64) bool {
	for _, l := range lists {
		if l.ID == id {
			return true
		}
	}
	return false
}

// Today returns the calendar day of now in the local time zone.
func Today(now time.Time) models.Date {
	return models.DateOf(now.Local())
}
