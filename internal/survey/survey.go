// Package survey defines the registration form model: organizer-authored
// question sets, typed answers and the fixed legacy form used by events
// without custom questions.
package survey

import (
	"fmt"
	"strings"

	"github.com/npezzotti/meetup/internal/database"
)

type FieldType string

const (
	ShortText    FieldType = "short_text"
	LongText     FieldType = "long_text"
	SingleChoice FieldType = "single_choice"
	MultiChoice  FieldType = "multi_choice"
	Dropdown     FieldType = "dropdown"
	Number       FieldType = "number"
	Rating       FieldType = "rating"
)

// MinChoiceOptions is the smallest option list a choice question may carry.
const MinChoiceOptions = 2

// Placeholder is shown in place of an unanswered question.
const Placeholder = "—"

func (f FieldType) Valid() bool {
	switch f {
	case ShortText, LongText, SingleChoice, MultiChoice, Dropdown, Number, Rating:
		return true
	}
	return false
}

// IsChoice reports whether answers must be picked from the option list.
func (f FieldType) IsChoice() bool {
	return f == SingleChoice || f == MultiChoice || f == Dropdown
}

type ValidationError struct {
	Index    int
	Question string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Question == "" {
		return fmt.Sprintf("question %d: %s", e.Index+1, e.Reason)
	}
	return fmt.Sprintf("question %d (%q): %s", e.Index+1, e.Question, e.Reason)
}

// ValidateQuestionSet checks every question of an organizer form and
// returns the first offending one.
func ValidateQuestionSet(questions []database.Question) error {
	for i, q := range questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return &ValidationError{Index: i, Reason: "question text is required"}
		}

		ft := FieldType(q.FieldType)
		if !ft.Valid() {
			return &ValidationError{Index: i, Question: text, Reason: fmt.Sprintf("unknown field type %q", q.FieldType)}
		}

		if ft.IsChoice() && countOptions(q.Options) < MinChoiceOptions {
			return &ValidationError{Index: i, Question: text, Reason: fmt.Sprintf("needs at least %d options", MinChoiceOptions)}
		}
	}

	return nil
}

func countOptions(options []string) int {
	n := 0
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			n++
		}
	}
	return n
}

// NormalizeOrder renumbers sort order densely from zero following the
// current slice order.
func NormalizeOrder(questions []database.Question) {
	for i := range questions {
		questions[i].SortOrder = i
	}
}

// Prepare cleans an organizer form for saving and validates it. The
// returned slice is a copy with trimmed text, no blank options, no options
// on non-choice questions and a dense sort order.
func Prepare(eventId int, questions []database.Question) ([]database.Question, error) {
	prepared := make([]database.Question, len(questions))
	for i, q := range questions {
		q.Id = 0
		q.EventId = eventId
		q.Text = strings.TrimSpace(q.Text)
		q.Placeholder = strings.TrimSpace(q.Placeholder)

		if FieldType(q.FieldType).IsChoice() {
			opts := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				if o = strings.TrimSpace(o); o != "" {
					opts = append(opts, o)
				}
			}
			q.Options = opts
		} else {
			q.Options = []string{}
		}

		prepared[i] = q
	}

	if err := ValidateQuestionSet(prepared); err != nil {
		return nil, err
	}

	NormalizeOrder(prepared)
	return prepared, nil
}
