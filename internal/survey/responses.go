package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/npezzotti/meetup/internal/database"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// EncodeResponse converts raw decoded JSON input into the stored value for
// the field type. ok is false when the input is empty and nothing should be
// stored.
func EncodeResponse(ft FieldType, raw any) (value json.RawMessage, ok bool, err error) {
	if raw == nil {
		return nil, false, nil
	}

	var v any
	switch ft {
	case ShortText, LongText, SingleChoice, Dropdown:
		s, isStr := raw.(string)
		if !isStr {
			return nil, false, fmt.Errorf("%w: expected text", ErrInvalidAnswer)
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, false, nil
		}
		v = s
	case MultiChoice:
		list, err := toStrings(raw)
		if err != nil {
			return nil, false, err
		}
		if len(list) == 0 {
			return nil, false, nil
		}
		v = list
	case Number:
		s, err := numberString(raw)
		if err != nil || s == "" {
			return nil, false, err
		}
		v = s
	case Rating:
		r, set, err := rating(raw)
		if err != nil || !set {
			return nil, false, err
		}
		v = r
	default:
		return nil, false, fmt.Errorf("%w: unknown field type %q", ErrInvalidAnswer, ft)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func toStrings(raw any) ([]string, error) {
	var items []any
	switch t := raw.(type) {
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case []any:
		items = t
	default:
		return nil, fmt.Errorf("%w: expected a list of options", ErrInvalidAnswer)
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list of options", ErrInvalidAnswer)
		}
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(list, s) {
			list = append(list, s)
		}
	}
	return list, nil
}

func numberString(raw any) (string, error) {
	switch t := raw.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case json.Number:
		return numberString(string(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, s)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: expected a number", ErrInvalidAnswer)
}

func rating(raw any) (int, bool, error) {
	s, err := numberString(raw)
	if err != nil || s == "" {
		return 0, false, err
	}

	r, err := strconv.Atoi(s)
	if err != nil || r < 1 || r > 5 {
		return 0, false, fmt.Errorf("%w: rating must be a whole number from 1 to 5", ErrInvalidAnswer)
	}
	return r, true, nil
}

// DecodeValue returns the stored value as a string, a []string, a float64
// (number) or an int (rating).
func DecodeValue(ft FieldType, value json.RawMessage) (any, error) {
	switch ft {
	case MultiChoice:
		var list []string
		err := json.Unmarshal(value, &list)
		return list, err
	case Number:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, err
		}
		return strconv.ParseFloat(s, 64)
	case Rating:
		var r int
		err := json.Unmarshal(value, &r)
		return r, err
	default:
		var s string
		err := json.Unmarshal(value, &s)
		return s, err
	}
}

// RenderValue formats a stored answer for display.
func RenderValue(ft FieldType, value json.RawMessage) string {
	if len(value) == 0 || string(value) == "null" {
		return Placeholder
	}

	switch ft {
	case MultiChoice:
		var list []string
		if err := json.Unmarshal(value, &list); err != nil || len(list) == 0 {
			return Placeholder
		}
		return strings.Join(list, ", ")
	case Rating:
		var r int
		if err := json.Unmarshal(value, &r); err != nil {
			return Placeholder
		}
		return strconv.Itoa(r)
	default:
		var s string
		if err := json.Unmarshal(value, &s); err != nil || s == "" {
			return Placeholder
		}
		return s
	}
}

// ValidateAnswers checks raw answers keyed by question id against the
// question set and encodes them. Unanswered optional questions produce no
// response.
func ValidateAnswers(questions []database.Question, answers map[int]any) ([]database.QuestionResponse, error) {
	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.Id] = true
	}
	for id := range answers {
		if !known[id] {
			return nil, fmt.Errorf("%w: unknown question %d", ErrInvalidAnswer, id)
		}
	}

	responses := make([]database.QuestionResponse, 0, len(answers))
	for i, q := range questions {
		ft := FieldType(q.FieldType)
		value, ok, err := EncodeResponse(ft, answers[q.Id])
		if err != nil {
			return nil, &ValidationError{Index: i, Question: q.Text, Reason: err.Error()}
		}
		if !ok {
			if q.Required {
				return nil, &ValidationError{Index: i, Question: q.Text, Reason: "an answer is required"}
			}
			continue
		}

		if ft.IsChoice() {
			if err := checkOptions(ft, q.Options, value); err != nil {
				return nil, &ValidationError{Index: i, Question: q.Text, Reason: err.Error()}
			}
		}

		responses = append(responses, database.QuestionResponse{QuestionId: q.Id, Value: value})
	}

	return responses, nil
}

func checkOptions(ft FieldType, options []string, value json.RawMessage) error {
	decoded, err := DecodeValue(ft, value)
	if err != nil {
		return err
	}

	var picked []string
	switch t := decoded.(type) {
	case string:
		picked = []string{t}
	case []string:
		picked = t
	}

	for _, p := range picked {
		if !slices.Contains(options, p) {
			return fmt.Errorf("%q is not one of the options", p)
		}
	}
	return nil
}
