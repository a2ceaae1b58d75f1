package survey

import (
	"encoding/json"

	"github.com/npezzotti/meetup/internal/database"
)

type RenderedAnswer struct {
	QuestionId int
	Question   string
	FieldType  FieldType
	Value      json.RawMessage
	Display    string
}

// Render pairs every question with its stored response. Questions without a
// response render as the placeholder.
func Render(questions []database.Question, responses []database.QuestionResponse) []RenderedAnswer {
	byQuestion := make(map[int]json.RawMessage, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionId] = r.Value
	}

	rendered := make([]RenderedAnswer, 0, len(questions))
	for _, q := range questions {
		ft := FieldType(q.FieldType)
		value := byQuestion[q.Id]
		rendered = append(rendered, RenderedAnswer{
			QuestionId: q.Id,
			Question:   q.Text,
			FieldType:  ft,
			Value:      value,
			Display:    RenderValue(ft, value),
		})
	}
	return rendered
}

// RenderLegacy renders a registration stored in legacy mode.
func RenderLegacy(reg database.Registration) []RenderedAnswer {
	answers := LegacyAnswers(reg)
	questions := LegacyQuestions()

	responses := make([]database.QuestionResponse, 0, len(answers))
	for _, q := range questions {
		raw, ok := answers[q.Id]
		if !ok {
			continue
		}
		if v, ok, err := EncodeResponse(FieldType(q.FieldType), raw); err == nil && ok {
			responses = append(responses, database.QuestionResponse{QuestionId: q.Id, Value: v})
		}
	}
	return Render(questions, responses)
}
