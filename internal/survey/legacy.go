package survey

import (
	"encoding/json"

	"github.com/npezzotti/meetup/internal/database"
)

type Mode string

const (
	// ModeCustom renders the organizer's questions.
	ModeCustom Mode = "custom"
	// ModeLegacy renders the fixed form and stores answers on the
	// registration itself.
	ModeLegacy Mode = "legacy"
)

// ModeFor picks the form mode for an event's question set.
func ModeFor(questions []database.Question) Mode {
	if len(questions) == 0 {
		return ModeLegacy
	}
	return ModeCustom
}

type LegacyCategory struct {
	Key     string
	Text    string
	Options []string
}

// Legacy question ids are negative so they never collide with stored ones.
const (
	LegacyVibeId = -(iota + 1)
	LegacySuperpowerId
	LegacyCopilotId
	LegacyOffscreenId
	LegacyBioId
)

var LegacyCategories = []LegacyCategory{
	{
		Key:     "vibe",
		Text:    "What's your vibe?",
		Options: []string{"Deep technical chats", "Big-picture brainstorming", "Casual hangout", "Looking to collaborate"},
	},
	{
		Key:     "superpower",
		Text:    "What's your superpower?",
		Options: []string{"Shipping fast", "Design and UX", "Storytelling", "Systems thinking", "Community building"},
	},
	{
		Key:     "copilot",
		Text:    "Which AI copilot do you reach for first?",
		Options: []string{"Chat assistant", "Code completion", "Image generation", "I build my own"},
	},
	{
		Key:     "offscreen",
		Text:    "What do you do offscreen?",
		Options: []string{"Outdoors", "Music", "Sports", "Reading", "Cooking"},
	},
}

var legacyIds = []int{LegacyVibeId, LegacySuperpowerId, LegacyCopilotId, LegacyOffscreenId}

// LegacyQuestions returns the fixed form used when an event has no custom
// questions: one required single choice per category and an optional bio.
func LegacyQuestions() []database.Question {
	questions := make([]database.Question, 0, len(LegacyCategories)+1)
	for i, c := range LegacyCategories {
		questions = append(questions, database.Question{
			Id:        legacyIds[i],
			Text:      c.Text,
			FieldType: string(SingleChoice),
			Options:   append([]string(nil), c.Options...),
			Required:  true,
			SortOrder: i,
		})
	}

	questions = append(questions, database.Question{
		Id:          LegacyBioId,
		Text:        "Tell people a bit about yourself",
		FieldType:   string(LongText),
		SortOrder:   len(LegacyCategories),
		Placeholder: "What are you working on?",
	})
	return questions
}

// ApplyLegacyAnswers validates answers to the legacy form and writes them to
// the registration: one interest per category, in category order, and the
// bio.
func ApplyLegacyAnswers(reg *database.Registration, answers map[int]any) error {
	responses, err := ValidateAnswers(LegacyQuestions(), answers)
	if err != nil {
		return err
	}

	byId := make(map[int]json.RawMessage, len(responses))
	for _, r := range responses {
		byId[r.QuestionId] = r.Value
	}

	interests := make([]string, 0, len(legacyIds))
	for _, id := range legacyIds {
		var s string
		if err := json.Unmarshal(byId[id], &s); err != nil {
			return err
		}
		interests = append(interests, s)
	}
	reg.Interests = interests

	reg.Bio = ""
	if v, ok := byId[LegacyBioId]; ok {
		if err := json.Unmarshal(v, &reg.Bio); err != nil {
			return err
		}
	}
	return nil
}

// LegacyAnswers maps a registration stored in legacy mode back onto
// answers keyed by legacy question id.
func LegacyAnswers(reg database.Registration) map[int]any {
	answers := make(map[int]any, len(legacyIds)+1)
	for i, id := range legacyIds {
		if i < len(reg.Interests) && reg.Interests[i] != "" {
			answers[id] = reg.Interests[i]
		}
	}
	if reg.Bio != "" {
		answers[LegacyBioId] = reg.Bio
	}
	return answers
}
