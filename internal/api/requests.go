package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/survey"
	"github.com/npezzotti/meetup/internal/types"
)

type CreateEventRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=2000"`
	Date            string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Location        string `json:"location" validate:"max=200"`
	MeetingDuration int    `json:"meeting_duration" validate:"omitempty,min=5,max=240"`
	CreatorName     string `json:"creator_name" validate:"required,max=100"`
}

// CreateEventResponse is the only response that carries the organizer code.
type CreateEventResponse struct {
	types.Event
	OrganizerCode string `json:"organizer_code"`
}

type EventFormResponse struct {
	Event     types.Event      `json:"event"`
	Mode      survey.Mode      `json:"mode"`
	Questions []types.Question `json:"questions"`
}

type SaveQuestionsRequest struct {
	Questions []types.Question `json:"questions" validate:"required"`
}

type RegisterRequest struct {
	ExistingId int    `json:"existing_id" validate:"min=0"`
	Name       string `json:"name" validate:"required,max=100"`
	Role       string `json:"role" validate:"omitempty,oneof=builder creative founder"`
	Contact    string `json:"contact" validate:"max=200"`
	FindMe     string `json:"find_me" validate:"max=200"`
	// Answers is keyed by question id.
	Answers map[int]any `json:"answers"`
}

type RegisterResponse struct {
	Participant types.Participant `json:"participant"`
	Created     bool              `json:"created"`
}

type WelcomeBackRequest struct {
	RegistrationId int `json:"registration_id" validate:"required,gt=0"`
}

type EditResponsesRequest struct {
	Answers map[int]any `json:"answers" validate:"required"`
}

type ProfileResponse struct {
	Participant types.Participant `json:"participant"`
	Mode        survey.Mode       `json:"mode"`
	Answers     []types.Answer    `json:"answers"`
}

type ProposeMeetingRequest struct {
	EventId     int    `json:"event_id" validate:"min=0"`
	TargetId    int    `json:"target_id" validate:"required,gt=0"`
	Message     string `json:"message" validate:"max=1000"`
	AiSuggested bool   `json:"ai_suggested"`
}

type ScheduleRequest struct {
	MeetingDate     string `json:"meeting_date"`
	MeetingTime     string `json:"meeting_time"`
	MeetingLocation string `json:"meeting_location"`
	Message         string `json:"message" validate:"max=1000"`
}

type RescheduleRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type MeetingItem struct {
	Request types.MeetingRequest `json:"request"`
	View    meeting.View         `json:"view"`
}

type SendMessageRequest struct {
	Content string `json:"message" validate:"max=2000"`
}

type AcceptSuggestionRequest struct {
	Suggestion matching.Suggestion `json:"suggestion"`
}

func fromItem(item meeting.Item) MeetingItem {
	return MeetingItem{Request: types.FromMeetingRequest(item.Request), View: item.View}
}

func fromAnswers(answers []survey.RenderedAnswer) []types.Answer {
	out := make([]types.Answer, 0, len(answers))
	for _, a := range answers {
		out = append(out, types.Answer{
			QuestionId: a.QuestionId,
			Question:   a.Question,
			FieldType:  string(a.FieldType),
			Value:      a.Value,
			Display:    a.Display,
		})
	}
	return out
}

func (s *MeetupApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// writeError logs unexpected failures and writes the mapped error.
func (s *MeetupApp) writeError(w http.ResponseWriter, op string, err error) {
	errResp := errorFor(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Println(op+":", err)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *MeetupApp) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return false
	}

	if err := s.validate.Struct(v); err != nil {
		errResp := NewValidationError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return false
	}
	return true
}

func (s *MeetupApp) pathId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}
	return id, true
}

// queryId parses an optional non-negative integer query parameter.
func (s *MeetupApp) queryId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		errResp := NewValidationError(errors.New("invalid " + name))
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}
	return id, true
}

func (s *MeetupApp) actor(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := ParticipantId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return 0, false
	}
	return id, true
}
