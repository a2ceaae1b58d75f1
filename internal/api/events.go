package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/survey"
	"github.com/npezzotti/meetup/internal/types"
)

const shareCodeAttempts = 3

func (s *MeetupApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Println("health check:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *MeetupApp) createEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !s.decode(w, r, &req) {
		return
	}

	params := database.CreateEventParams{
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		MeetingDuration: req.MeetingDuration,
		CreatorName:     strings.TrimSpace(req.CreatorName),
	}
	if req.Date != "" {
		// validated by the datetime tag
		params.Date, _ = time.Parse(time.DateOnly, req.Date)
	}

	code := s.generateOrganizerCode()
	hash, err := hashOrganizerCode(code)
	if err != nil {
		s.writeError(w, "hash organizer code", err)
		return
	}
	params.OrganizerCodeHash = hash

	var event database.Event
	for attempt := 0; attempt < shareCodeAttempts; attempt++ {
		params.ShareCode, err = s.generateShareCode()
		if err != nil {
			s.log.Print("generateShareCode:", err)
			break
		}

		event, err = s.db.CreateEvent(r.Context(), params)
		if !errors.Is(err, database.ErrDuplicateShareCode) {
			break
		}
	}
	if err != nil {
		s.writeError(w, "create event", err)
		return
	}

	s.writeJson(w, http.StatusCreated, CreateEventResponse{
		Event:         types.FromEvent(event),
		OrganizerCode: code,
	})
}

func (s *MeetupApp) listEvents(w http.ResponseWriter, r *http.Request) {
	creator := strings.TrimSpace(r.URL.Query().Get("creator"))
	if creator == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	events, err := s.db.ListEventsByCreator(r.Context(), creator)
	if err != nil {
		s.writeError(w, "list events", err)
		return
	}

	resp := make([]types.Event, 0, len(events))
	for _, e := range events {
		resp = append(resp, types.FromEvent(e))
	}
	s.writeJson(w, http.StatusOK, resp)
}

func (s *MeetupApp) getEventByShareCode(w http.ResponseWriter, r *http.Request) {
	event, err := s.db.GetEventByShareCode(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeError(w, "get event by share code", err)
		return
	}

	s.writeForm(w, r, event)
}

func (s *MeetupApp) getEvent(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	event, err := s.db.GetEvent(r.Context(), eventId)
	if err != nil {
		s.writeError(w, "get event", err)
		return
	}

	s.writeJson(w, http.StatusOK, types.FromEvent(event))
}

func (s *MeetupApp) getQuestions(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	event, err := s.db.GetEvent(r.Context(), eventId)
	if err != nil {
		s.writeError(w, "get event", err)
		return
	}

	s.writeForm(w, r, event)
}

// getLegacyForm serves the fixed form of the single-tenant flow.
func (s *MeetupApp) getLegacyForm(w http.ResponseWriter, r *http.Request) {
	s.writeForm(w, r, database.Event{})
}

// writeForm writes the event with the questions a registrant answers.
func (s *MeetupApp) writeForm(w http.ResponseWriter, r *http.Request, event database.Event) {
	questions, mode, err := s.surveys.Form(r.Context(), event.Id)
	if err != nil {
		s.writeError(w, "load form", err)
		return
	}

	s.writeJson(w, http.StatusOK, EventFormResponse{
		Event:     types.FromEvent(event),
		Mode:      mode,
		Questions: types.FromQuestions(questions),
	})
}

func (s *MeetupApp) saveQuestions(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	var req SaveQuestionsRequest
	if !s.decode(w, r, &req) {
		return
	}

	questions := make([]database.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, types.ToQuestion(q))
	}

	saved, err := s.surveys.SaveQuestions(r.Context(), eventId, questions)
	if err != nil {
		s.writeError(w, "save questions", err)
		return
	}

	s.writeJson(w, http.StatusOK, types.FromQuestions(saved))
}

// generateQuestions returns an AI drafted form. Nothing is saved; the
// organizer reviews the draft and saves it with saveQuestions.
func (s *MeetupApp) generateQuestions(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	event, err := s.db.GetEvent(r.Context(), eventId)
	if err != nil {
		s.writeError(w, "get event", err)
		return
	}

	draft, err := s.gateway.GenerateForm(r.Context(), event.Name, event.Description)
	if err != nil {
		s.writeError(w, "generate form", err)
		return
	}

	if prepared, err := survey.Prepare(eventId, draft); err == nil {
		draft = prepared
	} else {
		s.log.Printf("generated form for event %d needs review: %v", eventId, err)
	}

	s.writeJson(w, http.StatusOK, types.FromQuestions(draft))
}
