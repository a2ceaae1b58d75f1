package api

import (
	"net/http"
	"strconv"

	"github.com/npezzotti/meetup/internal/types"
)

func (s *MeetupApp) getSuggestions(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	focalId, ok := s.queryId(w, r, "focal")
	if !ok {
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	res, err := s.matcher.Suggest(r.Context(), eventId, focalId, refresh)
	if err != nil {
		s.writeError(w, "suggest matches", err)
		return
	}

	s.writeJson(w, http.StatusOK, res)
}

func (s *MeetupApp) acceptSuggestion(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	var req AcceptSuggestionRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.matcher.Accept(r.Context(), actorId, eventId, req.Suggestion)
	if err != nil {
		s.writeError(w, "accept suggestion", err)
		return
	}

	s.writeJson(w, http.StatusCreated, types.FromMeetingRequest(created))
}
