package api

import (
	"net/http"

	"github.com/npezzotti/meetup/internal/registration"
	"github.com/npezzotti/meetup/internal/types"
)

func (s *MeetupApp) listParticipants(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	regs, err := s.registrations.Participants(r.Context(), eventId)
	if err != nil {
		s.writeError(w, "list participants", err)
		return
	}

	resp := make([]types.Participant, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, types.FromRegistration(reg))
	}
	s.writeJson(w, http.StatusOK, resp)
}

func (s *MeetupApp) lookupParticipants(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	candidates := s.registrations.Resolver(r.Context(), eventId).Suggest(r.URL.Query().Get("q"))
	if candidates == nil {
		candidates = []registration.Candidate{}
	}
	s.writeJson(w, http.StatusOK, candidates)
}

func (s *MeetupApp) register(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}
	s.registerFor(w, r, eventId)
}

// registerLegacy registers into the single-tenant flow, which has no event.
func (s *MeetupApp) registerLegacy(w http.ResponseWriter, r *http.Request) {
	s.registerFor(w, r, 0)
}

func (s *MeetupApp) registerFor(w http.ResponseWriter, r *http.Request, eventId int) {
	var req RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}

	reg, created, err := s.registrations.Register(r.Context(), registration.Submission{
		EventId:    eventId,
		ExistingId: req.ExistingId,
		Name:       req.Name,
		Role:       req.Role,
		Contact:    req.Contact,
		FindMe:     req.FindMe,
		Answers:    req.Answers,
	})
	if err != nil {
		s.writeError(w, "register", err)
		return
	}

	if err := s.setActorCookie(w, reg.Id, eventId); err != nil {
		s.writeError(w, "set actor cookie", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJson(w, status, RegisterResponse{Participant: types.FromRegistration(reg), Created: created})
}

func (s *MeetupApp) welcomeBack(w http.ResponseWriter, r *http.Request) {
	eventId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}
	s.welcomeBackFor(w, r, eventId)
}

func (s *MeetupApp) welcomeBackLegacy(w http.ResponseWriter, r *http.Request) {
	s.welcomeBackFor(w, r, 0)
}

func (s *MeetupApp) welcomeBackFor(w http.ResponseWriter, r *http.Request, eventId int) {
	var req WelcomeBackRequest
	if !s.decode(w, r, &req) {
		return
	}

	reg, err := s.registrations.WelcomeBack(r.Context(), eventId, req.RegistrationId)
	if err != nil {
		s.writeError(w, "welcome back", err)
		return
	}

	if err := s.setActorCookie(w, reg.Id, eventId); err != nil {
		s.writeError(w, "set actor cookie", err)
		return
	}

	s.writeJson(w, http.StatusOK, types.FromRegistration(reg))
}

func (s *MeetupApp) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	profile, err := s.registrations.Profile(r.Context(), id)
	if err != nil {
		s.writeError(w, "get profile", err)
		return
	}

	s.writeJson(w, http.StatusOK, ProfileResponse{
		Participant: types.FromRegistration(profile.Registration),
		Mode:        profile.Mode,
		Answers:     fromAnswers(profile.Answers),
	})
}

func (s *MeetupApp) editResponses(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	id, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	var req EditResponsesRequest
	if !s.decode(w, r, &req) {
		return
	}

	reg, err := s.registrations.EditAnswers(r.Context(), actorId, id, req.Answers)
	if err != nil {
		s.writeError(w, "edit responses", err)
		return
	}

	s.writeJson(w, http.StatusOK, types.FromRegistration(reg))
}
