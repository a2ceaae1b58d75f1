package api

import (
	"net/http"

	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/notify"
	"github.com/npezzotti/meetup/internal/types"
)

func (s *MeetupApp) proposeMeeting(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	var req ProposeMeetingRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.meetings.Propose(r.Context(), actorId, meeting.ProposeParams{
		EventId:     req.EventId,
		TargetId:    req.TargetId,
		Message:     req.Message,
		AiSuggested: req.AiSuggested,
	})
	if err != nil {
		s.writeError(w, "propose meeting", err)
		return
	}

	s.writeJson(w, http.StatusCreated, types.FromMeetingRequest(created))
}

func (s *MeetupApp) listMeetings(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	eventId, ok := s.queryId(w, r, "event_id")
	if !ok {
		return
	}

	items, err := s.meetings.ListForParticipant(r.Context(), eventId, actorId)
	if err != nil {
		s.writeError(w, "list meetings", err)
		return
	}

	resp := make([]MeetingItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, fromItem(item))
	}
	s.writeJson(w, http.StatusOK, resp)
}

func (s *MeetupApp) getMeeting(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	meetingId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	item, err := s.meetings.Card(r.Context(), actorId, meetingId)
	if err != nil {
		s.writeError(w, "get meeting", err)
		return
	}

	s.writeJson(w, http.StatusOK, fromItem(item))
}

// transition returns the handler for one lifecycle action. The response is
// the updated card as seen by the actor.
func (s *MeetupApp) transition(action meeting.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorId, ok := s.actor(w, r)
		if !ok {
			return
		}

		meetingId, ok := s.pathId(w, r, "id")
		if !ok {
			return
		}

		var err error
		switch action {
		case meeting.ActionSchedule:
			var req ScheduleRequest
			if !s.decode(w, r, &req) {
				return
			}
			_, err = s.meetings.Schedule(r.Context(), actorId, meetingId, meeting.Proposal{
				Date:     req.MeetingDate,
				Time:     req.MeetingTime,
				Location: req.MeetingLocation,
				Message:  req.Message,
			})
		case meeting.ActionReschedule:
			var req RescheduleRequest
			if !s.decode(w, r, &req) {
				return
			}
			_, err = s.meetings.Reschedule(r.Context(), actorId, meetingId, req.Reason)
		default:
			_, err = s.meetings.Apply(r.Context(), actorId, meetingId, action, meeting.Proposal{})
		}
		if err != nil {
			s.writeError(w, string(action)+" meeting", err)
			return
		}

		item, err := s.meetings.Card(r.Context(), actorId, meetingId)
		if err != nil {
			s.writeError(w, "get meeting", err)
			return
		}
		s.writeJson(w, http.StatusOK, fromItem(item))
	}
}

func (s *MeetupApp) markSeen(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	meetingId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	if err := s.meetings.MarkSeen(r.Context(), actorId, meetingId); err != nil {
		s.writeError(w, "mark seen", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *MeetupApp) getMessages(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	meetingId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	messages, err := s.meetings.Messages(r.Context(), actorId, meetingId)
	if err != nil {
		s.writeError(w, "list messages", err)
		return
	}

	resp := make([]types.MeetingMessage, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, types.FromMeetingMessage(m))
	}
	s.writeJson(w, http.StatusOK, resp)
}

func (s *MeetupApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	meetingId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg, err := s.meetings.SendMessage(r.Context(), actorId, meetingId, req.Content)
	if err != nil {
		s.writeError(w, "send message", err)
		return
	}

	s.writeJson(w, http.StatusCreated, types.FromMeetingMessage(msg))
}

func (s *MeetupApp) markMessagesRead(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	meetingId, ok := s.pathId(w, r, "id")
	if !ok {
		return
	}

	n, err := s.meetings.MarkMessagesRead(r.Context(), actorId, meetingId)
	if err != nil {
		s.writeError(w, "mark messages read", err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]int{"marked": n})
}

func (s *MeetupApp) newAggregator(participantId, eventId int) *notify.Aggregator {
	return notify.NewAggregator(s.db, s.meetings, s.tr, s.locale, participantId, eventId)
}

func (s *MeetupApp) getNotifications(w http.ResponseWriter, r *http.Request) {
	actorId, ok := s.actor(w, r)
	if !ok {
		return
	}

	eventId, ok := s.queryId(w, r, "event_id")
	if !ok {
		return
	}

	counts, err := s.newAggregator(actorId, eventId).Refresh(r.Context())
	if err != nil {
		s.writeError(w, "refresh counters", err)
		return
	}

	s.writeJson(w, http.StatusOK, struct {
		types.Counts
		Total int `json:"total"`
	}{counts, counts.Total()})
}
