package types

import "github.com/npezzotti/meetup/internal/database"

func FromEvent(e database.Event) Event {
	ev := Event{
		Id:              e.Id,
		Name:            e.Name,
		Description:     e.Description,
		Location:        e.Location,
		ShareCode:       e.ShareCode,
		MeetingDuration: e.MeetingDuration,
		CreatorName:     e.CreatorName,
		CreatedAt:       e.CreatedAt,
	}
	if !e.Date.IsZero() {
		d := e.Date
		ev.Date = &d
	}
	return ev
}

func FromRegistration(r database.Registration) Participant {
	interests := r.Interests
	if interests == nil {
		interests = []string{}
	}
	return Participant{
		Id:        r.Id,
		EventId:   r.EventId,
		Name:      r.Name,
		Role:      r.Role,
		Interests: interests,
		Contact:   r.Contact,
		FindMe:    r.FindMe,
		Bio:       r.Bio,
		MatchId:   r.MatchId,
		CreatedAt: r.CreatedAt,
	}
}

func FromQuestion(q database.Question) Question {
	return Question{
		Id:          q.Id,
		EventId:     q.EventId,
		Text:        q.Text,
		FieldType:   q.FieldType,
		Options:     q.Options,
		Required:    q.Required,
		SortOrder:   q.SortOrder,
		Placeholder: q.Placeholder,
	}
}

func FromQuestions(qs []database.Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, FromQuestion(q))
	}
	return out
}

// ToQuestion converts an organizer-submitted question. Ids and event ids
// are assigned by storage.
func ToQuestion(q Question) database.Question {
	return database.Question{
		Text:        q.Text,
		FieldType:   q.FieldType,
		Options:     q.Options,
		Required:    q.Required,
		SortOrder:   q.SortOrder,
		Placeholder: q.Placeholder,
	}
}

func FromMeetingRequest(m database.MeetingRequest) MeetingRequest {
	return MeetingRequest{
		Id:                m.Id,
		EventId:           m.EventId,
		RequesterId:       m.RequesterId,
		TargetId:          m.TargetId,
		Status:            m.Status,
		Message:           m.Message,
		AiSuggested:       m.AiSuggested,
		SuggestedTime:     m.SuggestedTime,
		SeenByTarget:      m.SeenByTarget,
		MeetingDate:       m.MeetingDate,
		MeetingTime:       m.MeetingTime,
		MeetingLocation:   m.MeetingLocation,
		RescheduleMessage: m.RescheduleMessage,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func FromMeetingMessage(m database.MeetingMessage) MeetingMessage {
	return MeetingMessage{
		Id:               m.Id,
		MeetingRequestId: m.MeetingRequestId,
		SenderId:         m.SenderId,
		Content:          m.Content,
		CreatedAt:        m.CreatedAt,
		ReadAt:           m.ReadAt,
	}
}
