package database

import (
	"encoding/json"
	"time"
)

// Event is an organizer-created gathering. Participants join it through
// the public share code.
type Event struct {
	Id                int
	Name              string
	Description       string
	Date              time.Time
	Location          string
	ShareCode         string
	OrganizerCodeHash string
	MeetingDuration   int
	CreatorName       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Registration is a participant of an event. EventId is zero for the
// single-tenant legacy flow.
type Registration struct {
	Id        int
	EventId   int
	Name      string
	Role      string
	Interests []string
	Contact   string
	FindMe    string
	Bio       string
	MatchId   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Question struct {
	Id          int
	EventId     int
	Text        string
	FieldType   string
	Options     []string
	Required    bool
	SortOrder   int
	Placeholder string
	CreatedAt   time.Time
}

// QuestionResponse holds one answer. Value is the JSON encoding of a
// string, a list of strings or a number depending on the field type.
type QuestionResponse struct {
	Id             int
	RegistrationId int
	QuestionId     int
	Value          json.RawMessage
	CreatedAt      time.Time
}

type MeetingRequest struct {
	Id                int
	EventId           int
	RequesterId       int
	TargetId          int
	Status            string
	Message           string
	AiSuggested       bool
	SuggestedTime     string
	SeenByTarget      bool
	MeetingDate       string
	MeetingTime       string
	MeetingLocation   string
	RescheduleMessage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Involves reports whether the participant is the requester or the target.
func (m MeetingRequest) Involves(participantId int) bool {
	return m.RequesterId == participantId || m.TargetId == participantId
}

type MeetingMessage struct {
	Id               int
	MeetingRequestId int
	SenderId         int
	Content          string
	CreatedAt        time.Time
	ReadAt           *time.Time
}

type CreateEventParams struct {
	Name              string
	Description       string
	Date              time.Time
	Location          string
	ShareCode         string
	OrganizerCodeHash string
	MeetingDuration   int
	CreatorName       string
}
