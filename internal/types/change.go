package types

import "slices"

const (
	TableRegistrations   = "registrations"
	TableEventQuestions  = "event_questions"
	TableMeetingRequests = "meeting_requests"
	TableMeetingMessages = "meeting_messages"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeAll    = "*"
)

// Change describes a row written by a service. Only Table, Type and Row are
// sent to subscribers; the other fields drive filtering.
type Change struct {
	Table string `json:"table"`
	Type  string `json:"type"`
	Row   any    `json:"row"`

	EventId        int   `json:"-"`
	MeetingId      int   `json:"-"`
	ParticipantIds []int `json:"-"`
}

// Concerns reports whether the participant is one of the change's parties.
func (c Change) Concerns(participantId int) bool {
	return slices.Contains(c.ParticipantIds, participantId)
}

// Publisher receives changes after they are committed.
type Publisher interface {
	Publish(change Change)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Change)

func (f PublisherFunc) Publish(change Change) { f(change) }

// Discard drops every change.
var Discard Publisher = PublisherFunc(func(Change) {})
