package database

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStatusChanged is returned when a guarded update finds the row in a
	// different status than the caller expected.
	ErrStatusChanged = errors.New("meeting request status changed")
	// ErrDuplicateActiveRequest is returned when a pair of participants
	// already has an active meeting request in the event.
	ErrDuplicateActiveRequest = errors.New("active meeting request already exists")
	ErrDuplicateShareCode     = errors.New("share code already in use")
)

type MeetupRepository interface {
	Ping(ctx context.Context) error
	Close() error

	CreateEvent(ctx context.Context, params CreateEventParams) (Event, error)
	GetEvent(ctx context.Context, id int) (Event, error)
	GetEventByShareCode(ctx context.Context, code string) (Event, error)
	ListEventsByCreator(ctx context.Context, creatorName string) ([]Event, error)

	// CreateRegistration inserts the registration and its responses in one
	// transaction.
	CreateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error)
	// UpdateRegistration updates the registration in place. A non-nil
	// responses slice replaces the stored responses in the same transaction.
	UpdateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error)
	GetRegistration(ctx context.Context, id int) (Registration, error)
	ListRegistrations(ctx context.Context, eventId int) ([]Registration, error)

	ListQuestions(ctx context.Context, eventId int) ([]Question, error)
	ReplaceQuestions(ctx context.Context, eventId int, questions []Question) ([]Question, error)
	ListResponses(ctx context.Context, registrationId int) ([]QuestionResponse, error)
	ReplaceResponses(ctx context.Context, registrationId int, responses []QuestionResponse) error

	// CreateMeetingRequest inserts a request, failing with
	// ErrDuplicateActiveRequest when the pair already has a request in one of
	// activeStatuses.
	CreateMeetingRequest(ctx context.Context, req MeetingRequest, activeStatuses []string) (MeetingRequest, error)
	GetMeetingRequest(ctx context.Context, id int) (MeetingRequest, error)
	// UpdateMeetingRequest writes the lifecycle fields of req only if the
	// stored status still equals expectedStatus.
	UpdateMeetingRequest(ctx context.Context, req MeetingRequest, expectedStatus string) (MeetingRequest, error)
	ListMeetingRequests(ctx context.Context, eventId, participantId int) ([]MeetingRequest, error)
	FindActiveMeetingRequest(ctx context.Context, eventId, a, b int, activeStatuses []string) (MeetingRequest, error)
	MarkRequestSeen(ctx context.Context, id int) error
	CountUnseenPending(ctx context.Context, eventId, participantId int) (int, error)

	CreateMeetingMessage(ctx context.Context, msg MeetingMessage) (MeetingMessage, error)
	ListMeetingMessages(ctx context.Context, meetingId int) ([]MeetingMessage, error)
	MarkMessagesRead(ctx context.Context, meetingId, readerId int, at time.Time) (int, error)
	CountUnreadMessages(ctx context.Context, eventId, participantId int, statuses []string) (int, error)
}
