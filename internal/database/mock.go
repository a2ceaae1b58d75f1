package database

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockMeetupRepository struct {
	mock.Mock
}

var _ MeetupRepository = (*MockMeetupRepository)(nil)

func (m *MockMeetupRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockMeetupRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockMeetupRepository) CreateEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockMeetupRepository) GetEvent(ctx context.Context, id int) (Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockMeetupRepository) GetEventByShareCode(ctx context.Context, code string) (Event, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockMeetupRepository) ListEventsByCreator(ctx context.Context, creatorName string) ([]Event, error) {
	args := m.Called(ctx, creatorName)
	if events, ok := args.Get(0).([]Event); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) CreateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	args := m.Called(ctx, reg, responses)
	return args.Get(0).(Registration), args.Error(1)
}
func (m *MockMeetupRepository) UpdateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	args := m.Called(ctx, reg, responses)
	return args.Get(0).(Registration), args.Error(1)
}
func (m *MockMeetupRepository) GetRegistration(ctx context.Context, id int) (Registration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Registration), args.Error(1)
}
func (m *MockMeetupRepository) ListRegistrations(ctx context.Context, eventId int) ([]Registration, error) {
	args := m.Called(ctx, eventId)
	if regs, ok := args.Get(0).([]Registration); ok {
		return regs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) ListQuestions(ctx context.Context, eventId int) ([]Question, error) {
	args := m.Called(ctx, eventId)
	if questions, ok := args.Get(0).([]Question); ok {
		return questions, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) ReplaceQuestions(ctx context.Context, eventId int, questions []Question) ([]Question, error) {
	args := m.Called(ctx, eventId, questions)
	if saved, ok := args.Get(0).([]Question); ok {
		return saved, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) ListResponses(ctx context.Context, registrationId int) ([]QuestionResponse, error) {
	args := m.Called(ctx, registrationId)
	if responses, ok := args.Get(0).([]QuestionResponse); ok {
		return responses, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) ReplaceResponses(ctx context.Context, registrationId int, responses []QuestionResponse) error {
	args := m.Called(ctx, registrationId, responses)
	return args.Error(0)
}
func (m *MockMeetupRepository) CreateMeetingRequest(ctx context.Context, req MeetingRequest, activeStatuses []string) (MeetingRequest, error) {
	args := m.Called(ctx, req, activeStatuses)
	return args.Get(0).(MeetingRequest), args.Error(1)
}
func (m *MockMeetupRepository) GetMeetingRequest(ctx context.Context, id int) (MeetingRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(MeetingRequest), args.Error(1)
}
func (m *MockMeetupRepository) UpdateMeetingRequest(ctx context.Context, req MeetingRequest, expectedStatus string) (MeetingRequest, error) {
	args := m.Called(ctx, req, expectedStatus)
	return args.Get(0).(MeetingRequest), args.Error(1)
}
func (m *MockMeetupRepository) ListMeetingRequests(ctx context.Context, eventId, participantId int) ([]MeetingRequest, error) {
	args := m.Called(ctx, eventId, participantId)
	if requests, ok := args.Get(0).([]MeetingRequest); ok {
		return requests, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) FindActiveMeetingRequest(ctx context.Context, eventId, a, b int, activeStatuses []string) (MeetingRequest, error) {
	args := m.Called(ctx, eventId, a, b, activeStatuses)
	return args.Get(0).(MeetingRequest), args.Error(1)
}
func (m *MockMeetupRepository) MarkRequestSeen(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockMeetupRepository) CountUnseenPending(ctx context.Context, eventId, participantId int) (int, error) {
	args := m.Called(ctx, eventId, participantId)
	return args.Int(0), args.Error(1)
}
func (m *MockMeetupRepository) CreateMeetingMessage(ctx context.Context, msg MeetingMessage) (MeetingMessage, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(MeetingMessage), args.Error(1)
}
func (m *MockMeetupRepository) ListMeetingMessages(ctx context.Context, meetingId int) ([]MeetingMessage, error) {
	args := m.Called(ctx, meetingId)
	if messages, ok := args.Get(0).([]MeetingMessage); ok {
		return messages, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockMeetupRepository) MarkMessagesRead(ctx context.Context, meetingId, readerId int, at time.Time) (int, error) {
	args := m.Called(ctx, meetingId, readerId, at)
	return args.Int(0), args.Error(1)
}
func (m *MockMeetupRepository) CountUnreadMessages(ctx context.Context, eventId, participantId int, statuses []string) (int, error) {
	args := m.Called(ctx, eventId, participantId, statuses)
	return args.Int(0), args.Error(1)
}
