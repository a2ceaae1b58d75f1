package database

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryMeetupRepository keeps every record in process memory. It backs the
// "memory" DSN for local runs and the service tests.
type MemoryMeetupRepository struct {
	mu        sync.Mutex
	seq       int
	events    map[int]Event
	regs      map[int]Registration
	questions map[int]Question
	responses map[int]QuestionResponse
	meetings  map[int]MeetingRequest
	messages  map[int]MeetingMessage
}

var _ MeetupRepository = (*MemoryMeetupRepository)(nil)

func NewMemoryMeetupRepository() *MemoryMeetupRepository {
	return &MemoryMeetupRepository{
		events:    make(map[int]Event),
		regs:      make(map[int]Registration),
		questions: make(map[int]Question),
		responses: make(map[int]QuestionResponse),
		meetings:  make(map[int]MeetingRequest),
		messages:  make(map[int]MeetingMessage),
	}
}

func (m *MemoryMeetupRepository) nextId() int {
	m.seq++
	return m.seq
}

func now() time.Time {
	return time.Now().UTC()
}

func (m *MemoryMeetupRepository) Ping(context.Context) error { return nil }

func (m *MemoryMeetupRepository) Close() error { return nil }

func (m *MemoryMeetupRepository) CreateEvent(_ context.Context, params CreateEventParams) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.events {
		if e.ShareCode == params.ShareCode {
			return Event{}, ErrDuplicateShareCode
		}
	}

	ts := now()
	e := Event{
		Id:                m.nextId(),
		Name:              params.Name,
		Description:       params.Description,
		Date:              params.Date,
		Location:          params.Location,
		ShareCode:         params.ShareCode,
		OrganizerCodeHash: params.OrganizerCodeHash,
		MeetingDuration:   params.MeetingDuration,
		CreatorName:       params.CreatorName,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	m.events[e.Id] = e
	return e, nil
}

func (m *MemoryMeetupRepository) GetEvent(_ context.Context, id int) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryMeetupRepository) GetEventByShareCode(_ context.Context, code string) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.events {
		if e.ShareCode == code {
			return e, nil
		}
	}
	return Event{}, ErrNotFound
}

func (m *MemoryMeetupRepository) ListEventsByCreator(_ context.Context, creatorName string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]Event, 0)
	for _, e := range m.events {
		if strings.EqualFold(e.CreatorName, creatorName) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Id > events[j].Id })
	return events, nil
}

func copyRegistration(r Registration) Registration {
	r.Interests = slices.Clone(r.Interests)
	return r
}

func (m *MemoryMeetupRepository) CreateRegistration(_ context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := now()
	reg = copyRegistration(reg)
	reg.Id = m.nextId()
	reg.CreatedAt = ts
	reg.UpdatedAt = ts
	m.regs[reg.Id] = reg
	m.replaceResponsesLocked(reg.Id, responses)

	return copyRegistration(reg), nil
}

func (m *MemoryMeetupRepository) UpdateRegistration(_ context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.regs[reg.Id]
	if !ok {
		return Registration{}, ErrNotFound
	}

	cur.Name = reg.Name
	cur.Role = reg.Role
	cur.Interests = slices.Clone(reg.Interests)
	cur.Contact = reg.Contact
	cur.FindMe = reg.FindMe
	cur.Bio = reg.Bio
	cur.UpdatedAt = now()
	m.regs[cur.Id] = cur

	if responses != nil {
		m.replaceResponsesLocked(cur.Id, responses)
	}

	return copyRegistration(cur), nil
}

func (m *MemoryMeetupRepository) GetRegistration(_ context.Context, id int) (Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.regs[id]
	if !ok {
		return Registration{}, ErrNotFound
	}
	return copyRegistration(r), nil
}

func (m *MemoryMeetupRepository) ListRegistrations(_ context.Context, eventId int) ([]Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	regs := make([]Registration, 0)
	for _, r := range m.regs {
		if r.EventId == eventId {
			regs = append(regs, copyRegistration(r))
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Id < regs[j].Id })
	return regs, nil
}

func (m *MemoryMeetupRepository) ListQuestions(_ context.Context, eventId int) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	questions := make([]Question, 0)
	for _, q := range m.questions {
		if q.EventId == eventId {
			q.Options = slices.Clone(q.Options)
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].SortOrder < questions[j].SortOrder })
	return questions, nil
}

func (m *MemoryMeetupRepository) ReplaceQuestions(_ context.Context, eventId int, questions []Question) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, q := range m.questions {
		if q.EventId != eventId {
			continue
		}
		delete(m.questions, id)
		for rid, r := range m.responses {
			if r.QuestionId == id {
				delete(m.responses, rid)
			}
		}
	}

	ts := now()
	saved := make([]Question, 0, len(questions))
	for _, q := range questions {
		q.Id = m.nextId()
		q.EventId = eventId
		q.Options = slices.Clone(q.Options)
		q.CreatedAt = ts
		m.questions[q.Id] = q
		saved = append(saved, q)
	}
	return saved, nil
}

func (m *MemoryMeetupRepository) ListResponses(_ context.Context, registrationId int) ([]QuestionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	responses := make([]QuestionResponse, 0)
	for _, r := range m.responses {
		if r.RegistrationId == registrationId {
			r.Value = slices.Clone(r.Value)
			responses = append(responses, r)
		}
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i].QuestionId < responses[j].QuestionId })
	return responses, nil
}

func (m *MemoryMeetupRepository) ReplaceResponses(_ context.Context, registrationId int, responses []QuestionResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.regs[registrationId]; !ok {
		return ErrNotFound
	}
	m.replaceResponsesLocked(registrationId, responses)
	return nil
}

func (m *MemoryMeetupRepository) replaceResponsesLocked(registrationId int, responses []QuestionResponse) {
	for id, r := range m.responses {
		if r.RegistrationId == registrationId {
			delete(m.responses, id)
		}
	}

	ts := now()
	for _, r := range responses {
		r.Id = m.nextId()
		r.RegistrationId = registrationId
		r.Value = json.RawMessage(slices.Clone(r.Value))
		r.CreatedAt = ts
		m.responses[r.Id] = r
	}
}

func samePair(req MeetingRequest, a, b int) bool {
	return (req.RequesterId == a && req.TargetId == b) || (req.RequesterId == b && req.TargetId == a)
}

func (m *MemoryMeetupRepository) findActiveLocked(eventId, a, b int, activeStatuses []string) (MeetingRequest, bool) {
	var (
		found MeetingRequest
		ok    bool
	)
	for _, req := range m.meetings {
		if req.EventId == eventId && samePair(req, a, b) && slices.Contains(activeStatuses, req.Status) {
			if !ok || req.Id > found.Id {
				found, ok = req, true
			}
		}
	}
	return found, ok
}

func (m *MemoryMeetupRepository) CreateMeetingRequest(_ context.Context, req MeetingRequest, activeStatuses []string) (MeetingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findActiveLocked(req.EventId, req.RequesterId, req.TargetId, activeStatuses); ok {
		return MeetingRequest{}, ErrDuplicateActiveRequest
	}

	ts := now()
	req.Id = m.nextId()
	req.SeenByTarget = false
	req.CreatedAt = ts
	req.UpdatedAt = ts
	m.meetings[req.Id] = req
	return req, nil
}

func (m *MemoryMeetupRepository) GetMeetingRequest(_ context.Context, id int) (MeetingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.meetings[id]
	if !ok {
		return MeetingRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *MemoryMeetupRepository) UpdateMeetingRequest(_ context.Context, req MeetingRequest, expectedStatus string) (MeetingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.meetings[req.Id]
	if !ok {
		return MeetingRequest{}, ErrNotFound
	}
	if cur.Status != expectedStatus {
		return MeetingRequest{}, ErrStatusChanged
	}

	cur.Status = req.Status
	cur.Message = req.Message
	cur.MeetingDate = req.MeetingDate
	cur.MeetingTime = req.MeetingTime
	cur.MeetingLocation = req.MeetingLocation
	cur.RescheduleMessage = req.RescheduleMessage
	cur.SeenByTarget = req.SeenByTarget
	cur.UpdatedAt = now()
	m.meetings[cur.Id] = cur
	return cur, nil
}

func (m *MemoryMeetupRepository) ListMeetingRequests(_ context.Context, eventId, participantId int) ([]MeetingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := make([]MeetingRequest, 0)
	for _, req := range m.meetings {
		if (eventId == 0 || req.EventId == eventId) && req.Involves(participantId) {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Id > requests[j].Id })
	return requests, nil
}

func (m *MemoryMeetupRepository) FindActiveMeetingRequest(_ context.Context, eventId, a, b int, activeStatuses []string) (MeetingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.findActiveLocked(eventId, a, b, activeStatuses)
	if !ok {
		return MeetingRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *MemoryMeetupRepository) MarkRequestSeen(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.meetings[id]
	if !ok {
		return ErrNotFound
	}
	req.SeenByTarget = true
	m.meetings[id] = req
	return nil
}

func (m *MemoryMeetupRepository) CountUnseenPending(_ context.Context, eventId, participantId int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, req := range m.meetings {
		if (eventId == 0 || req.EventId == eventId) && req.TargetId == participantId &&
			req.Status == "pending" && !req.SeenByTarget {
			count++
		}
	}
	return count, nil
}

func (m *MemoryMeetupRepository) CreateMeetingMessage(_ context.Context, msg MeetingMessage) (MeetingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.meetings[msg.MeetingRequestId]; !ok {
		return MeetingMessage{}, ErrNotFound
	}

	msg.Id = m.nextId()
	msg.CreatedAt = now()
	msg.ReadAt = nil
	m.messages[msg.Id] = msg
	return msg, nil
}

func (m *MemoryMeetupRepository) ListMeetingMessages(_ context.Context, meetingId int) ([]MeetingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := make([]MeetingMessage, 0)
	for _, msg := range m.messages {
		if msg.MeetingRequestId == meetingId {
			messages = append(messages, msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].Id < messages[j].Id })
	return messages, nil
}

func (m *MemoryMeetupRepository) MarkMessagesRead(_ context.Context, meetingId, readerId int, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, msg := range m.messages {
		if msg.MeetingRequestId == meetingId && msg.SenderId != readerId && msg.ReadAt == nil {
			readAt := at
			msg.ReadAt = &readAt
			m.messages[id] = msg
			n++
		}
	}
	return n, nil
}

func (m *MemoryMeetupRepository) CountUnreadMessages(_ context.Context, eventId, participantId int, statuses []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, msg := range m.messages {
		req, ok := m.meetings[msg.MeetingRequestId]
		if !ok || !req.Involves(participantId) || !slices.Contains(statuses, req.Status) {
			continue
		}
		if eventId != 0 && req.EventId != eventId {
			continue
		}
		if msg.SenderId != participantId && msg.ReadAt == nil {
			count++
		}
	}
	return count, nil
}
