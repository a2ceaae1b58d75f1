package meeting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/types"
)

// ErrConflict is returned when the request changed status between read
// and write.
var ErrConflict = errors.New("meeting request was updated by someone else")

type ProposeParams struct {
	EventId     int
	TargetId    int
	Message     string
	AiSuggested bool
}

// Item is a request together with the viewer's card.
type Item struct {
	Request database.MeetingRequest
	View    View
}

type Service struct {
	db    database.MeetupRepository
	log   *log.Logger
	pub   types.Publisher
	stats stats.StatsProvider
	now   func() time.Time
}

func NewService(db database.MeetupRepository, logger *log.Logger, pub types.Publisher, st stats.StatsProvider) *Service {
	return &Service{
		db:    db,
		log:   logger,
		pub:   pub,
		stats: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Propose creates a pending request from the actor to the target. A pair
// may only have one active request per event.
func (s *Service) Propose(ctx context.Context, actorId int, params ProposeParams) (database.MeetingRequest, error) {
	if actorId == params.TargetId {
		return database.MeetingRequest{}, ErrSelfRequest
	}

	for _, id := range []int{actorId, params.TargetId} {
		reg, err := s.db.GetRegistration(ctx, id)
		if err != nil {
			return database.MeetingRequest{}, err
		}
		if reg.EventId != params.EventId {
			return database.MeetingRequest{}, database.ErrNotFound
		}
	}

	active := Strings(ActiveStatuses)
	_, err := s.db.FindActiveMeetingRequest(ctx, params.EventId, actorId, params.TargetId, active)
	if err == nil {
		return database.MeetingRequest{}, ErrActiveRequestExists
	}
	if !errors.Is(err, database.ErrNotFound) {
		return database.MeetingRequest{}, fmt.Errorf("find active request: %w", err)
	}

	req, err := s.db.CreateMeetingRequest(ctx, database.MeetingRequest{
		EventId:     params.EventId,
		RequesterId: actorId,
		TargetId:    params.TargetId,
		Status:      string(StatusPending),
		Message:     strings.TrimSpace(params.Message),
		AiSuggested: params.AiSuggested,
	}, active)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateActiveRequest) {
			return database.MeetingRequest{}, ErrActiveRequestExists
		}
		return database.MeetingRequest{}, fmt.Errorf("create meeting request: %w", err)
	}

	s.stats.Incr(stats.MeetingRequestsCreated)
	s.publishRequest(types.ChangeInsert, req)
	return req, nil
}

// Apply performs a lifecycle action. Disallowed actions are rejected before
// anything is written.
func (s *Service) Apply(ctx context.Context, actorId, meetingId int, action Action, p Proposal) (database.MeetingRequest, error) {
	req, err := s.db.GetMeetingRequest(ctx, meetingId)
	if err != nil {
		return database.MeetingRequest{}, err
	}

	updated, err := Transition(req, actorId, action, p)
	if err != nil {
		return database.MeetingRequest{}, err
	}

	updated, err = s.db.UpdateMeetingRequest(ctx, updated, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrStatusChanged) {
			return database.MeetingRequest{}, ErrConflict
		}
		return database.MeetingRequest{}, fmt.Errorf("update meeting request: %w", err)
	}

	s.stats.Incr(stats.MeetingTransitions)
	s.publishRequest(types.ChangeUpdate, updated)
	return updated, nil
}

func (s *Service) Accept(ctx context.Context, actorId, meetingId int) (database.MeetingRequest, error) {
	return s.Apply(ctx, actorId, meetingId, ActionAccept, Proposal{})
}

func (s *Service) Decline(ctx context.Context, actorId, meetingId int) (database.MeetingRequest, error) {
	return s.Apply(ctx, actorId, meetingId, ActionDecline, Proposal{})
}

func (s *Service) Schedule(ctx context.Context, actorId, meetingId int, p Proposal) (database.MeetingRequest, error) {
	return s.Apply(ctx, actorId, meetingId, ActionSchedule, p)
}

func (s *Service) Confirm(ctx context.Context, actorId, meetingId int) (database.MeetingRequest, error) {
	return s.Apply(ctx, actorId, meetingId, ActionConfirm, Proposal{})
}

func (s *Service) Reschedule(ctx context.Context, actorId, meetingId int, reason string) (database.MeetingRequest, error) {
	return s.Apply(ctx, actorId, meetingId, ActionReschedule, Proposal{Message: reason})
}

// Get returns a request the actor is a party of.
func (s *Service) Get(ctx context.Context, actorId, meetingId int) (database.MeetingRequest, error) {
	req, err := s.db.GetMeetingRequest(ctx, meetingId)
	if err != nil {
		return database.MeetingRequest{}, err
	}
	if !req.Involves(actorId) {
		return database.MeetingRequest{}, ErrNotParticipant
	}
	return req, nil
}

// Card returns the request and the actor's view of it.
func (s *Service) Card(ctx context.Context, actorId, meetingId int) (Item, error) {
	req, err := s.Get(ctx, actorId, meetingId)
	if err != nil {
		return Item{}, err
	}
	return s.item(ctx, req, actorId), nil
}

// ListForParticipant returns every request the participant is part of,
// newest first. An eventId of zero lists across events.
func (s *Service) ListForParticipant(ctx context.Context, eventId, participantId int) ([]Item, error) {
	reqs, err := s.db.ListMeetingRequests(ctx, eventId, participantId)
	if err != nil {
		return nil, fmt.Errorf("list meeting requests: %w", err)
	}

	items := make([]Item, 0, len(reqs))
	for _, req := range reqs {
		items = append(items, s.item(ctx, req, participantId))
	}
	return items, nil
}

func (s *Service) item(ctx context.Context, req database.MeetingRequest, viewerId int) Item {
	var other database.Registration
	if Status(req.Status) == StatusConfirmed {
		otherId := req.TargetId
		if viewerId == req.TargetId {
			otherId = req.RequesterId
		}

		var err error
		if other, err = s.db.GetRegistration(ctx, otherId); err != nil {
			s.log.Printf("get registration %d: %v", otherId, err)
		}
	}
	return Item{Request: req, View: BuildView(req, viewerId, other)}
}

// MarkSeen flags a request as seen by its target.
func (s *Service) MarkSeen(ctx context.Context, actorId, meetingId int) error {
	req, err := s.Get(ctx, actorId, meetingId)
	if err != nil {
		return err
	}
	if req.TargetId != actorId {
		return ErrNotAllowed
	}
	if req.SeenByTarget {
		return nil
	}

	if err := s.db.MarkRequestSeen(ctx, meetingId); err != nil {
		return fmt.Errorf("mark request seen: %w", err)
	}
	req.SeenByTarget = true
	s.publishRequest(types.ChangeUpdate, req)
	return nil
}

// SendMessage appends a chat message from one of the parties.
func (s *Service) SendMessage(ctx context.Context, actorId, meetingId int, content string) (database.MeetingMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return database.MeetingMessage{}, ErrEmptyMessage
	}

	req, err := s.Get(ctx, actorId, meetingId)
	if err != nil {
		return database.MeetingMessage{}, err
	}
	if !slices.Contains(ChatStatuses, Status(req.Status)) {
		return database.MeetingMessage{}, ErrChatClosed
	}

	msg, err := s.db.CreateMeetingMessage(ctx, database.MeetingMessage{
		MeetingRequestId: meetingId,
		SenderId:         actorId,
		Content:          content,
	})
	if err != nil {
		return database.MeetingMessage{}, fmt.Errorf("create meeting message: %w", err)
	}

	s.stats.Incr(stats.MeetingMessagesSent)
	s.pub.Publish(types.Change{
		Table:          types.TableMeetingMessages,
		Type:           types.ChangeInsert,
		Row:            types.FromMeetingMessage(msg),
		EventId:        req.EventId,
		MeetingId:      req.Id,
		ParticipantIds: []int{req.RequesterId, req.TargetId},
	})
	return msg, nil
}

func (s *Service) Messages(ctx context.Context, actorId, meetingId int) ([]database.MeetingMessage, error) {
	if _, err := s.Get(ctx, actorId, meetingId); err != nil {
		return nil, err
	}
	return s.db.ListMeetingMessages(ctx, meetingId)
}

// MarkMessagesRead stamps every unread message the actor received in the
// meeting. Calling it again marks nothing.
func (s *Service) MarkMessagesRead(ctx context.Context, actorId, meetingId int) (int, error) {
	req, err := s.Get(ctx, actorId, meetingId)
	if err != nil {
		return 0, err
	}

	n, err := s.db.MarkMessagesRead(ctx, meetingId, actorId, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	if n > 0 {
		s.pub.Publish(types.Change{
			Table:          types.TableMeetingMessages,
			Type:           types.ChangeUpdate,
			Row:            map[string]int{"meeting_request_id": meetingId, "read_by": actorId, "count": n},
			EventId:        req.EventId,
			MeetingId:      req.Id,
			ParticipantIds: []int{req.RequesterId, req.TargetId},
		})
	}
	return n, nil
}

func (s *Service) publishRequest(changeType string, req database.MeetingRequest) {
	s.pub.Publish(types.Change{
		Table:          types.TableMeetingRequests,
		Type:           changeType,
		Row:            types.FromMeetingRequest(req),
		EventId:        req.EventId,
		MeetingId:      req.Id,
		ParticipantIds: []int{req.RequesterId, req.TargetId},
	})
}
