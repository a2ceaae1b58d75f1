// Package notify keeps a participant's unread counters current and turns
// relevant changes into short notifications.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/i18n"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/types"
)

const (
	KindNewRequest    = "new_request"
	KindRequestUpdate = "request_update"
	KindNewMessage    = "new_message"
	KindCounts        = "counts"
)

// Marker performs the writes behind the aggregator's mark operations.
type Marker interface {
	MarkSeen(ctx context.Context, actorId, meetingId int) error
	MarkMessagesRead(ctx context.Context, actorId, meetingId int) (int, error)
}

type Translator interface {
	T(locale, key string, data map[string]any) string
}

type Notification struct {
	Kind   string       `json:"kind"`
	Text   string       `json:"text,omitempty"`
	Counts types.Counts `json:"counts"`
}

// Aggregator tracks counters for one participant within one event. An
// eventId of zero covers every event.
type Aggregator struct {
	db            database.MeetupRepository
	marker        Marker
	tr            Translator
	locale        string
	participantId int
	eventId       int

	mu       sync.Mutex
	counts   types.Counts
	meetings map[int]bool
	names    map[int]string
}

func NewAggregator(db database.MeetupRepository, marker Marker, tr Translator, locale string, participantId, eventId int) *Aggregator {
	return &Aggregator{
		db:            db,
		marker:        marker,
		tr:            tr,
		locale:        locale,
		participantId: participantId,
		eventId:       eventId,
		meetings:      make(map[int]bool),
		names:         make(map[int]string),
	}
}

func (a *Aggregator) ParticipantId() int { return a.participantId }

func (a *Aggregator) Counts() types.Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

// Refresh recomputes both counters and the set of meetings the participant
// belongs to.
func (a *Aggregator) Refresh(ctx context.Context) (types.Counts, error) {
	reqs, err := a.db.ListMeetingRequests(ctx, a.eventId, a.participantId)
	if err != nil {
		return types.Counts{}, fmt.Errorf("list meeting requests: %w", err)
	}

	pending, err := a.db.CountUnseenPending(ctx, a.eventId, a.participantId)
	if err != nil {
		return types.Counts{}, fmt.Errorf("count pending requests: %w", err)
	}

	unread, err := a.db.CountUnreadMessages(ctx, a.eventId, a.participantId, meeting.Strings(meeting.ChatStatuses))
	if err != nil {
		return types.Counts{}, fmt.Errorf("count unread messages: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, req := range reqs {
		a.meetings[req.Id] = true
	}
	a.counts = types.Counts{PendingRequests: pending, UnreadMessages: unread}
	return a.counts, nil
}

// MarkRequestSeen flags a pending request addressed to the participant as
// seen and recomputes the counters.
func (a *Aggregator) MarkRequestSeen(ctx context.Context, requestId int) (types.Counts, error) {
	if err := a.marker.MarkSeen(ctx, a.participantId, requestId); err != nil {
		return types.Counts{}, err
	}
	return a.Refresh(ctx)
}

// MarkMessagesRead marks the meeting's messages read and recomputes the
// counters.
func (a *Aggregator) MarkMessagesRead(ctx context.Context, meetingId int) (types.Counts, error) {
	if _, err := a.marker.MarkMessagesRead(ctx, a.participantId, meetingId); err != nil {
		return types.Counts{}, err
	}
	return a.Refresh(ctx)
}

// HandleChange reacts to a committed change. ok is false when the change
// does not concern the participant. Message changes arrive for every
// meeting and are discarded unless the participant is a party.
func (a *Aggregator) HandleChange(ctx context.Context, change types.Change) (n Notification, ok bool, err error) {
	if a.eventId != 0 && change.EventId != a.eventId {
		return Notification{}, false, nil
	}

	switch change.Table {
	case types.TableMeetingRequests:
		return a.requestChanged(ctx, change)
	case types.TableMeetingMessages:
		return a.messageChanged(ctx, change)
	}
	return Notification{}, false, nil
}

func (a *Aggregator) requestChanged(ctx context.Context, change types.Change) (Notification, bool, error) {
	req, isReq := change.Row.(types.MeetingRequest)
	if !isReq || (req.RequesterId != a.participantId && req.TargetId != a.participantId) {
		return Notification{}, false, nil
	}

	a.mu.Lock()
	a.meetings[req.Id] = true
	a.mu.Unlock()

	counts, err := a.Refresh(ctx)
	if err != nil {
		return Notification{}, false, err
	}

	n := Notification{Kind: KindCounts, Counts: counts}
	isTarget := req.TargetId == a.participantId
	key := ""
	switch change.Type {
	case types.ChangeInsert:
		if isTarget {
			n.Kind, key = KindNewRequest, i18n.MsgNewRequest
		}
	case types.ChangeUpdate:
		key = updateMessage(meeting.Status(req.Status), isTarget)
	}

	if key != "" {
		if n.Kind == KindCounts {
			n.Kind = KindRequestUpdate
		}
		other := req.RequesterId
		if !isTarget {
			other = req.TargetId
		}
		n.Text = a.tr.T(a.locale, key, map[string]any{
			"Name": a.name(ctx, other),
			"Date": req.MeetingDate,
			"Time": req.MeetingTime,
		})
	}
	return n, true, nil
}

// updateMessage picks the text for a status the other party moved the
// request into. Seen flags and the viewer's own moves produce none.
func updateMessage(status meeting.Status, isTarget bool) string {
	switch status {
	case meeting.StatusAccepted:
		if !isTarget {
			return i18n.MsgRequestAccepted
		}
	case meeting.StatusDeclined:
		if !isTarget {
			return i18n.MsgRequestDeclined
		}
	case meeting.StatusScheduled:
		if isTarget {
			return i18n.MsgMeetingScheduled
		}
	case meeting.StatusRescheduleRequested:
		if !isTarget {
			return i18n.MsgRescheduleAsked
		}
	case meeting.StatusConfirmed:
		if !isTarget {
			return i18n.MsgMeetingConfirmed
		}
	}
	return ""
}

func (a *Aggregator) messageChanged(ctx context.Context, change types.Change) (Notification, bool, error) {
	a.mu.Lock()
	member := a.meetings[change.MeetingId]
	a.mu.Unlock()
	if !member {
		return Notification{}, false, nil
	}

	counts, err := a.Refresh(ctx)
	if err != nil {
		return Notification{}, false, err
	}

	n := Notification{Kind: KindCounts, Counts: counts}
	if msg, isMsg := change.Row.(types.MeetingMessage); isMsg && change.Type == types.ChangeInsert {
		if msg.SenderId == a.participantId {
			return Notification{}, false, nil
		}
		n.Kind = KindNewMessage
		n.Text = a.tr.T(a.locale, i18n.MsgNewMessage, map[string]any{"Name": a.name(ctx, msg.SenderId)})
	}
	return n, true, nil
}

func (a *Aggregator) name(ctx context.Context, participantId int) string {
	a.mu.Lock()
	name, ok := a.names[participantId]
	a.mu.Unlock()
	if ok {
		return name
	}

	reg, err := a.db.GetRegistration(ctx, participantId)
	if err != nil {
		return "Someone"
	}

	a.mu.Lock()
	a.names[participantId] = reg.Name
	a.mu.Unlock()
	return reg.Name
}
