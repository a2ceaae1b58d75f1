// Package meeting implements the lifecycle of a proposed one-on-one meeting
// between two participants.
package meeting

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/npezzotti/meetup/internal/database"
)

type Status string

const (
	StatusPending             Status = "pending"
	StatusAccepted            Status = "accepted"
	StatusDeclined            Status = "declined"
	StatusScheduled           Status = "scheduled"
	StatusRescheduleRequested Status = "reschedule_requested"
	StatusConfirmed           Status = "confirmed"
)

// ActiveStatuses are the statuses in which a pair counts as already having a
// meeting request.
var ActiveStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusScheduled,
	StatusRescheduleRequested,
	StatusConfirmed,
}

// ChatStatuses are the statuses in which the two parties may message each
// other and unread messages are counted.
var ChatStatuses = []Status{
	StatusAccepted,
	StatusScheduled,
	StatusRescheduleRequested,
	StatusConfirmed,
}

func Strings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type Role int

const (
	RoleNone Role = iota
	RoleRequester
	RoleTarget
)

func (r Role) String() string {
	switch r {
	case RoleRequester:
		return "requester"
	case RoleTarget:
		return "target"
	}
	return "none"
}

// RoleOf returns the part the participant plays in the request.
func RoleOf(req database.MeetingRequest, participantId int) Role {
	switch participantId {
	case req.RequesterId:
		return RoleRequester
	case req.TargetId:
		return RoleTarget
	}
	return RoleNone
}

type Action string

const (
	ActionAccept     Action = "accept"
	ActionDecline    Action = "decline"
	ActionSchedule   Action = "schedule"
	ActionConfirm    Action = "confirm"
	ActionReschedule Action = "reschedule"
)

var (
	ErrNotAllowed          = errors.New("transition not allowed")
	ErrNotParticipant      = errors.New("not a participant of this meeting")
	ErrSelfRequest         = errors.New("cannot request a meeting with yourself")
	ErrActiveRequestExists = errors.New("an active meeting request already exists for this pair")
	ErrIncompleteSchedule  = errors.New("date, time and location are all required")
	ErrInvalidSlot         = errors.New("invalid time slot")
	ErrInvalidLocation     = errors.New("invalid location")
	ErrInvalidDate         = errors.New("invalid date")
	ErrRescheduleReason    = errors.New("a reason is required to request a new time")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrChatClosed          = errors.New("chat is not open for this meeting")
)

type transitionKey struct {
	status Status
	role   Role
}

type transition struct {
	action Action
	to     Status
}

// transitions lists every allowed move. Anything absent is rejected.
var transitions = map[transitionKey][]transition{
	{StatusPending, RoleTarget}: {
		{ActionAccept, StatusAccepted},
		{ActionDecline, StatusDeclined},
	},
	{StatusAccepted, RoleRequester}: {
		{ActionSchedule, StatusScheduled},
	},
	{StatusScheduled, RoleTarget}: {
		{ActionConfirm, StatusConfirmed},
		{ActionReschedule, StatusRescheduleRequested},
	},
	{StatusRescheduleRequested, RoleRequester}: {
		{ActionSchedule, StatusScheduled},
	},
}

// AllowedActions returns the actions the given role may take from status.
func AllowedActions(status Status, role Role) []Action {
	ts := transitions[transitionKey{status, role}]
	actions := make([]Action, 0, len(ts))
	for _, t := range ts {
		actions = append(actions, t.action)
	}
	return actions
}

func next(status Status, role Role, action Action) (Status, bool) {
	for _, t := range transitions[transitionKey{status, role}] {
		if t.action == action {
			return t.to, true
		}
	}
	return "", false
}

type Location string

const (
	LocationCoffeeSpot Location = "coffee_spot"
	LocationLobby      Location = "lobby"
	LocationMainFloor  Location = "main_floor"
)

var Locations = []Location{LocationCoffeeSpot, LocationLobby, LocationMainFloor}

const dateLayout = "2006-01-02"

// TimeSlots returns the half-hour grid from 09:00 to 17:30.
func TimeSlots() []string {
	slots := make([]string, 0, 18)
	for h := 9; h <= 17; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return slots
}

// Proposal carries the input of a schedule or reschedule action.
type Proposal struct {
	Date     string
	Time     string
	Location string
	Message  string
}

func (p Proposal) validateSlot() error {
	date := strings.TrimSpace(p.Date)
	tm := strings.TrimSpace(p.Time)
	loc := strings.TrimSpace(p.Location)
	if date == "" || tm == "" || loc == "" {
		return ErrIncompleteSchedule
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if !slices.Contains(TimeSlots(), tm) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, tm)
	}
	if !slices.Contains(Locations, Location(loc)) {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, loc)
	}
	return nil
}

// Transition applies action by the actor to req and returns the updated
// request. It performs no I/O; a rejected transition leaves req untouched.
func Transition(req database.MeetingRequest, actorId int, action Action, p Proposal) (database.MeetingRequest, error) {
	role := RoleOf(req, actorId)
	if role == RoleNone {
		return req, ErrNotParticipant
	}

	to, ok := next(Status(req.Status), role, action)
	if !ok {
		return req, fmt.Errorf("%w: %s cannot %s a %s request", ErrNotAllowed, role, action, req.Status)
	}

	updated := req
	switch action {
	case ActionSchedule:
		if err := p.validateSlot(); err != nil {
			return req, err
		}
		updated.MeetingDate = strings.TrimSpace(p.Date)
		updated.MeetingTime = strings.TrimSpace(p.Time)
		updated.MeetingLocation = strings.TrimSpace(p.Location)
		if msg := strings.TrimSpace(p.Message); msg != "" {
			updated.Message = msg
		}
		updated.RescheduleMessage = ""
	case ActionReschedule:
		reason := strings.TrimSpace(p.Message)
		if reason == "" {
			return req, ErrRescheduleReason
		}
		updated.RescheduleMessage = reason
	}

	updated.Status = string(to)
	return updated, nil
}
