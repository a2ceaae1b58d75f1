package meeting

import "github.com/npezzotti/meetup/internal/database"

type ViewKind string

const (
	// ViewPending and ViewDeclined are rendered by the request list rather
	// than the meeting card.
	ViewPending  ViewKind = "pending"
	ViewDeclined ViewKind = "declined"

	ViewBookingForm       ViewKind = "booking_form"
	ViewAwaitingSchedule  ViewKind = "awaiting_schedule"
	ViewRespondToProposal ViewKind = "respond_to_proposal"
	ViewAwaitingResponse  ViewKind = "awaiting_response"
	ViewRescheduleForm    ViewKind = "reschedule_form"
	ViewAwaitingNewTime   ViewKind = "awaiting_new_time"
	ViewConfirmed         ViewKind = "confirmed"
	ViewUnknown           ViewKind = "unknown"
)

// ViewFor maps a status and the viewer's side to the card shown.
func ViewFor(status Status, isRequester bool) ViewKind {
	switch status {
	case StatusPending:
		return ViewPending
	case StatusDeclined:
		return ViewDeclined
	case StatusAccepted:
		if isRequester {
			return ViewBookingForm
		}
		return ViewAwaitingSchedule
	case StatusScheduled:
		if isRequester {
			return ViewAwaitingResponse
		}
		return ViewRespondToProposal
	case StatusRescheduleRequested:
		if isRequester {
			return ViewRescheduleForm
		}
		return ViewAwaitingNewTime
	case StatusConfirmed:
		return ViewConfirmed
	}
	return ViewUnknown
}

type View struct {
	Kind              ViewKind `json:"kind"`
	Actions           []Action `json:"actions"`
	Date              string   `json:"date,omitempty"`
	Time              string   `json:"time,omitempty"`
	Location          string   `json:"location,omitempty"`
	RescheduleMessage string   `json:"reschedule_message,omitempty"`
	OtherFindMe       string   `json:"other_find_me,omitempty"`
}

// BuildView renders the card for the viewer. other is the viewer's
// counterpart; its find-me hint is only revealed once confirmed.
func BuildView(req database.MeetingRequest, viewerId int, other database.Registration) View {
	role := RoleOf(req, viewerId)
	status := Status(req.Status)

	v := View{
		Kind:    ViewFor(status, role == RoleRequester),
		Actions: AllowedActions(status, role),
	}

	switch v.Kind {
	case ViewRespondToProposal, ViewAwaitingResponse, ViewConfirmed:
		v.Date, v.Time, v.Location = req.MeetingDate, req.MeetingTime, req.MeetingLocation
	case ViewRescheduleForm, ViewAwaitingNewTime:
		v.Date, v.Time, v.Location = req.MeetingDate, req.MeetingTime, req.MeetingLocation
		v.RescheduleMessage = req.RescheduleMessage
	}

	if v.Kind == ViewConfirmed {
		v.OtherFindMe = other.FindMe
	}
	return v
}
