package meeting

import (
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestViewFor(t *testing.T) {
	tcases := []struct {
		status    Status
		requester ViewKind
		target    ViewKind
	}{
		{StatusPending, ViewPending, ViewPending},
		{StatusDeclined, ViewDeclined, ViewDeclined},
		{StatusAccepted, ViewBookingForm, ViewAwaitingSchedule},
		{StatusScheduled, ViewAwaitingResponse, ViewRespondToProposal},
		{StatusRescheduleRequested, ViewRescheduleForm, ViewAwaitingNewTime},
		{StatusConfirmed, ViewConfirmed, ViewConfirmed},
		{Status("bogus"), ViewUnknown, ViewUnknown},
	}

	for _, tc := range tcases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.requester, ViewFor(tc.status, true))
			assert.Equal(t, tc.target, ViewFor(tc.status, false))
		})
	}
}

func TestBuildView(t *testing.T) {
	req := request(StatusRescheduleRequested)
	req.MeetingDate, req.MeetingTime, req.MeetingLocation = "2025-01-01", "10:00", "lobby"
	req.RescheduleMessage = "can we do later?"
	other := database.Registration{FindMe: "red hat"}

	v := BuildView(req, requesterId, other)
	assert.Equal(t, ViewRescheduleForm, v.Kind)
	assert.Equal(t, []Action{ActionSchedule}, v.Actions)
	assert.Equal(t, "can we do later?", v.RescheduleMessage)
	assert.Empty(t, v.OtherFindMe, "find-me hint is hidden before confirmation")

	req.Status = string(StatusConfirmed)
	requesterView := BuildView(req, requesterId, other)
	targetView := BuildView(req, targetId, database.Registration{FindMe: "blue scarf"})
	assert.Equal(t, ViewConfirmed, requesterView.Kind)
	assert.Equal(t, "red hat", requesterView.OtherFindMe)
	assert.Equal(t, "blue scarf", targetView.OtherFindMe)
	assert.Equal(t, requesterView.Date, targetView.Date)
	assert.Equal(t, requesterView.Time, targetView.Time)
	assert.Equal(t, requesterView.Location, targetView.Location)
	assert.Empty(t, requesterView.Actions)
}
