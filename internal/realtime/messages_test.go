package realtime

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/npezzotti/meetup/internal/notify"
	"github.com/npezzotti/meetup/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoErrOK(t *testing.T) {
	msg := NoErrOK(3, map[string]any{"subscription_id": 3})

	assert.Equal(t, 3, msg.Id)
	assert.False(t, msg.Timestamp.IsZero())
	require.NotNil(t, msg.Response)
	assert.Equal(t, http.StatusOK, msg.Response.ResponseCode)
	assert.Empty(t, msg.Response.Error)
	assert.Equal(t, 3, msg.Response.Data["subscription_id"])
}

func TestNoErrAccepted(t *testing.T) {
	msg := NoErrAccepted(4)

	assert.Equal(t, 4, msg.Id)
	require.NotNil(t, msg.Response)
	assert.Equal(t, http.StatusAccepted, msg.Response.ResponseCode)
}

func TestErrResponse(t *testing.T) {
	tcases := []struct {
		name     string
		msg      *ServerMessage
		wantCode int
		wantErr  string
		wantId   int
	}{
		{name: "not found", msg: ErrNotFound(1), wantCode: http.StatusNotFound, wantErr: "not found", wantId: 1},
		{name: "internal", msg: ErrInternalError(2), wantCode: http.StatusInternalServerError, wantErr: "internal server error", wantId: 2},
		{name: "unavailable", msg: ErrServiceUnavailable(3), wantCode: http.StatusServiceUnavailable, wantErr: "service unavailable", wantId: 3},
		{name: "custom message", msg: ErrResponse(4, http.StatusConflict, "chat closed"), wantCode: http.StatusConflict, wantErr: "chat closed", wantId: 4},
		{name: "invalid message", msg: ErrInvalidMessage(5), wantCode: http.StatusBadRequest, wantErr: "invalid message format", wantId: 5},
		{name: "invalid message without id", msg: ErrInvalidMessage(-1), wantCode: http.StatusBadRequest, wantErr: "invalid message format", wantId: 0},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			require.NotNil(t, tc.msg.Response)
			assert.Equal(t, tc.wantId, tc.msg.Id)
			assert.Equal(t, tc.wantCode, tc.msg.Response.ResponseCode)
			assert.Equal(t, tc.wantErr, tc.msg.Response.Error)
		})
	}
}

func TestServerMessageJSON(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: ts},
		Notification: &notify.Notification{
			Kind:   notify.KindCounts,
			Counts: types.Counts{PendingRequests: 1, UnreadMessages: 2},
		},
	}

	bytes, err := json.Marshal(msg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(bytes, &got))
	assert.NotContains(t, got, "id")
	assert.NotContains(t, got, "response")
	assert.Contains(t, got, "notification")
}

func TestClientMessageJSON(t *testing.T) {
	raw := `{"id":2,"publish":{"meeting_id":9,"content":"hi"}}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, 2, msg.Id)
	require.NotNil(t, msg.Publish)
	assert.Equal(t, 9, msg.Publish.MeetingId)
	assert.Equal(t, "hi", msg.Publish.Content)
	assert.Nil(t, msg.Subscribe)
}
