package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/npezzotti/meetup/internal/notify"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Subscribe     *Filter      `json:"subscribe,omitempty"`
	Unsubscribe   *Unsubscribe `json:"unsubscribe,omitempty"`
	Publish       *Publish     `json:"publish,omitempty"`
	Read          *Read        `json:"read,omitempty"`
	ParticipantId int          `json:"-"`
}

// Unsubscribe cancels the subscription created by the subscribe message
// with the given id.
type Unsubscribe struct {
	SubscriptionId int `json:"subscription_id"`
}

type Publish struct {
	MeetingId int    `json:"meeting_id"`
	Content   string `json:"content"`
}

type Read struct {
	MeetingId int `json:"meeting_id"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response            `json:"response,omitempty"`
	Change       *Change              `json:"change,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// Change is a committed row change delivered to a subscription.
type Change struct {
	SubscriptionId int    `json:"subscription_id"`
	Table          string `json:"table"`
	Type           string `json:"type"`
	Row            any    `json:"row"`
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func NoErrAccepted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

// ErrResponse builds an error reply with the status text of code unless a
// message is given.
func ErrResponse(id, code int, message string) *ServerMessage {
	if message == "" {
		message = lowerStatusText(code)
	}
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: code,
			Error:        message,
		},
	}
}

func ErrNotFound(id int) *ServerMessage {
	return ErrResponse(id, http.StatusNotFound, "")
}

func ErrInternalError(id int) *ServerMessage {
	return ErrResponse(id, http.StatusInternalServerError, "")
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return ErrResponse(id, http.StatusServiceUnavailable, "")
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := ErrResponse(0, http.StatusBadRequest, "invalid message format")
	if id > 0 {
		msg.Id = id
	}
	return msg
}

func NotificationMessage(n notify.Notification) *ServerMessage {
	return &ServerMessage{
		BaseMessage:  BaseMessage{Timestamp: Now()},
		Notification: &n,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

func lowerStatusText(code int) string {
	return strings.ToLower(http.StatusText(code))
}
