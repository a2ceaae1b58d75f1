package types

import (
	"encoding/json"
	"time"
)

type Event struct {
	Id              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Date            *time.Time `json:"date,omitempty"`
	Location        string     `json:"location"`
	ShareCode       string     `json:"share_code"`
	MeetingDuration int        `json:"meeting_duration"`
	CreatorName     string     `json:"creator_name"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
}

type Participant struct {
	Id        int       `json:"id"`
	EventId   int       `json:"event_id,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Interests []string  `json:"interests"`
	Contact   string    `json:"contact,omitempty"`
	FindMe    string    `json:"find_me,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	MatchId   int       `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Question struct {
	Id          int      `json:"id"`
	EventId     int      `json:"event_id,omitempty"`
	Text        string   `json:"question_text"`
	FieldType   string   `json:"field_type"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"is_required"`
	SortOrder   int      `json:"sort_order"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type Answer struct {
	QuestionId int             `json:"question_id"`
	Question   string          `json:"question_text"`
	FieldType  string          `json:"field_type"`
	Value      json.RawMessage `json:"value,omitempty"`
	Display    string          `json:"display"`
}

type MeetingRequest struct {
	Id                int       `json:"id"`
	EventId           int       `json:"event_id,omitempty"`
	RequesterId       int       `json:"requester_id"`
	TargetId          int       `json:"target_id"`
	Status            string    `json:"status"`
	Message           string    `json:"message,omitempty"`
	AiSuggested       bool      `json:"ai_suggested"`
	SuggestedTime     string    `json:"suggested_time,omitempty"`
	SeenByTarget      bool      `json:"seen_by_target"`
	MeetingDate       string    `json:"meeting_date,omitempty"`
	MeetingTime       string    `json:"meeting_time,omitempty"`
	MeetingLocation   string    `json:"meeting_location,omitempty"`
	RescheduleMessage string    `json:"reschedule_message,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type MeetingMessage struct {
	Id               int        `json:"id"`
	MeetingRequestId int        `json:"meeting_request_id"`
	SenderId         int        `json:"sender_id"`
	Content          string     `json:"message"`
	CreatedAt        time.Time  `json:"created_at"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
}

type Counts struct {
	PendingRequests int `json:"pending_requests"`
	UnreadMessages  int `json:"unread_messages"`
}

// Total is the badge number shown for the participant.
func (c Counts) Total() int {
	return c.PendingRequests + c.UnreadMessages
}
