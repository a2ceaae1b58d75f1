package realtime

import (
	"errors"
	"slices"

	"github.com/npezzotti/meetup/internal/types"
)

var ErrUnknownTable = errors.New("unknown table")

var subscribableTables = []string{
	types.TableRegistrations,
	types.TableEventQuestions,
	types.TableMeetingRequests,
	types.TableMeetingMessages,
}

// Filter selects changes for a subscription. Zero values match anything;
// ParticipantId matches either party of a change.
type Filter struct {
	Table         string `json:"table"`
	EventId       int    `json:"event_id,omitempty"`
	ParticipantId int    `json:"participant_id,omitempty"`
	Type          string `json:"type,omitempty"`
}

func (f Filter) Validate() error {
	if !slices.Contains(subscribableTables, f.Table) {
		return ErrUnknownTable
	}
	switch f.Type {
	case "", types.ChangeAll, types.ChangeInsert, types.ChangeUpdate:
		return nil
	}
	return errors.New("unknown change type")
}

func (f Filter) Matches(c types.Change) bool {
	if f.Table != c.Table {
		return false
	}
	if f.Type != "" && f.Type != types.ChangeAll && f.Type != c.Type {
		return false
	}
	if f.EventId != 0 && f.EventId != c.EventId {
		return false
	}
	if f.ParticipantId != 0 && !c.Concerns(f.ParticipantId) {
		return false
	}
	return true
}
