package survey

import (
	"context"
	"fmt"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/types"
)

// Service stores question sets. Saving replaces the event's whole set; two
// organizers saving concurrently overwrite each other.
type Service struct {
	db  database.MeetupRepository
	pub types.Publisher
}

func NewService(db database.MeetupRepository, pub types.Publisher) *Service {
	return &Service{db: db, pub: pub}
}

// SaveQuestions validates the set and replaces the stored one. Nothing is
// written when validation fails. Each stored row is published as an insert
// once the replace has committed.
func (s *Service) SaveQuestions(ctx context.Context, eventId int, questions []database.Question) ([]database.Question, error) {
	prepared, err := Prepare(eventId, questions)
	if err != nil {
		return nil, err
	}

	saved, err := s.db.ReplaceQuestions(ctx, eventId, prepared)
	if err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}

	for _, q := range saved {
		s.pub.Publish(types.Change{
			Table:   types.TableEventQuestions,
			Type:    types.ChangeInsert,
			Row:     types.FromQuestion(q),
			EventId: eventId,
		})
	}
	return saved, nil
}

// Form returns the questions a registrant answers for the event and the
// mode they are stored in.
func (s *Service) Form(ctx context.Context, eventId int) ([]database.Question, Mode, error) {
	questions, err := s.db.ListQuestions(ctx, eventId)
	if err != nil {
		return nil, "", fmt.Errorf("list questions: %w", err)
	}

	mode := ModeFor(questions)
	if mode == ModeLegacy {
		return LegacyQuestions(), mode, nil
	}
	return questions, mode, nil
}
