// Package registration creates and updates event participants, recognising
// returning registrants by name.
package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/survey"
	"github.com/npezzotti/meetup/internal/types"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNotOwner     = errors.New("registration belongs to another participant")
)

type Submission struct {
	EventId int
	// ExistingId selects a returning registrant. The submission then
	// updates that record instead of inserting one.
	ExistingId int
	Name       string
	Role       string
	Contact    string
	FindMe     string
	Answers    map[int]any
}

type Profile struct {
	Registration database.Registration
	Mode         survey.Mode
	Answers      []survey.RenderedAnswer
}

type Service struct {
	db    database.MeetupRepository
	log   *log.Logger
	pub   types.Publisher
	stats stats.StatsProvider
}

func NewService(db database.MeetupRepository, logger *log.Logger, pub types.Publisher, stats stats.StatsProvider) *Service {
	return &Service{db: db, log: logger, pub: pub, stats: stats}
}

// Resolver loads the name resolver for an event.
func (s *Service) Resolver(ctx context.Context, eventId int) *Resolver {
	return LoadResolver(ctx, s.db, s.log, eventId)
}

// Register stores a submission. created is false when an existing
// registration was updated in place.
func (s *Service) Register(ctx context.Context, sub Submission) (reg database.Registration, created bool, err error) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return database.Registration{}, false, ErrNameRequired
	}

	if sub.EventId != 0 {
		if _, err := s.db.GetEvent(ctx, sub.EventId); err != nil {
			return database.Registration{}, false, err
		}
	}

	reg = database.Registration{
		EventId: sub.EventId,
		Name:    name,
		Role:    string(ParseRole(sub.Role)),
		Contact: strings.TrimSpace(sub.Contact),
		FindMe:  strings.TrimSpace(sub.FindMe),
	}

	responses, err := s.applyAnswers(ctx, &reg, sub.Answers)
	if err != nil {
		return database.Registration{}, false, err
	}

	if existing, ok := s.existing(ctx, sub); ok {
		reg.Id = existing.Id
		reg.MatchId = existing.MatchId
		reg, err = s.db.UpdateRegistration(ctx, reg, responses)
		if err != nil {
			return database.Registration{}, false, fmt.Errorf("update registration: %w", err)
		}
		s.publish(types.ChangeUpdate, reg)
		return reg, false, nil
	}

	reg, err = s.db.CreateRegistration(ctx, reg, responses)
	if err != nil {
		return database.Registration{}, false, fmt.Errorf("create registration: %w", err)
	}
	s.stats.Incr(stats.Registrations)
	s.publish(types.ChangeInsert, reg)
	return reg, true, nil
}

// existing returns the registration a submission points at. Unknown ids and
// ids from another event fall back to an insert.
func (s *Service) existing(ctx context.Context, sub Submission) (database.Registration, bool) {
	if sub.ExistingId == 0 {
		return database.Registration{}, false
	}

	reg, err := s.db.GetRegistration(ctx, sub.ExistingId)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.log.Printf("get registration %d: %v", sub.ExistingId, err)
		}
		return database.Registration{}, false
	}
	if reg.EventId != sub.EventId {
		return database.Registration{}, false
	}
	return reg, true
}

// applyAnswers validates answers against the event's form. Legacy answers
// are written onto reg; custom answers are returned as responses. The
// returned slice is never nil so updates always replace stored responses.
func (s *Service) applyAnswers(ctx context.Context, reg *database.Registration, answers map[int]any) ([]database.QuestionResponse, error) {
	questions, err := s.db.ListQuestions(ctx, reg.EventId)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	if survey.ModeFor(questions) == survey.ModeLegacy {
		if err := survey.ApplyLegacyAnswers(reg, answers); err != nil {
			return nil, err
		}
		return []database.QuestionResponse{}, nil
	}

	responses, err := survey.ValidateAnswers(questions, answers)
	if err != nil {
		return nil, err
	}
	reg.Interests = choiceInterests(questions, responses)
	return responses, nil
}

// choiceInterests collects the picked options of choice questions in
// question order. They stand in for legacy interests when matching.
func choiceInterests(questions []database.Question, responses []database.QuestionResponse) []string {
	byQuestion := make(map[int]json.RawMessage, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionId] = r.Value
	}

	interests := make([]string, 0)
	for _, q := range questions {
		ft := survey.FieldType(q.FieldType)
		value, ok := byQuestion[q.Id]
		if !ft.IsChoice() || !ok {
			continue
		}

		decoded, err := survey.DecodeValue(ft, value)
		if err != nil {
			continue
		}
		switch v := decoded.(type) {
		case string:
			interests = append(interests, v)
		case []string:
			interests = append(interests, v...)
		}
	}
	return interests
}

// EditAnswers replaces the answers of the actor's own registration.
func (s *Service) EditAnswers(ctx context.Context, actorId, registrationId int, answers map[int]any) (database.Registration, error) {
	if actorId != registrationId {
		return database.Registration{}, ErrNotOwner
	}

	reg, err := s.db.GetRegistration(ctx, registrationId)
	if err != nil {
		return database.Registration{}, err
	}

	responses, err := s.applyAnswers(ctx, &reg, answers)
	if err != nil {
		return database.Registration{}, err
	}

	reg, err = s.db.UpdateRegistration(ctx, reg, responses)
	if err != nil {
		return database.Registration{}, fmt.Errorf("update registration: %w", err)
	}
	s.publish(types.ChangeUpdate, reg)
	return reg, nil
}

// Profile returns a registration with its answers rendered for display.
func (s *Service) Profile(ctx context.Context, registrationId int) (Profile, error) {
	reg, err := s.db.GetRegistration(ctx, registrationId)
	if err != nil {
		return Profile{}, err
	}

	questions, err := s.db.ListQuestions(ctx, reg.EventId)
	if err != nil {
		return Profile{}, fmt.Errorf("list questions: %w", err)
	}

	if survey.ModeFor(questions) == survey.ModeLegacy {
		return Profile{Registration: reg, Mode: survey.ModeLegacy, Answers: survey.RenderLegacy(reg)}, nil
	}

	responses, err := s.db.ListResponses(ctx, reg.Id)
	if err != nil {
		return Profile{}, fmt.Errorf("list responses: %w", err)
	}
	return Profile{Registration: reg, Mode: survey.ModeCustom, Answers: survey.Render(questions, responses)}, nil
}

// WelcomeBack confirms that a returning registrant belongs to the event.
func (s *Service) WelcomeBack(ctx context.Context, eventId, registrationId int) (database.Registration, error) {
	reg, err := s.db.GetRegistration(ctx, registrationId)
	if err != nil {
		return database.Registration{}, err
	}
	if reg.EventId != eventId {
		return database.Registration{}, database.ErrNotFound
	}
	return reg, nil
}

func (s *Service) Participants(ctx context.Context, eventId int) ([]database.Registration, error) {
	return s.db.ListRegistrations(ctx, eventId)
}

func (s *Service) publish(changeType string, reg database.Registration) {
	s.pub.Publish(types.Change{
		Table:          types.TableRegistrations,
		Type:           changeType,
		Row:            types.FromRegistration(reg),
		EventId:        reg.EventId,
		ParticipantIds: []int{reg.Id},
	})
}
