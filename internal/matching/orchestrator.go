package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/i18n"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/stats"
)

var (
	ErrNoSuggestions = errors.New("no suggestions available")
	ErrNotInPair     = errors.New("only a member of the pair can act on a suggestion")
)

type Request struct {
	EventId      int           `json:"eventId"`
	Participants []Participant `json:"participants"`
	FocalId      int           `json:"currentUserId,omitempty"`
}

// Suggester is the external suggestion service.
type Suggester interface {
	SuggestMatches(ctx context.Context, req Request) ([]Suggestion, error)
}

type Proposer interface {
	Propose(ctx context.Context, actorId int, params meeting.ProposeParams) (database.MeetingRequest, error)
}

type Translator interface {
	T(locale, key string, data map[string]any) string
}

type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Fallback    bool         `json:"fallback"`
}

func (r Result) clone() Result {
	r.Suggestions = append([]Suggestion{}, r.Suggestions...)
	return r
}

type cacheKey struct {
	eventId int
	viewer  int
}

// Orchestrator serves suggestions per event and viewer and remembers the
// last list shown so acted-on suggestions can be dismissed.
type Orchestrator struct {
	db        database.MeetupRepository
	suggester Suggester
	proposer  Proposer
	tr        Translator
	locale    string
	log       *log.Logger
	stats     stats.StatsProvider

	mu    sync.Mutex
	rng   *rand.Rand
	cache map[cacheKey]Result
}

func NewOrchestrator(db database.MeetupRepository, suggester Suggester, proposer Proposer, tr Translator, locale string, logger *log.Logger, st stats.StatsProvider) *Orchestrator {
	return &Orchestrator{
		db:        db,
		suggester: suggester,
		proposer:  proposer,
		tr:        tr,
		locale:    locale,
		log:       logger,
		stats:     st,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		cache:     make(map[cacheKey]Result),
	}
}

// SetRand replaces the random source used for fallback suggestions.
func (o *Orchestrator) SetRand(rng *rand.Rand) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rng = rng
}

// Participants loads the event's participants as sent to the suggestion
// service.
func (o *Orchestrator) Participants(ctx context.Context, eventId int) ([]Participant, error) {
	regs, err := o.db.ListRegistrations(ctx, eventId)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	participants := make([]Participant, 0, len(regs))
	for _, r := range regs {
		interests := r.Interests
		if interests == nil {
			interests = []string{}
		}
		participants = append(participants, Participant{Id: r.Id, Name: r.Name, Role: r.Role, Interests: interests})
	}
	return participants, nil
}

// Suggest returns ranked suggestions for the event, seen from focalId (zero
// for an organizer view). A cached list is returned unless refresh is set.
func (o *Orchestrator) Suggest(ctx context.Context, eventId, focalId int, refresh bool) (Result, error) {
	key := cacheKey{eventId, focalId}
	if !refresh {
		o.mu.Lock()
		cached, ok := o.cache[key]
		o.mu.Unlock()
		if ok {
			return cached.clone(), nil
		}
	}

	participants, err := o.Participants(ctx, eventId)
	if err != nil {
		return Result{}, err
	}

	var res Result
	suggestions, err := o.suggester.SuggestMatches(ctx, Request{EventId: eventId, Participants: participants, FocalId: focalId})
	if err != nil {
		o.log.Printf("suggest matches for event %d: %v", eventId, err)
		if focalId == 0 {
			return Result{}, fmt.Errorf("%w: %w", ErrNoSuggestions, err)
		}

		o.mu.Lock()
		fallback := Fallback(o.rng, participants, focalId, o.reasons())
		o.mu.Unlock()
		if len(fallback) == 0 {
			return Result{}, fmt.Errorf("%w: %w", ErrNoSuggestions, err)
		}

		o.stats.Incr(stats.SuggestionFallbacks)
		res = Result{Suggestions: fallback, Fallback: true}
	} else {
		res = Result{Suggestions: Rank(suggestions, participants, focalId)}
	}

	o.mu.Lock()
	o.cache[key] = res.clone()
	o.mu.Unlock()
	return res, nil
}

func (o *Orchestrator) reasons() []string {
	reasons := make([]string, 0, len(i18n.FallbackReasons))
	for _, key := range i18n.FallbackReasons {
		reasons = append(reasons, o.tr.T(o.locale, key, nil))
	}
	return reasons
}

// Accept turns a suggestion into a pending meeting request from the actor
// to the other member of the pair, carrying the reason as its message. The
// pair is then dismissed from every cached list of the event.
func (o *Orchestrator) Accept(ctx context.Context, actorId, eventId int, s Suggestion) (database.MeetingRequest, error) {
	if !s.Involves(actorId) {
		return database.MeetingRequest{}, ErrNotInPair
	}

	req, err := o.proposer.Propose(ctx, actorId, meeting.ProposeParams{
		EventId:     eventId,
		TargetId:    s.Other(actorId),
		Message:     s.Reason,
		AiSuggested: true,
	})
	if err != nil {
		return database.MeetingRequest{}, err
	}

	o.Dismiss(eventId, s)
	return req, nil
}

// Dismiss removes the pair from the event's cached lists.
func (o *Orchestrator) Dismiss(eventId int, s Suggestion) {
	k := keyOf(s)

	o.mu.Lock()
	defer o.mu.Unlock()
	for ck, res := range o.cache {
		if ck.eventId != eventId {
			continue
		}
		kept := res.Suggestions[:0]
		for _, x := range res.Suggestions {
			if keyOf(x) != k {
				kept = append(kept, x)
			}
		}
		res.Suggestions = kept
		o.cache[ck] = res
	}
}
