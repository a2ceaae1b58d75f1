package registration

import (
	"context"
	"log"
	"strings"

	"github.com/npezzotti/meetup/internal/database"
	"golang.org/x/text/unicode/norm"
)

// MinQueryLength is the number of typed characters before suggestions are
// offered.
const MinQueryLength = 3

type Candidate struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// Resolver matches a typed name against the participants already
// registered for an event. The list is loaded once.
type Resolver struct {
	candidates []Candidate
}

// LoadResolver fetches the event's participants. A failed fetch is logged
// and yields an empty resolver so registration always proceeds as a fresh
// insert.
func LoadResolver(ctx context.Context, db database.MeetupRepository, logger *log.Logger, eventId int) *Resolver {
	regs, err := db.ListRegistrations(ctx, eventId)
	if err != nil {
		logger.Printf("load registrations for event %d: %v", eventId, err)
		return NewResolver(nil)
	}

	candidates := make([]Candidate, 0, len(regs))
	for _, r := range regs {
		candidates = append(candidates, Candidate{Id: r.Id, Name: r.Name})
	}
	return NewResolver(candidates)
}

func NewResolver(candidates []Candidate) *Resolver {
	return &Resolver{candidates: candidates}
}

// Suggest returns candidates whose name contains the query, ignoring case,
// in load order. Queries shorter than MinQueryLength match nothing.
func (r *Resolver) Suggest(query string) []Candidate {
	q := fold(query)
	matches := make([]Candidate, 0)
	if len([]rune(q)) < MinQueryLength {
		return matches
	}

	for _, c := range r.candidates {
		if strings.Contains(fold(c.Name), q) {
			matches = append(matches, c)
		}
	}
	return matches
}

// fold normalizes a name for comparison so that composed and decomposed
// accents match.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

func (r *Resolver) Lookup(id int) (Candidate, bool) {
	for _, c := range r.candidates {
		if c.Id == id {
			return c, true
		}
	}
	return Candidate{}, false
}
