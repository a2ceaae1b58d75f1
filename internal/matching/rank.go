// Package matching produces ranked pairings of event participants, asking
// an external suggestion service first and falling back to random local
// pairings for a known participant.
package matching

import (
	"math/rand/v2"
	"sort"
)

type Participant struct {
	Id        int      `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Interests []string `json:"interests"`
}

type Suggestion struct {
	Participant1Id int     `json:"participant1_id"`
	Participant2Id int     `json:"participant2_id"`
	Reason         string  `json:"reason"`
	Score          float64 `json:"compatibility_score"`
}

// Involves reports whether the participant is one side of the pair.
func (s Suggestion) Involves(id int) bool {
	return s.Participant1Id == id || s.Participant2Id == id
}

// Other returns the side of the pair that is not id.
func (s Suggestion) Other(id int) int {
	if s.Participant1Id == id {
		return s.Participant2Id
	}
	return s.Participant1Id
}

type pairKey struct{ lo, hi int }

func keyOf(s Suggestion) pairKey {
	if s.Participant1Id < s.Participant2Id {
		return pairKey{s.Participant1Id, s.Participant2Id}
	}
	return pairKey{s.Participant2Id, s.Participant1Id}
}

// Rank drops suggestions naming unknown participants or pairing someone with
// themselves, keeps the first of any repeated pair and, when focalId is set,
// stable-sorts pairs involving the focal participant first and then by
// descending score.
func Rank(suggestions []Suggestion, participants []Participant, focalId int) []Suggestion {
	known := make(map[int]bool, len(participants))
	for _, p := range participants {
		known[p.Id] = true
	}

	seen := make(map[pairKey]bool, len(suggestions))
	ranked := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if !known[s.Participant1Id] || !known[s.Participant2Id] || s.Participant1Id == s.Participant2Id {
			continue
		}
		if k := keyOf(s); !seen[k] {
			seen[k] = true
			ranked = append(ranked, s)
		}
	}

	if focalId != 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			fi, fj := ranked[i].Involves(focalId), ranked[j].Involves(focalId)
			if fi != fj {
				return fi
			}
			return ranked[i].Score > ranked[j].Score
		})
	}
	return ranked
}

// MaxFallbackSuggestions caps locally generated suggestions.
const MaxFallbackSuggestions = 3

// Fallback pairs the focal participant with up to MaxFallbackSuggestions
// randomly chosen others. Scores fall in [0.5, 0.8). It returns nothing
// when the focal participant is unknown or alone.
func Fallback(rng *rand.Rand, participants []Participant, focalId int, reasons []string) []Suggestion {
	others := make([]Participant, 0, len(participants))
	focalKnown := false
	for _, p := range participants {
		if p.Id == focalId {
			focalKnown = true
			continue
		}
		others = append(others, p)
	}

	suggestions := make([]Suggestion, 0, MaxFallbackSuggestions)
	if !focalKnown {
		return suggestions
	}

	for _, i := range rng.Perm(len(others)) {
		if len(suggestions) == MaxFallbackSuggestions {
			break
		}

		reason := ""
		if len(reasons) > 0 {
			reason = reasons[rng.IntN(len(reasons))]
		}
		suggestions = append(suggestions, Suggestion{
			Participant1Id: focalId,
			Participant2Id: others[i].Id,
			Reason:         reason,
			Score:          0.5 + rng.Float64()*0.3,
		})
	}
	return suggestions
}
