package matching

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func people(ids ...int) []Participant {
	ps := make([]Participant, 0, len(ids))
	for _, id := range ids {
		ps = append(ps, Participant{Id: id})
	}
	return ps
}

func TestRank(t *testing.T) {
	in := []Suggestion{
		{Participant1Id: 2, Participant2Id: 3, Score: 0.9},
		{Participant1Id: 1, Participant2Id: 99, Score: 0.99},
		{Participant1Id: 4, Participant2Id: 1, Score: 0.6},
		{Participant1Id: 3, Participant2Id: 2, Score: 0.1},
		{Participant1Id: 1, Participant2Id: 2, Score: 0.8},
		{Participant1Id: 4, Participant2Id: 4, Score: 1},
		{Participant1Id: 3, Participant2Id: 4, Score: 0.95},
	}

	t.Run("with focal participant", func(t *testing.T) {
		got := Rank(in, people(1, 2, 3, 4), 1)
		assert.Equal(t, []Suggestion{
			{Participant1Id: 1, Participant2Id: 2, Score: 0.8},
			{Participant1Id: 4, Participant2Id: 1, Score: 0.6},
			{Participant1Id: 3, Participant2Id: 4, Score: 0.95},
			{Participant1Id: 2, Participant2Id: 3, Score: 0.9},
		}, got)
	})

	t.Run("without focal participant keeps order", func(t *testing.T) {
		got := Rank(in, people(1, 2, 3, 4), 0)
		assert.Equal(t, []Suggestion{
			{Participant1Id: 2, Participant2Id: 3, Score: 0.9},
			{Participant1Id: 4, Participant2Id: 1, Score: 0.6},
			{Participant1Id: 1, Participant2Id: 2, Score: 0.8},
			{Participant1Id: 3, Participant2Id: 4, Score: 0.95},
		}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Rank(nil, people(1), 1))
	})
}

func TestFallback(t *testing.T) {
	reasons := []string{"r1", "r2"}

	t.Run("two participants yield one pair", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		got := Fallback(rng, people(1, 2), 1, reasons)
		if assert.Len(t, got, 1) {
			assert.Equal(t, 1, got[0].Participant1Id)
			assert.Equal(t, 2, got[0].Participant2Id)
			assert.Contains(t, reasons, got[0].Reason)
		}
	})

	t.Run("alone yields nothing", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		assert.Empty(t, Fallback(rng, people(1), 1, reasons))
	})

	t.Run("unknown focal yields nothing", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		assert.Empty(t, Fallback(rng, people(1, 2, 3), 9, reasons))
	})

	t.Run("at most three distinct others with bounded scores", func(t *testing.T) {
		for seed := uint64(0); seed < 50; seed++ {
			rng := rand.New(rand.NewPCG(seed, seed+1))
			got := Fallback(rng, people(1, 2, 3, 4, 5, 6), 3, reasons)
			assert.Len(t, got, MaxFallbackSuggestions)

			seen := map[int]bool{}
			for _, s := range got {
				assert.Equal(t, 3, s.Participant1Id)
				assert.NotEqual(t, 3, s.Participant2Id)
				assert.False(t, seen[s.Participant2Id], "duplicate partner")
				seen[s.Participant2Id] = true
				assert.GreaterOrEqual(t, s.Score, 0.5)
				assert.Less(t, s.Score, 0.8)
			}
		}
	})
}
