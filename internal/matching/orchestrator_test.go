package matching

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/i18n"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/npezzotti/meetup/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) SuggestMatches(ctx context.Context, req Request) ([]Suggestion, error) {
	args := m.Called(ctx, req)
	if s, ok := args.Get(0).([]Suggestion); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type fixture struct {
	repo      *database.MemoryMeetupRepository
	suggester *mockSuggester
	orch      *Orchestrator
	eventId   int
	ids       []int
}

func newFixture(t *testing.T, names ...string) fixture {
	ctx := context.Background()
	repo := database.NewMemoryMeetupRepository()
	logger := testutil.TestLogger(t)
	st := testutil.TestStats(t)

	event, err := repo.CreateEvent(ctx, database.CreateEventParams{Name: "Demo Day", ShareCode: "demo"})
	require.NoError(t, err)

	ids := make([]int, 0, len(names))
	for _, name := range names {
		reg, err := repo.CreateRegistration(ctx, database.Registration{EventId: event.Id, Name: name, Role: "builder"}, nil)
		require.NoError(t, err)
		ids = append(ids, reg.Id)
	}

	suggester := new(mockSuggester)
	meet := meeting.NewService(repo, logger, types.Discard, st)
	orch := NewOrchestrator(repo, suggester, meet, i18n.NewTranslator(logger, "en"), "en", logger, st)
	orch.SetRand(rand.New(rand.NewPCG(7, 7)))

	return fixture{repo: repo, suggester: suggester, orch: orch, eventId: event.Id, ids: ids}
}

func TestSuggestRanksServiceResult(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	a, b, c := f.ids[0], f.ids[1], f.ids[2]

	f.suggester.On("SuggestMatches", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.EventId == f.eventId && r.FocalId == a && len(r.Participants) == 3
	})).Return([]Suggestion{
		{Participant1Id: b, Participant2Id: c, Reason: "both build", Score: 0.9},
		{Participant1Id: a, Participant2Id: 12345, Reason: "ghost", Score: 1},
		{Participant1Id: c, Participant2Id: a, Reason: "same vibe", Score: 0.7},
	}, nil).Once()

	res, err := f.orch.Suggest(context.Background(), f.eventId, a, true)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	require.Len(t, res.Suggestions, 2)
	assert.Equal(t, "same vibe", res.Suggestions[0].Reason)
	assert.Equal(t, "both build", res.Suggestions[1].Reason)

	cached, err := f.orch.Suggest(context.Background(), f.eventId, a, false)
	require.NoError(t, err)
	assert.Equal(t, res.Suggestions, cached.Suggestions)
	f.suggester.AssertExpectations(t)
}

func TestSuggestFallback(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	f.suggester.On("SuggestMatches", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()

	res, err := f.orch.Suggest(context.Background(), f.eventId, f.ids[0], true)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, f.ids[0], res.Suggestions[0].Participant1Id)
	assert.Equal(t, f.ids[1], res.Suggestions[0].Participant2Id)
	assert.NotEmpty(t, res.Suggestions[0].Reason)

	cached, err := f.orch.Suggest(context.Background(), f.eventId, f.ids[0], false)
	require.NoError(t, err)
	assert.True(t, cached.Fallback, "cached fallback list keeps its flag")
	assert.Equal(t, res.Suggestions, cached.Suggestions)
	f.suggester.AssertNumberOfCalls(t, "SuggestMatches", 1)
}

func TestSuggestFailures(t *testing.T) {
	cause := errors.New("quota exhausted")

	t.Run("single participant", func(t *testing.T) {
		f := newFixture(t, "Alice")
		f.suggester.On("SuggestMatches", mock.Anything, mock.Anything).Return(nil, cause)

		res, err := f.orch.Suggest(context.Background(), f.eventId, f.ids[0], true)
		assert.ErrorIs(t, err, ErrNoSuggestions)
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, res.Suggestions)
	})

	t.Run("no focal participant", func(t *testing.T) {
		f := newFixture(t, "Alice", "Bob", "Carol")
		f.suggester.On("SuggestMatches", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := f.orch.Suggest(context.Background(), f.eventId, 0, true)
		assert.ErrorIs(t, err, ErrNoSuggestions)
	})
}

func TestAcceptCreatesPendingRequestAndDismisses(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	a, b, c := f.ids[0], f.ids[1], f.ids[2]
	ctx := context.Background()

	pick := Suggestion{Participant1Id: b, Participant2Id: a, Reason: "you both love Go", Score: 0.9}
	f.suggester.On("SuggestMatches", mock.Anything, mock.Anything).Return([]Suggestion{
		pick,
		{Participant1Id: a, Participant2Id: c, Reason: "design chat", Score: 0.5},
	}, nil).Once()

	_, err := f.orch.Suggest(ctx, f.eventId, a, true)
	require.NoError(t, err)

	_, err = f.orch.Accept(ctx, c, f.eventId, pick)
	assert.ErrorIs(t, err, ErrNotInPair)

	req, err := f.orch.Accept(ctx, a, f.eventId, pick)
	require.NoError(t, err)
	assert.Equal(t, string(meeting.StatusPending), req.Status)
	assert.Equal(t, a, req.RequesterId)
	assert.Equal(t, b, req.TargetId)
	assert.Equal(t, "you both love Go", req.Message)
	assert.True(t, req.AiSuggested)

	res, err := f.orch.Suggest(ctx, f.eventId, a, false)
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "design chat", res.Suggestions[0].Reason)

	_, err = f.orch.Accept(ctx, a, f.eventId, pick)
	assert.ErrorIs(t, err, meeting.ErrActiveRequestExists)
}
