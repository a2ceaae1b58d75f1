package survey

import (
	"context"
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/npezzotti/meetup/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleForm() []database.Question {
	return []database.Question{
		{Text: "What are you building?", FieldType: string(LongText), Required: true, SortOrder: 3},
		{Text: "Track", FieldType: string(SingleChoice), Options: []string{"AI", "Web", "Hardware"}, SortOrder: 8},
		{Text: "Rate the venue", FieldType: string(Rating), SortOrder: 8},
	}
}

func TestSaveQuestionsIsStructurallyIdempotent(t *testing.T) {
	repo := database.NewMemoryMeetupRepository()
	svc := NewService(repo, types.Discard)
	ctx := context.Background()

	_, err := svc.SaveQuestions(ctx, 1, sampleForm())
	require.NoError(t, err)
	first, err := repo.ListQuestions(ctx, 1)
	require.NoError(t, err)

	_, err = svc.SaveQuestions(ctx, 1, sampleForm())
	require.NoError(t, err)
	second, err := repo.ListQuestions(ctx, 1)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, i, second[i].SortOrder)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].FieldType, second[i].FieldType)
		assert.Equal(t, first[i].Options, second[i].Options)
		assert.Equal(t, first[i].Required, second[i].Required)
		assert.Equal(t, first[i].SortOrder, second[i].SortOrder)
	}
}

func TestSaveQuestionsRejectsInvalidSetWithoutWriting(t *testing.T) {
	repo := new(database.MockMeetupRepository)
	pub := new(testutil.ChangeRecorder)
	svc := NewService(repo, pub)

	_, err := svc.SaveQuestions(context.Background(), 1, []database.Question{
		{Text: "Pick", FieldType: string(SingleChoice), Options: []string{"only one"}},
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	repo.AssertNotCalled(t, "ReplaceQuestions", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, pub.Changes())
}

func TestSaveQuestionsPublishesStoredRows(t *testing.T) {
	repo := database.NewMemoryMeetupRepository()
	pub := new(testutil.ChangeRecorder)
	svc := NewService(repo, pub)

	saved, err := svc.SaveQuestions(context.Background(), 4, sampleForm())
	require.NoError(t, err)

	changes := pub.Changes()
	require.Len(t, changes, len(saved))
	for i, c := range changes {
		assert.Equal(t, types.TableEventQuestions, c.Table)
		assert.Equal(t, types.ChangeInsert, c.Type)
		assert.Equal(t, 4, c.EventId)
		assert.Equal(t, types.FromQuestion(saved[i]), c.Row)
	}
}

func TestForm(t *testing.T) {
	repo := database.NewMemoryMeetupRepository()
	svc := NewService(repo, types.Discard)
	ctx := context.Background()

	questions, mode, err := svc.Form(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, ModeLegacy, mode)
	assert.Equal(t, LegacyQuestions(), questions)

	_, err = svc.SaveQuestions(ctx, 3, sampleForm())
	require.NoError(t, err)

	questions, mode, err = svc.Form(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, ModeCustom, mode)
	assert.Len(t, questions, 3)
}
