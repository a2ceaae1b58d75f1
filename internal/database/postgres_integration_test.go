package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPgTestRepository connects to the database named by MEETUP_TEST_DSN and
// applies the migrations. Tests using it are skipped when it is unset.
func newPgTestRepository(t *testing.T) *PgMeetupRepository {
	t.Helper()
	dsn := os.Getenv("MEETUP_TEST_DSN")
	if dsn == "" {
		t.Skip("MEETUP_TEST_DSN not set")
	}

	require.NoError(t, RunMigrations(log.New(os.Stderr, "[test] ", log.LstdFlags), dsn))

	repo, err := NewPgMeetupRepository(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createPgTestEvent(t *testing.T, repo *PgMeetupRepository) Event {
	t.Helper()
	event, err := repo.CreateEvent(context.Background(), CreateEventParams{
		Name:              "Demo Day",
		ShareCode:         fmt.Sprintf("t%d", time.Now().UnixNano()),
		OrganizerCodeHash: "hash",
		MeetingDuration:   15,
		CreatorName:       "Organizer",
	})
	require.NoError(t, err)
	return event
}

func TestPgQuestionsAndRegistrations(t *testing.T) {
	repo := newPgTestRepository(t)
	ctx := context.Background()
	event := createPgTestEvent(t, repo)

	saved, err := repo.ReplaceQuestions(ctx, event.Id, []Question{
		{Text: "Bio", FieldType: "short_text", SortOrder: 0},
		{Text: "Track", FieldType: "single_choice", Options: []string{"AI", "Web"}, SortOrder: 1},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	listed, err := repo.ListQuestions(ctx, event.Id)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Empty(t, listed[0].Options)
	assert.Equal(t, []string{"AI", "Web"}, listed[1].Options)

	reg, err := repo.CreateRegistration(ctx, Registration{EventId: event.Id, Name: "Dana"}, []QuestionResponse{
		{QuestionId: saved[0].Id, Value: []byte(`"synths"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, event.Id, reg.EventId)

	responses, err := repo.ListResponses(ctx, reg.Id)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.JSONEq(t, `"synths"`, string(responses[0].Value))

	legacy, err := repo.CreateRegistration(ctx, Registration{Name: "Lee", Interests: []string{"Music"}}, nil)
	require.NoError(t, err)
	got, err := repo.GetRegistration(ctx, legacy.Id)
	require.NoError(t, err)
	assert.Zero(t, got.EventId)
	assert.Equal(t, []string{"Music"}, got.Interests)
}

func TestPgMeetingRequests(t *testing.T) {
	repo := newPgTestRepository(t)
	ctx := context.Background()
	event := createPgTestEvent(t, repo)

	a, err := repo.CreateRegistration(ctx, Registration{EventId: event.Id, Name: "Alice"}, nil)
	require.NoError(t, err)
	b, err := repo.CreateRegistration(ctx, Registration{EventId: event.Id, Name: "Bob"}, nil)
	require.NoError(t, err)

	req, err := repo.CreateMeetingRequest(ctx, MeetingRequest{EventId: event.Id, RequesterId: a.Id, TargetId: b.Id, Status: "pending"}, testActive)
	require.NoError(t, err)

	_, err = repo.CreateMeetingRequest(ctx, MeetingRequest{EventId: event.Id, RequesterId: b.Id, TargetId: a.Id, Status: "pending"}, testActive)
	assert.ErrorIs(t, err, ErrDuplicateActiveRequest)

	req.Status = "accepted"
	accepted, err := repo.UpdateMeetingRequest(ctx, req, "pending")
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Status)

	req.Status = "declined"
	_, err = repo.UpdateMeetingRequest(ctx, req, "pending")
	assert.ErrorIs(t, err, ErrStatusChanged)

	_, err = repo.UpdateMeetingRequest(ctx, MeetingRequest{Id: 1 << 30, Status: "accepted"}, "pending")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindActiveMeetingRequest(ctx, event.Id, b.Id, a.Id, testActive)
	require.NoError(t, err)
	assert.Equal(t, req.Id, found.Id)

	_, err = repo.CreateMeetingMessage(ctx, MeetingMessage{MeetingRequestId: req.Id, SenderId: a.Id, Content: "hello"})
	require.NoError(t, err)

	unread, err := repo.CountUnreadMessages(ctx, event.Id, b.Id, []string{"accepted"})
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	n, err := repo.MarkMessagesRead(ctx, req.Id, b.Id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.MarkMessagesRead(ctx, req.Id, b.Id, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
