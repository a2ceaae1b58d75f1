package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/npezzotti/meetup/internal/ai"
	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/registration"
	"github.com/npezzotti/meetup/internal/survey"
	"github.com/stretchr/testify/assert"
)

func TestErrorFor(t *testing.T) {
	tcases := []struct {
		name string
		err  error
		want int
	}{
		{name: "question set", err: &survey.ValidationError{Index: 0, Reason: "question text is required"}, want: http.StatusBadRequest},
		{name: "wrapped question set", err: fmt.Errorf("save: %w", &survey.ValidationError{Reason: "x"}), want: http.StatusBadRequest},
		{name: "invalid answer", err: survey.ErrInvalidAnswer, want: http.StatusBadRequest},
		{name: "name required", err: registration.ErrNameRequired, want: http.StatusBadRequest},
		{name: "invalid slot", err: fmt.Errorf("%w: %q", meeting.ErrInvalidSlot, "08:00"), want: http.StatusBadRequest},
		{name: "self request", err: meeting.ErrSelfRequest, want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("get: %w", database.ErrNotFound), want: http.StatusNotFound},
		{name: "not a party", err: meeting.ErrNotParticipant, want: http.StatusForbidden},
		{name: "not owner", err: registration.ErrNotOwner, want: http.StatusForbidden},
		{name: "not in pair", err: matching.ErrNotInPair, want: http.StatusForbidden},
		{name: "transition not allowed", err: fmt.Errorf("%w: target cannot schedule", meeting.ErrNotAllowed), want: http.StatusConflict},
		{name: "concurrent update", err: meeting.ErrConflict, want: http.StatusConflict},
		{name: "active request", err: meeting.ErrActiveRequestExists, want: http.StatusConflict},
		{name: "chat closed", err: meeting.ErrChatClosed, want: http.StatusConflict},
		{name: "rate limited", err: fmt.Errorf("%w: %w", matching.ErrNoSuggestions, ai.ErrRateLimited), want: http.StatusTooManyRequests},
		{name: "quota", err: ai.ErrQuotaExhausted, want: http.StatusPaymentRequired},
		{name: "no suggestions", err: fmt.Errorf("%w: %w", matching.ErrNoSuggestions, ai.ErrUnavailable), want: http.StatusServiceUnavailable},
		{name: "unexpected", err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := errorFor(tc.err)
			assert.Equal(t, tc.want, got.StatusCode)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestApiError(t *testing.T) {
	err := NewInternalServerError(assert.AnError)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), assert.AnError.Error())

	assert.Equal(t, "not found", NewNotFoundError().Error())
}
