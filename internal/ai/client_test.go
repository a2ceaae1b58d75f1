package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMatches(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, suggestMatchesPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"suggestions":[{"participant1_id":1,"participant2_id":2,"reason":"both love Go","compatibility_score":0.87}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", testutil.TestLogger(t))
	suggestions, err := c.SuggestMatches(context.Background(), matching.Request{
		EventId:      4,
		Participants: []matching.Participant{{Id: 1, Name: "Alice", Role: "builder", Interests: []string{"Go"}}},
		FocalId:      1,
	})

	require.NoError(t, err)
	assert.Equal(t, []matching.Suggestion{{Participant1Id: 1, Participant2Id: 2, Reason: "both love Go", Score: 0.87}}, suggestions)
	assert.Equal(t, float64(4), got["eventId"])
	assert.Equal(t, float64(1), got["currentUserId"])
	assert.Len(t, got["participants"], 1)
}

func TestGatewayErrors(t *testing.T) {
	tcases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, ErrRateLimited},
		{"quota exhausted", http.StatusPaymentRequired, `{"error":"no credits"}`, ErrQuotaExhausted},
		{"error body", http.StatusOK, `{"error":"model failed"}`, nil},
		{"server error", http.StatusInternalServerError, `oops`, nil},
		{"bad json", http.StatusOK, `{"suggestions":`, nil},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", testutil.TestLogger(t))
			_, err := c.SuggestMatches(context.Background(), matching.Request{})
			assert.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient("", "", testutil.TestLogger(t))

	_, err := c.SuggestMatches(context.Background(), matching.Request{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.GenerateForm(context.Background(), "Demo Day", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, generateFormPath, r.URL.Path)

		var in generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Demo Day", in.EventName)

		w.Write([]byte(`{"questions":[
			{"question_text":"What are you building?","field_type":"long_text","is_required":true},
			{"question_text":"Track","field_type":"single_choice","options":["AI","Web"]}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testutil.TestLogger(t))
	questions, err := c.GenerateForm(context.Background(), "Demo Day", "A hackathon demo day")

	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.True(t, questions[0].Required)
	assert.Equal(t, 1, questions[1].SortOrder)
	assert.Equal(t, []string{"AI", "Web"}, questions[1].Options)
}
