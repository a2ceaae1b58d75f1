package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResolverSuggest(t *testing.T) {
	r := NewResolver([]Candidate{
		{Id: 3, Name: "Alice Smith"},
		{Id: 1, Name: "Malice"},
		{Id: 2, Name: "Bob"},
	})

	tcases := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "too short", query: "al", want: []int{}},
		{name: "case insensitive substring in store order", query: "ALI", want: []int{3, 1}},
		{name: "trimmed", query: "  bob ", want: []int{2}},
		{name: "no match", query: "carol", want: []int{}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := make([]int, 0)
			for _, c := range r.Suggest(tc.query) {
				got = append(got, c.Id)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolverLookup(t *testing.T) {
	r := NewResolver([]Candidate{{Id: 7, Name: "Grace"}})

	c, ok := r.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, "Grace", c.Name)

	_, ok = r.Lookup(8)
	assert.False(t, ok)
}

func TestLoadResolverFailsSilently(t *testing.T) {
	repo := new(database.MockMeetupRepository)
	repo.On("ListRegistrations", mock.Anything, 4).Return(nil, errors.New("connection refused"))

	r := LoadResolver(context.Background(), repo, testutil.TestLogger(t), 4)
	assert.NotNil(t, r)
	assert.Empty(t, r.Suggest("anyone"))
	repo.AssertExpectations(t)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleFounder, ParseRole(" Founder "))
	assert.Equal(t, RoleCreative, ParseRole("creative"))
	assert.Equal(t, DefaultRole, ParseRole("wizard"))
	assert.Equal(t, DefaultRole, ParseRole(""))
}

func TestResolverSuggestNormalizesAccents(t *testing.T) {
	r := NewResolver([]Candidate{{Id: 1, Name: "Zoë Martin"}})

	assert.Len(t, r.Suggest("ZOË"), 1)
	assert.Len(t, r.Suggest("zoe\u0308"), 1, "decomposed input matches")
}
