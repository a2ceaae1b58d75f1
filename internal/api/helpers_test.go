package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npezzotti/meetup/internal/config"
	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	suggestions []matching.Suggestion
	form        []database.Question
	err         error
}

func (g *stubGateway) SuggestMatches(ctx context.Context, req matching.Request) ([]matching.Suggestion, error) {
	return g.suggestions, g.err
}

func (g *stubGateway) GenerateForm(ctx context.Context, eventName, eventDescription string) ([]database.Question, error) {
	return g.form, g.err
}

func testConfig() *config.Config {
	return &config.Config{
		ServerAddr:     "localhost:8080",
		DatabaseDSN:    config.MemoryDSN,
		SigningKey:     []byte("test-signing-key"),
		AllowedOrigins: []string{"http://localhost:3000"},
		Locale:         config.DefaultLocale,
	}
}

func newTestApp(t *testing.T, db database.MeetupRepository, gw Gateway) *MeetupApp {
	t.Helper()
	if gw == nil {
		gw = &stubGateway{}
	}
	return NewMeetupApp(http.NewServeMux(), testutil.TestLogger(t), nil, db, testutil.TestStats(t), gw, testConfig())
}

// do sends a request through the full handler chain. A positive actorId
// attaches that participant's token cookie.
func do(t *testing.T, app *MeetupApp, method, path string, body any, actorId int, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	buf := &bytes.Buffer{}
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if actorId > 0 {
		token, err := app.createActorToken(actorId, 0, defaultJwtExpiration)
		require.NoError(t, err)
		req.AddCookie(createJwtCookie(token, defaultJwtExpiration))
	}

	rr := httptest.NewRecorder()
	app.mux.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

// findCookie returns the named cookie set on the response, or nil.
func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
