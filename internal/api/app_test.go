package api

import (
	"net/http"
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/realtime"
	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMeetupApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	hub := realtime.NewHub(logger, &stats.MockStatsUpdater{})
	db := &database.MockMeetupRepository{}
	cfg := testConfig()

	app := NewMeetupApp(mux, logger, hub, db, testutil.TestStats(t), &stubGateway{}, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.Equal(t, logger, app.log, "expected logger to be set")
	assert.Equal(t, db, app.db, "expected db to be set")
	assert.Equal(t, hub, app.hub, "expected hub to be set")
	assert.Equal(t, cfg.SigningKey, app.signingKey, "expected signing key to be set")
	assert.Equal(t, cfg.AllowedOrigins, app.allowedOrigins)
	assert.Equal(t, cfg.ServerAddr, app.mux.Addr, "expected server address to match config")
	assert.NotNil(t, app.surveys)
	assert.NotNil(t, app.registrations)
	assert.NotNil(t, app.meetings)
	assert.NotNil(t, app.matcher)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, database.NewMemoryMeetupRepository(), nil)

	rr := do(t, app, http.MethodOptions, "/api/meetings", nil, 0,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
	)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
