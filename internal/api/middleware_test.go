package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_PanicRecovery(t *testing.T) {
	buf := &bytes.Buffer{}
	app := &MeetupApp{
		log: testutil.TestLogger(t),
	}

	app.log.SetOutput(buf)

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("test panic"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(panicHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
	assert.Contains(t, buf.String(), "panic: test panic")
}

func Test_errorHandler_NoPanic(t *testing.T) {
	app := &MeetupApp{}

	called := false
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	handler := app.errorHandler(okHandler)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.True(t, called, "expected handler to be called")
}

func Test_authMiddleware(t *testing.T) {
	app := newTestApp(t, database.NewMemoryMeetupRepository(), nil)

	buf := &bytes.Buffer{}
	app.log.SetOutput(buf)

	tokenHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ParticipantId(r.Context())
		if !ok || id != 1 {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := app.createActorToken(1, 0, defaultJwtExpiration)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(createJwtCookie(token, defaultJwtExpiration))
		app.authMiddleware(tokenHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
		assert.Equal(t, "no-store, no-cache, must-revalidate, private", rr.Header().Get("Cache-Control"))
	})

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		app.authMiddleware(tokenHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{
			Name:  tokenCookieKey,
			Value: "invalid-token",
		})
		app.authMiddleware(tokenHandler).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, buf.String(), "failed to extract participant id from token")
	})
}

func Test_organizerMiddleware(t *testing.T) {
	hash, err := hashOrganizerCode("secret-code")
	require.NoError(t, err)

	tcases := []struct {
		name       string
		path       string
		code       string
		event      database.Event
		eventErr   error
		callsDb    bool
		wantStatus int
	}{
		{
			name:       "valid code",
			path:       "1",
			code:       "secret-code",
			event:      database.Event{Id: 1, OrganizerCodeHash: hash},
			callsDb:    true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong code",
			path:       "1",
			code:       "guess",
			event:      database.Event{Id: 1, OrganizerCodeHash: hash},
			callsDb:    true,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing code",
			path:       "1",
			event:      database.Event{Id: 1, OrganizerCodeHash: hash},
			callsDb:    true,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown event",
			path:       "1",
			code:       "secret-code",
			eventErr:   database.ErrNotFound,
			callsDb:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			path:       "abc",
			code:       "secret-code",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			db := &database.MockMeetupRepository{}
			defer db.AssertExpectations(t)
			if tc.callsDb {
				db.On("GetEvent", mock.Anything, 1).Return(tc.event, tc.eventErr).Once()
			}

			app := newTestApp(t, db, nil)
			next := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/events/"+tc.path+"/questions", nil)
			req.SetPathValue("id", tc.path)
			if tc.code != "" {
				req.Header.Set(organizerCodeHeader, tc.code)
			}
			app.organizerMiddleware(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}
