// Package api serves the HTTP and websocket surface of the meetup service.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/npezzotti/meetup/internal/config"
	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/i18n"
	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/realtime"
	"github.com/npezzotti/meetup/internal/registration"
	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/survey"
	"github.com/npezzotti/meetup/internal/types"
	"github.com/teris-io/shortid"
)

// Gateway is the external AI service used for suggestions and form drafts.
type Gateway interface {
	matching.Suggester
	GenerateForm(ctx context.Context, eventName, eventDescription string) ([]database.Question, error)
}

type MeetupApp struct {
	log            *log.Logger
	db             database.MeetupRepository
	mux            *http.Server
	hub            *realtime.Hub
	stats          stats.StatsProvider
	gateway        Gateway
	tr             *i18n.Translator
	locale         string
	validate       *validator.Validate
	signingKey     []byte
	allowedOrigins []string

	surveys       *survey.Service
	registrations *registration.Service
	meetings      *meeting.Service
	matcher       *matching.Orchestrator

	generateShareCode     func() (string, error)
	generateOrganizerCode func() string
}

func NewMeetupApp(mux *http.ServeMux, logger *log.Logger, hub *realtime.Hub, db database.MeetupRepository, st stats.StatsProvider, gw Gateway, cfg *config.Config) *MeetupApp {
	var pub types.Publisher = types.Discard
	if hub != nil {
		pub = hub
	}

	tr := i18n.NewTranslator(logger, cfg.Locale)
	meetings := meeting.NewService(db, logger, pub, st)

	s := &MeetupApp{
		log:                   logger,
		db:                    db,
		hub:                   hub,
		stats:                 st,
		gateway:               gw,
		tr:                    tr,
		locale:                cfg.Locale,
		validate:              validator.New(),
		signingKey:            cfg.SigningKey,
		allowedOrigins:        cfg.AllowedOrigins,
		surveys:               survey.NewService(db, pub),
		registrations:         registration.NewService(db, logger, pub, st),
		meetings:              meetings,
		matcher:               matching.NewOrchestrator(db, gw, meetings, tr, cfg.Locale, logger, st),
		generateShareCode:     shortid.Generate,
		generateOrganizerCode: generateOrganizerCode,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)

	mux.HandleFunc("POST /api/events", s.createEvent)
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.HandleFunc("GET /api/share/{code}", s.getEventByShareCode)
	mux.HandleFunc("GET /api/events/{id}", s.getEvent)
	mux.HandleFunc("GET /api/events/{id}/questions", s.getQuestions)
	mux.HandleFunc("PUT /api/events/{id}/questions", s.organizerMiddleware(s.saveQuestions))
	mux.HandleFunc("POST /api/events/{id}/questions/generate", s.organizerMiddleware(s.generateQuestions))
	mux.HandleFunc("GET /api/events/{id}/participants", s.listParticipants)
	mux.HandleFunc("GET /api/events/{id}/participants/lookup", s.lookupParticipants)
	mux.HandleFunc("POST /api/events/{id}/registrations", s.register)
	mux.HandleFunc("POST /api/events/{id}/welcome-back", s.welcomeBack)
	mux.HandleFunc("GET /api/events/{id}/suggestions", s.getSuggestions)
	mux.HandleFunc("POST /api/events/{id}/suggestions/accept", s.authMiddleware(s.acceptSuggestion))

	mux.HandleFunc("GET /api/form", s.getLegacyForm)
	mux.HandleFunc("POST /api/registrations", s.registerLegacy)
	mux.HandleFunc("POST /api/welcome-back", s.welcomeBackLegacy)
	mux.HandleFunc("GET /api/registrations/{id}", s.getProfile)
	mux.HandleFunc("PUT /api/registrations/{id}/responses", s.authMiddleware(s.editResponses))

	mux.HandleFunc("POST /api/meetings", s.authMiddleware(s.proposeMeeting))
	mux.HandleFunc("GET /api/meetings", s.authMiddleware(s.listMeetings))
	mux.HandleFunc("GET /api/meetings/{id}", s.authMiddleware(s.getMeeting))
	mux.HandleFunc("POST /api/meetings/{id}/accept", s.authMiddleware(s.transition(meeting.ActionAccept)))
	mux.HandleFunc("POST /api/meetings/{id}/decline", s.authMiddleware(s.transition(meeting.ActionDecline)))
	mux.HandleFunc("POST /api/meetings/{id}/schedule", s.authMiddleware(s.transition(meeting.ActionSchedule)))
	mux.HandleFunc("POST /api/meetings/{id}/confirm", s.authMiddleware(s.transition(meeting.ActionConfirm)))
	mux.HandleFunc("POST /api/meetings/{id}/reschedule", s.authMiddleware(s.transition(meeting.ActionReschedule)))
	mux.HandleFunc("POST /api/meetings/{id}/seen", s.authMiddleware(s.markSeen))
	mux.HandleFunc("GET /api/meetings/{id}/messages", s.authMiddleware(s.getMessages))
	mux.HandleFunc("POST /api/meetings/{id}/messages", s.authMiddleware(s.sendMessage))
	mux.HandleFunc("POST /api/meetings/{id}/messages/read", s.authMiddleware(s.markMessagesRead))

	mux.HandleFunc("GET /api/notifications", s.authMiddleware(s.getNotifications))
	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", organizerCodeHeader}),
		handlers.AllowCredentials(),
	)(mux)

	h = handlers.CombinedLoggingHandler(logger.Writer(), h)
	h = s.errorHandler(h)

	s.mux = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *MeetupApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *MeetupApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
