package api

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/meetup/internal/realtime"
)

func (s *MeetupApp) serveWs(w http.ResponseWriter, r *http.Request) {
	participantId, ok := s.actor(w, r)
	if !ok {
		return
	}

	eventId, ok := s.queryId(w, r, "event_id")
	if !ok {
		return
	}

	if _, err := s.db.GetRegistration(r.Context(), participantId); err != nil {
		s.writeError(w, "get registration", err)
		return
	}

	if s.hub == nil {
		errResp := newApiError(http.StatusServiceUnavailable, nil)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := realtime.NewClient(participantId, conn, s.hub, s.meetings, s.newAggregator(participantId, eventId), s.log)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}
	go client.Write()
	go client.Notify()
	go client.Read()
}
