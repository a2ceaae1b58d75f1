package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultJwtExpiration = 7 * 24 * time.Hour
	tokenCookieKey       = "token"
	organizerCodeHeader  = "X-Organizer-Code"
)

const (
	participantIdClaim = "participant-id"
	eventIdClaim       = "event-id"
	expClaim           = "exp"
)

type contextKey string

const participantIdKey contextKey = "participant-id"

// WithParticipantId returns a context carrying the acting participant.
func WithParticipantId(ctx context.Context, participantId int) context.Context {
	return context.WithValue(ctx, participantIdKey, participantId)
}

func ParticipantId(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(participantIdKey).(int)
	return id, ok
}

func createJwtCookie(tokenString string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieKey,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// createActorToken signs a token identifying the participant as the current
// actor of an event.
func (s *MeetupApp) createActorToken(participantId, eventId int, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		participantIdClaim: participantId,
		eventIdClaim:       eventId,
		expClaim:           time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *MeetupApp) setActorCookie(w http.ResponseWriter, participantId, eventId int) error {
	token, err := s.createActorToken(participantId, eventId, defaultJwtExpiration)
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))
	return nil
}

func (s *MeetupApp) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func (s *MeetupApp) extractParticipantIdFromToken(tokenString string) (int, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return 0, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	id, ok := claims[participantIdClaim].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid participant id claim")
	}

	return int(id), nil
}

func hashOrganizerCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(hash), err
}

func verifyOrganizerCode(hash, code string) bool {
	if hash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

func generateOrganizerCode() string {
	return uuid.NewString()
}
