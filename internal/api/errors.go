package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/npezzotti/meetup/internal/ai"
	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/matching"
	"github.com/npezzotti/meetup/internal/meeting"
	"github.com/npezzotti/meetup/internal/registration"
	"github.com/npezzotti/meetup/internal/survey"
)

type ApiError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func newApiError(code int, err error) *ApiError {
	return &ApiError{
		StatusCode: code,
		Message:    lower(http.StatusText(code)),
		Err:        err,
	}
}

func NewBadRequestError() *ApiError {
	return newApiError(http.StatusBadRequest, nil)
}

func NewNotFoundError() *ApiError {
	return newApiError(http.StatusNotFound, nil)
}

func NewInternalServerError(err error) *ApiError {
	return newApiError(http.StatusInternalServerError, err)
}

func NewUnauthorizedError() *ApiError {
	return newApiError(http.StatusUnauthorized, nil)
}

func NewForbiddenError() *ApiError {
	return newApiError(http.StatusForbidden, nil)
}

// NewValidationError is a 400 that carries the reason in its message.
func NewValidationError(err error) *ApiError {
	return &ApiError{
		StatusCode: http.StatusBadRequest,
		Message:    err.Error(),
		Err:        err,
	}
}

func NewConflictError(err error) *ApiError {
	return &ApiError{
		StatusCode: http.StatusConflict,
		Message:    err.Error(),
		Err:        err,
	}
}

// errorFor maps a domain error onto the response sent to the client.
func errorFor(err error) *ApiError {
	var (
		validationErr *survey.ValidationError
		fieldErrs     validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs):
		return NewValidationError(err)
	case errors.Is(err, survey.ErrInvalidAnswer),
		errors.Is(err, registration.ErrNameRequired),
		errors.Is(err, meeting.ErrSelfRequest),
		errors.Is(err, meeting.ErrIncompleteSchedule),
		errors.Is(err, meeting.ErrInvalidSlot),
		errors.Is(err, meeting.ErrInvalidLocation),
		errors.Is(err, meeting.ErrInvalidDate),
		errors.Is(err, meeting.ErrRescheduleReason),
		errors.Is(err, meeting.ErrEmptyMessage):
		return NewValidationError(err)
	case errors.Is(err, database.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, meeting.ErrNotParticipant),
		errors.Is(err, registration.ErrNotOwner),
		errors.Is(err, matching.ErrNotInPair):
		return &ApiError{StatusCode: http.StatusForbidden, Message: err.Error(), Err: err}
	case errors.Is(err, meeting.ErrNotAllowed),
		errors.Is(err, meeting.ErrConflict),
		errors.Is(err, meeting.ErrActiveRequestExists),
		errors.Is(err, meeting.ErrChatClosed):
		return NewConflictError(err)
	case errors.Is(err, ai.ErrRateLimited):
		return &ApiError{StatusCode: http.StatusTooManyRequests, Message: ai.ErrRateLimited.Error(), Err: err}
	case errors.Is(err, ai.ErrQuotaExhausted):
		return &ApiError{StatusCode: http.StatusPaymentRequired, Message: ai.ErrQuotaExhausted.Error(), Err: err}
	case errors.Is(err, matching.ErrNoSuggestions), errors.Is(err, ai.ErrUnavailable):
		return &ApiError{StatusCode: http.StatusServiceUnavailable, Message: err.Error(), Err: err}
	}
	return NewInternalServerError(err)
}
