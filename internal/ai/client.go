// Package ai talks to the external text-generation gateway that proposes
// participant pairings and drafts registration forms.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/npezzotti/meetup/internal/database"
	"github.com/npezzotti/meetup/internal/matching"
)

var (
	ErrUnavailable    = errors.New("suggestion service is not configured")
	ErrRateLimited    = errors.New("suggestion service rate limit reached, try again later")
	ErrQuotaExhausted = errors.New("suggestion service credits exhausted")
)

const (
	suggestMatchesPath = "/suggest-matches"
	generateFormPath   = "/generate-form"
	defaultTimeout     = 60 * time.Second
	maxResponseSize    = 1 << 20
)

// Client calls the gateway. A Client with an empty base URL fails every
// call with ErrUnavailable.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *log.Logger
}

var _ matching.Suggester = (*Client)(nil)

func NewClient(baseURL, apiKey string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger,
	}
}

type gatewayError struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.baseURL == "" {
		return ErrUnavailable
	}

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExhausted
	}

	var gErr gatewayError
	if json.Unmarshal(data, &gErr) == nil && gErr.Error != "" {
		return fmt.Errorf("%s: %s", path, gErr.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type suggestResponse struct {
	Suggestions []matching.Suggestion `json:"suggestions"`
}

// SuggestMatches asks the gateway for pairings. The result is not checked
// against the participant list; ranking does that.
func (c *Client) SuggestMatches(ctx context.Context, req matching.Request) ([]matching.Suggestion, error) {
	var out suggestResponse
	if err := c.post(ctx, suggestMatchesPath, req, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

type generateRequest struct {
	EventName        string `json:"eventName"`
	EventDescription string `json:"eventDescription"`
}

type generatedQuestion struct {
	Text        string   `json:"question_text"`
	FieldType   string   `json:"field_type"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"is_required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type generateResponse struct {
	Questions []generatedQuestion `json:"questions"`
}

// GenerateForm drafts a question set for an event. The draft is returned in
// the order the gateway produced it and still has to be validated before
// saving.
func (c *Client) GenerateForm(ctx context.Context, eventName, eventDescription string) ([]database.Question, error) {
	var out generateResponse
	if err := c.post(ctx, generateFormPath, generateRequest{EventName: eventName, EventDescription: eventDescription}, &out); err != nil {
		return nil, err
	}

	questions := make([]database.Question, 0, len(out.Questions))
	for i, q := range out.Questions {
		questions = append(questions, database.Question{
			Text:        q.Text,
			FieldType:   q.FieldType,
			Options:     q.Options,
			Required:    q.Required,
			SortOrder:   i,
			Placeholder: q.Placeholder,
		})
	}
	c.log.Printf("generated %d questions for %q", len(questions), eventName)
	return questions, nil
}
