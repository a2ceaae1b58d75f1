package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	eventColumns        = "id, name, description, event_date, location, share_code, organizer_code_hash, meeting_duration, creator_name, created_at, updated_at"
	registrationColumns = "id, event_id, name, role, interests, contact, find_me, bio, match_id, created_at, updated_at"
	questionColumns     = "id, event_id, question_text, field_type, options, is_required, sort_order, placeholder, created_at"
	insertResponseQuery = "INSERT INTO question_responses (registration_id, question_id, response_value, created_at) VALUES ($1, $2, $3, $4)"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		e    Event
		date sql.NullTime
	)
	err := row.Scan(
		&e.Id,
		&e.Name,
		&e.Description,
		&date,
		&e.Location,
		&e.ShareCode,
		&e.OrganizerCodeHash,
		&e.MeetingDuration,
		&e.CreatorName,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	e.Date = date.Time
	return e, err
}

func scanRegistration(row rowScanner) (Registration, error) {
	var (
		r       Registration
		eventId sql.NullInt64
		matchId sql.NullInt64
	)
	err := row.Scan(
		&r.Id,
		&eventId,
		&r.Name,
		&r.Role,
		pq.Array(&r.Interests),
		&r.Contact,
		&r.FindMe,
		&r.Bio,
		&matchId,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	r.EventId = int(eventId.Int64)
	r.MatchId = int(matchId.Int64)
	return r, err
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	err := row.Scan(
		&q.Id,
		&q.EventId,
		&q.Text,
		&q.FieldType,
		pq.Array(&q.Options),
		&q.Required,
		&q.SortOrder,
		&q.Placeholder,
		&q.CreatedAt,
	)
	return q, err
}

func (db *PgMeetupRepository) CreateEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO events (name, description, event_date, location, share_code, organizer_code_hash, meeting_duration, creator_name, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING "+eventColumns,
		params.Name,
		params.Description,
		nullTime(params.Date),
		params.Location,
		params.ShareCode,
		params.OrganizerCodeHash,
		params.MeetingDuration,
		params.CreatorName,
		now,
		now,
	)

	e, err := scanEvent(row)
	if isUniqueViolation(err) {
		return Event{}, ErrDuplicateShareCode
	}
	return e, err
}

func (db *PgMeetupRepository) GetEvent(ctx context.Context, id int) (Event, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1 LIMIT 1", id)
	e, err := scanEvent(row)
	return e, notFound(err)
}

func (db *PgMeetupRepository) GetEventByShareCode(ctx context.Context, code string) (Event, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE share_code = $1 LIMIT 1", code)
	e, err := scanEvent(row)
	return e, notFound(err)
}

func (db *PgMeetupRepository) ListEventsByCreator(ctx context.Context, creatorName string) ([]Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE lower(creator_name) = lower($1) ORDER BY created_at DESC",
		creatorName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (db *PgMeetupRepository) CreateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	var created Registration
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		row := tx.QueryRowContext(ctx,
			"INSERT INTO registrations (event_id, name, role, interests, contact, find_me, bio, match_id, created_at, updated_at) "+
				"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING "+registrationColumns,
			nullInt(reg.EventId),
			reg.Name,
			reg.Role,
			textArray(reg.Interests),
			reg.Contact,
			reg.FindMe,
			reg.Bio,
			nullInt(reg.MatchId),
			now,
			now,
		)

		var err error
		created, err = scanRegistration(row)
		if err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}

		return insertResponses(ctx, tx, created.Id, responses)
	})

	return created, err
}

func (db *PgMeetupRepository) UpdateRegistration(ctx context.Context, reg Registration, responses []QuestionResponse) (Registration, error) {
	var updated Registration
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"UPDATE registrations SET name = $2, role = $3, interests = $4, contact = $5, find_me = $6, bio = $7, updated_at = $8 "+
				"WHERE id = $1 RETURNING "+registrationColumns,
			reg.Id,
			reg.Name,
			reg.Role,
			textArray(reg.Interests),
			reg.Contact,
			reg.FindMe,
			reg.Bio,
			time.Now().UTC(),
		)

		var err error
		updated, err = scanRegistration(row)
		if err != nil {
			return notFound(err)
		}

		if responses == nil {
			return nil
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM question_responses WHERE registration_id = $1", reg.Id); err != nil {
			return fmt.Errorf("delete responses: %w", err)
		}

		return insertResponses(ctx, tx, reg.Id, responses)
	})

	return updated, err
}

func (db *PgMeetupRepository) GetRegistration(ctx context.Context, id int) (Registration, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+registrationColumns+" FROM registrations WHERE id = $1 LIMIT 1", id)
	r, err := scanRegistration(row)
	return r, notFound(err)
}

func (db *PgMeetupRepository) ListRegistrations(ctx context.Context, eventId int) ([]Registration, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations "+
			"WHERE ($1 = 0 AND event_id IS NULL) OR event_id = $1 ORDER BY created_at, id",
		eventId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]Registration, 0)
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, r)
	}

	return regs, rows.Err()
}

func (db *PgMeetupRepository) ListQuestions(ctx context.Context, eventId int) ([]Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+questionColumns+" FROM event_questions WHERE event_id = $1 ORDER BY sort_order",
		eventId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

func (db *PgMeetupRepository) ReplaceQuestions(ctx context.Context, eventId int, questions []Question) ([]Question, error) {
	saved := make([]Question, 0, len(questions))
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_questions WHERE event_id = $1", eventId); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}

		now := time.Now().UTC()
		for _, q := range questions {
			row := tx.QueryRowContext(ctx,
				"INSERT INTO event_questions (event_id, question_text, field_type, options, is_required, sort_order, placeholder, created_at) "+
					"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+questionColumns,
				eventId,
				q.Text,
				q.FieldType,
				textArray(q.Options),
				q.Required,
				q.SortOrder,
				q.Placeholder,
				now,
			)

			s, err := scanQuestion(row)
			if err != nil {
				return fmt.Errorf("insert question: %w", err)
			}
			saved = append(saved, s)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (db *PgMeetupRepository) ListResponses(ctx context.Context, registrationId int) ([]QuestionResponse, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, registration_id, question_id, response_value, created_at FROM question_responses WHERE registration_id = $1 ORDER BY question_id",
		registrationId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]QuestionResponse, 0)
	for rows.Next() {
		var (
			r     QuestionResponse
			value []byte
		)
		if err := rows.Scan(&r.Id, &r.RegistrationId, &r.QuestionId, &value, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Value = json.RawMessage(value)
		responses = append(responses, r)
	}

	return responses, rows.Err()
}

func (db *PgMeetupRepository) ReplaceResponses(ctx context.Context, registrationId int, responses []QuestionResponse) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM question_responses WHERE registration_id = $1", registrationId); err != nil {
			return fmt.Errorf("delete responses: %w", err)
		}

		return insertResponses(ctx, tx, registrationId, responses)
	})
}

func insertResponses(ctx context.Context, tx *sql.Tx, registrationId int, responses []QuestionResponse) error {
	now := time.Now().UTC()
	for _, r := range responses {
		if _, err := tx.ExecContext(ctx, insertResponseQuery, registrationId, r.QuestionId, []byte(r.Value), now); err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
	}
	return nil
}
