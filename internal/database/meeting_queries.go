package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const meetingColumns = "id, event_id, requester_id, target_id, status, message, ai_suggested, suggested_time, seen_by_target, " +
	"meeting_date, meeting_time, meeting_location, reschedule_message, created_at, updated_at"

func scanMeetingRequest(row rowScanner) (MeetingRequest, error) {
	var (
		m       MeetingRequest
		eventId sql.NullInt64
	)
	err := row.Scan(
		&m.Id,
		&eventId,
		&m.RequesterId,
		&m.TargetId,
		&m.Status,
		&m.Message,
		&m.AiSuggested,
		&m.SuggestedTime,
		&m.SeenByTarget,
		&m.MeetingDate,
		&m.MeetingTime,
		&m.MeetingLocation,
		&m.RescheduleMessage,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	m.EventId = int(eventId.Int64)
	return m, err
}

// CreateMeetingRequest inserts only when the pair has no request in
// activeStatuses. Concurrent inserts that both pass the check are stopped by
// meeting_requests_active_pair_idx, whose status list must match the
// statuses callers pass here.
func (db *PgMeetupRepository) CreateMeetingRequest(ctx context.Context, req MeetingRequest, activeStatuses []string) (MeetingRequest, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO meeting_requests (event_id, requester_id, target_id, status, message, ai_suggested, suggested_time, seen_by_target, created_at, updated_at) "+
			"SELECT $1::integer, $2::integer, $3::integer, $4::text, $5::text, $6::boolean, $7::text, false, $8::timestamptz, $8::timestamptz "+
			"WHERE NOT EXISTS (SELECT 1 FROM meeting_requests "+
			"WHERE COALESCE(event_id, 0) = COALESCE($1::integer, 0) AND status = ANY($9::text[]) "+
			"AND LEAST(requester_id, target_id) = LEAST($2::integer, $3::integer) "+
			"AND GREATEST(requester_id, target_id) = GREATEST($2::integer, $3::integer)) "+
			"RETURNING "+meetingColumns,
		nullInt(req.EventId),
		req.RequesterId,
		req.TargetId,
		req.Status,
		req.Message,
		req.AiSuggested,
		req.SuggestedTime,
		now,
		textArray(activeStatuses),
	)

	m, err := scanMeetingRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return MeetingRequest{}, ErrDuplicateActiveRequest
		}
		return MeetingRequest{}, err
	}

	return m, nil
}

func (db *PgMeetupRepository) GetMeetingRequest(ctx context.Context, id int) (MeetingRequest, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+meetingColumns+" FROM meeting_requests WHERE id = $1 LIMIT 1", id)
	m, err := scanMeetingRequest(row)
	return m, notFound(err)
}

func (db *PgMeetupRepository) UpdateMeetingRequest(ctx context.Context, req MeetingRequest, expectedStatus string) (MeetingRequest, error) {
	row := db.conn.QueryRowContext(ctx,
		"UPDATE meeting_requests SET status = $3, message = $4, meeting_date = $5, meeting_time = $6, meeting_location = $7, "+
			"reschedule_message = $8, seen_by_target = $9, updated_at = $10 "+
			"WHERE id = $1 AND status = $2 RETURNING "+meetingColumns,
		req.Id,
		expectedStatus,
		req.Status,
		req.Message,
		req.MeetingDate,
		req.MeetingTime,
		req.MeetingLocation,
		req.RescheduleMessage,
		req.SeenByTarget,
		time.Now().UTC(),
	)

	m, err := scanMeetingRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		// distinguish a missing row from a concurrent status change
		if _, getErr := db.GetMeetingRequest(ctx, req.Id); getErr != nil {
			return MeetingRequest{}, getErr
		}
		return MeetingRequest{}, ErrStatusChanged
	}
	if err != nil && isUniqueViolation(err) {
		return MeetingRequest{}, ErrDuplicateActiveRequest
	}

	return m, err
}

func (db *PgMeetupRepository) ListMeetingRequests(ctx context.Context, eventId, participantId int) ([]MeetingRequest, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+meetingColumns+" FROM meeting_requests "+
			"WHERE ($1 = 0 OR event_id = $1) AND (requester_id = $2 OR target_id = $2) ORDER BY created_at DESC, id DESC",
		eventId,
		participantId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]MeetingRequest, 0)
	for rows.Next() {
		m, err := scanMeetingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting request: %w", err)
		}
		requests = append(requests, m)
	}

	return requests, rows.Err()
}

func (db *PgMeetupRepository) FindActiveMeetingRequest(ctx context.Context, eventId, a, b int, activeStatuses []string) (MeetingRequest, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+meetingColumns+" FROM meeting_requests "+
			"WHERE COALESCE(event_id, 0) = $1 AND status = ANY($4) "+
			"AND ((requester_id = $2 AND target_id = $3) OR (requester_id = $3 AND target_id = $2)) "+
			"ORDER BY created_at DESC LIMIT 1",
		eventId,
		a,
		b,
		textArray(activeStatuses),
	)

	m, err := scanMeetingRequest(row)
	return m, notFound(err)
}

func (db *PgMeetupRepository) MarkRequestSeen(ctx context.Context, id int) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE meeting_requests SET seen_by_target = true WHERE id = $1", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PgMeetupRepository) CountUnseenPending(ctx context.Context, eventId, participantId int) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT count(*) FROM meeting_requests "+
			"WHERE ($1 = 0 OR event_id = $1) AND target_id = $2 AND status = 'pending' AND seen_by_target = false",
		eventId,
		participantId,
	).Scan(&count)

	return count, err
}

func (db *PgMeetupRepository) CreateMeetingMessage(ctx context.Context, msg MeetingMessage) (MeetingMessage, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO meeting_messages (meeting_request_id, sender_id, message, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, meeting_request_id, sender_id, message, created_at, read_at",
		msg.MeetingRequestId,
		msg.SenderId,
		msg.Content,
		time.Now().UTC(),
	)

	return scanMeetingMessage(row)
}

func scanMeetingMessage(row rowScanner) (MeetingMessage, error) {
	var (
		m      MeetingMessage
		readAt sql.NullTime
	)
	err := row.Scan(&m.Id, &m.MeetingRequestId, &m.SenderId, &m.Content, &m.CreatedAt, &readAt)
	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	return m, err
}

func (db *PgMeetupRepository) ListMeetingMessages(ctx context.Context, meetingId int) ([]MeetingMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, meeting_request_id, sender_id, message, created_at, read_at FROM meeting_messages "+
			"WHERE meeting_request_id = $1 ORDER BY created_at, id",
		meetingId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]MeetingMessage, 0)
	for rows.Next() {
		m, err := scanMeetingMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgMeetupRepository) MarkMessagesRead(ctx context.Context, meetingId, readerId int, at time.Time) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE meeting_messages SET read_at = $3 WHERE meeting_request_id = $1 AND sender_id <> $2 AND read_at IS NULL",
		meetingId,
		readerId,
		at,
	)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

func (db *PgMeetupRepository) CountUnreadMessages(ctx context.Context, eventId, participantId int, statuses []string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		"SELECT count(*) FROM meeting_messages mm "+
			"JOIN meeting_requests mr ON mr.id = mm.meeting_request_id "+
			"WHERE ($1 = 0 OR mr.event_id = $1) AND (mr.requester_id = $2 OR mr.target_id = $2) "+
			"AND mr.status = ANY($3) AND mm.sender_id <> $2 AND mm.read_at IS NULL",
		eventId,
		participantId,
		textArray(statuses),
	).Scan(&count)

	return count, err
}
