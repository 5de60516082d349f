package repository

import (
	"context"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, class_id, session_date, start_time, end_time, status,
	join_url, recording_url, cancellation_reason, created_at, updated_at`

type CreateSessionInput struct {
	ClassID   int64
	Date      time.Time
	StartTime *time.Time
	Status    string
	JoinURL   string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*models.LiveSession, error) {
	var session models.LiveSession
	err := row.Scan(
		&session.ID,
		&session.ClassID,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.Status,
		&session.JoinURL,
		&session.RecordingURL,
		&session.CancellationReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.LiveSession, error) {
	query := `
		INSERT INTO live_sessions (class_id, session_date, start_time, status, join_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.ClassID,
		input.Date,
		input.StartTime,
		input.Status,
		input.JoinURL,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.LiveSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.LiveSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE id = $1 FOR UPDATE`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) ListByClass(ctx context.Context, classID int64) ([]models.LiveSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE class_id = $1
		ORDER BY session_date DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.LiveSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// HasOngoingByClass reports whether the class already holds an ongoing
// session. Call it under the class advisory lock to keep the at-most-one
// guarantee exact.
func (r *SessionRepository) HasOngoingByClass(ctx context.Context, classID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM live_sessions
			WHERE class_id = $1 AND status = 'ongoing'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, classID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetScheduledOnDate finds the class's scheduled session for a given date,
// if one was created ahead of time.
func (r *SessionRepository) GetScheduledOnDate(ctx context.Context, classID int64, date time.Time) (*models.LiveSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE class_id = $1 AND session_date = $2 AND status = 'scheduled'
		ORDER BY id ASC
		LIMIT 1
	`
	return scanSession(r.db.QueryRow(ctx, query, classID, date))
}

func (r *SessionRepository) SetJoinURL(ctx context.Context, sessionID int64, joinURL string) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET join_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, joinURL))
}

func (r *SessionRepository) StartIfScheduled(ctx context.Context, sessionID int64, startTime time.Time) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET status = 'ongoing', start_time = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, startTime))
}

func (r *SessionRepository) CompleteIfOngoing(ctx context.Context, sessionID int64, endTime time.Time) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET status = 'completed', end_time = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'ongoing'
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, endTime))
}

func (r *SessionRepository) CancelIfActive(ctx context.Context, sessionID int64, reason string) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET status = 'cancelled', cancellation_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('scheduled', 'ongoing')
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, reason))
}

func (r *SessionRepository) SetRecordingURL(ctx context.Context, sessionID int64, recordingURL string) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET recording_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(ctx, query, sessionID, recordingURL))
}

const attendeeColumns = `id, session_id, student_id, join_time, leave_time, duration_min`

func scanAttendee(row pgx.Row) (*models.Attendee, error) {
	var attendee models.Attendee
	err := row.Scan(
		&attendee.ID,
		&attendee.SessionID,
		&attendee.StudentID,
		&attendee.JoinTime,
		&attendee.LeaveTime,
		&attendee.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (r *SessionRepository) ListAttendees(ctx context.Context, sessionID int64) ([]models.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM session_attendees
		WHERE session_id = $1
		ORDER BY join_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attendees := make([]models.Attendee, 0)
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, *attendee)
	}
	return attendees, rows.Err()
}

// GetOpenAttendee returns the student's most recent interval still missing a
// leave time, or pgx.ErrNoRows when every interval is closed.
func (r *SessionRepository) GetOpenAttendee(ctx context.Context, sessionID, studentID int64) (*models.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM session_attendees
		WHERE session_id = $1 AND student_id = $2 AND leave_time IS NULL
		ORDER BY join_time DESC, id DESC
		LIMIT 1
	`
	return scanAttendee(r.db.QueryRow(ctx, query, sessionID, studentID))
}

func (r *SessionRepository) AddAttendee(ctx context.Context, sessionID, studentID int64, joinTime time.Time) (*models.Attendee, error) {
	query := `
		INSERT INTO session_attendees (session_id, student_id, join_time)
		VALUES ($1, $2, $3)
		RETURNING ` + attendeeColumns
	return scanAttendee(r.db.QueryRow(ctx, query, sessionID, studentID, joinTime))
}

// CloseAttendee sets the leave time on the student's most recent open
// interval and derives the floored whole-minute duration.
func (r *SessionRepository) CloseAttendee(ctx context.Context, sessionID, studentID int64, leaveTime time.Time) (*models.Attendee, error) {
	query := `
		UPDATE session_attendees
		SET leave_time = $3,
		    duration_min = FLOOR(EXTRACT(EPOCH FROM ($3::timestamptz - join_time)) / 60)::int
		WHERE id = (
			SELECT id FROM session_attendees
			WHERE session_id = $1 AND student_id = $2 AND leave_time IS NULL
			ORDER BY join_time DESC, id DESC
			LIMIT 1
		)
		RETURNING ` + attendeeColumns
	return scanAttendee(r.db.QueryRow(ctx, query, sessionID, studentID, leaveTime))
}

// CloseOpenAttendees finalizes every interval still open when a session ends.
func (r *SessionRepository) CloseOpenAttendees(ctx context.Context, sessionID int64, leaveTime time.Time) error {
	query := `
		UPDATE session_attendees
		SET leave_time = $2,
		    duration_min = FLOOR(EXTRACT(EPOCH FROM ($2::timestamptz - join_time)) / 60)::int
		WHERE session_id = $1 AND leave_time IS NULL
	`
	_, err := r.db.Exec(ctx, query, sessionID, leaveTime)
	return err
}
