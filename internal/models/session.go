package models

import "time"

const (
	SessionScheduled = "scheduled"
	SessionOngoing   = "ongoing"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// LiveSession is one concrete meeting instance of a LiveClass. Transitions
// are one-directional: scheduled -> ongoing -> completed/cancelled.
type LiveSession struct {
	ID                 int64      `json:"id"`
	ClassID            int64      `json:"class_id"`
	Date               time.Time  `json:"date"`
	StartTime          *time.Time `json:"start_time"`
	EndTime            *time.Time `json:"end_time"`
	Status             string     `json:"status"`
	JoinURL            string     `json:"join_url"`
	RecordingURL       *string    `json:"recording_url"`
	CancellationReason *string    `json:"cancellation_reason"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Attendee is one join/leave interval of a student within a session.
// Duration stays nil until the interval is closed, then holds whole minutes
// (floored).
type Attendee struct {
	ID              int64      `json:"id"`
	SessionID       int64      `json:"session_id"`
	StudentID       int64      `json:"student_id"`
	JoinTime        time.Time  `json:"join_time"`
	LeaveTime       *time.Time `json:"leave_time"`
	DurationMinutes *int       `json:"duration_minutes"`
}

type SessionDetail struct {
	LiveSession
	Attendees []Attendee `json:"attendees"`
}
