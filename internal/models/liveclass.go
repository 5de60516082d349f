package models

import (
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/schedule"
)

// LiveClass is a recurring weekly class offering owned by an artist.
// Classes are soft-disabled, never hard-deleted, while sessions reference them.
type LiveClass struct {
	ID                 int64     `json:"id"`
	ArtistID           int64     `json:"artist_id"`
	ClassName          string    `json:"class_name"`
	ArtForm            string    `json:"art_form"`
	Specialization     string    `json:"specialization"`
	ClassesPerWeek     int       `json:"classes_per_week"`
	ClassDays          []string  `json:"class_days"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	MaxStudents        int       `json:"max_students"`
	MonthlyFee         int64     `json:"monthly_fee"`
	EnrollmentDeadline time.Time `json:"enrollment_deadline"`
	CoverImageID       *string   `json:"cover_image_id"`
	TrailerVideoID     *string   `json:"trailer_video_id"`
	Disabled           bool      `json:"disabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RosterEntry is one enrolled student on a class roster.
type RosterEntry struct {
	ID             int64     `json:"id"`
	ClassID        int64     `json:"class_id"`
	StudentID      int64     `json:"student_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	NextPaymentDue time.Time `json:"next_payment_due"`
}

// ClassDetail bundles a class with its roster for API responses.
type ClassDetail struct {
	LiveClass
	EnrolledStudents []RosterEntry `json:"enrolled_students"`
}

// Schedule converts the stored weekly pattern into the schedule package's
// representation.
func (c *LiveClass) Schedule() (schedule.Schedule, error) {
	days, err := schedule.ParseDays(c.ClassDays)
	if err != nil {
		return schedule.Schedule{}, err
	}
	return schedule.Schedule{
		ClassesPerWeek: c.ClassesPerWeek,
		ClassDays:      days,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
	}, nil
}
