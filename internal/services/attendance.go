package services

import "github.com/SantaKoska/Artistry-Hub-sub001/internal/models"

// TotalDuration sums the closed-interval minutes a student spent in a
// session, across all of their join/leave cycles. Open intervals contribute
// nothing until they are closed.
func TotalDuration(session *models.SessionDetail, studentID int64) int {
	total := 0
	for _, attendee := range session.Attendees {
		if attendee.StudentID != studentID || attendee.DurationMinutes == nil {
			continue
		}
		total += *attendee.DurationMinutes
	}
	return total
}

// AttendeeCount counts distinct students that joined the session at least
// once.
func AttendeeCount(session *models.SessionDetail) int {
	seen := make(map[int64]bool, len(session.Attendees))
	for _, attendee := range session.Attendees {
		seen[attendee.StudentID] = true
	}
	return len(seen)
}
