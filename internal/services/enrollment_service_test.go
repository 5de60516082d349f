package services

import (
	"errors"
	"testing"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
)

func testClass(maxStudents int, deadline time.Time) *models.LiveClass {
	return &models.LiveClass{
		ID:                 1,
		ArtistID:           5,
		ClassName:          "Hindustani vocals",
		MaxStudents:        maxStudents,
		EnrollmentDeadline: deadline,
	}
}

func rosterOf(studentIDs ...int64) []models.RosterEntry {
	roster := make([]models.RosterEntry, 0, len(studentIDs))
	for _, id := range studentIDs {
		roster = append(roster, models.RosterEntry{ClassID: 1, StudentID: id})
	}
	return roster
}

func TestValidateEnrollmentAllowsOpenSeat(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	class := testClass(3, deadline)
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	if err := validateEnrollment(class, rosterOf(10, 11), 12, now); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestValidateEnrollmentDeadlineInclusiveThroughEndOfDay(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	class := testClass(3, deadline)

	onDeadlineEvening := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	if err := validateEnrollment(class, nil, 12, onDeadlineEvening); err != nil {
		t.Fatalf("expected enrollment on deadline day to pass, got %v", err)
	}

	dayAfter := time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)
	if err := validateEnrollment(class, nil, 12, dayAfter); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestValidateEnrollmentCapacity(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	class := testClass(1, deadline)
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	if err := validateEnrollment(class, rosterOf(10), 12, now); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestValidateEnrollmentDeadlineCheckedBeforeCapacity(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	class := testClass(1, deadline)
	late := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	if err := validateEnrollment(class, rosterOf(10), 12, late); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed for full class past deadline, got %v", err)
	}
}

func TestValidateEnrollmentRejectsDuplicate(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	class := testClass(5, deadline)
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)

	if err := validateEnrollment(class, rosterOf(10, 12), 12, now); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestEndOfDayKeepsCalendarDay(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	eod := endOfDay(day)

	if eod.Day() != 1 || eod.Hour() != 23 || eod.Minute() != 59 {
		t.Fatalf("unexpected end of day %s", eod)
	}
	if !eod.Before(day.AddDate(0, 0, 1)) {
		t.Fatalf("end of day leaked into next day: %s", eod)
	}
}
