package services

import (
	"context"
	"errors"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentService gates admission to a class roster. All roster mutations
// for one class run under that class's advisory lock so capacity never
// overshoots under concurrent enrolls.
type EnrollmentService struct {
	db        *pgxpool.Pool
	classRepo *repository.LiveClassRepository
}

func NewEnrollmentService(db *pgxpool.Pool, classRepo *repository.LiveClassRepository) *EnrollmentService {
	return &EnrollmentService{db: db, classRepo: classRepo}
}

func (s *EnrollmentService) Enroll(
	ctx context.Context,
	classID, studentID int64,
	now time.Time,
) (*models.RosterEntry, error) {
	if classID <= 0 || studentID <= 0 {
		return nil, ErrInvalidInput
	}

	var entry *models.RosterEntry
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", classID); err != nil {
			return err
		}

		txClassRepo := repository.NewLiveClassRepository(tx)
		class, err := txClassRepo.GetByID(ctx, classID)
		if err != nil {
			return err
		}
		if class.Disabled {
			return ErrClassDisabled
		}

		roster, err := txClassRepo.ListRoster(ctx, classID)
		if err != nil {
			return err
		}
		if err := validateEnrollment(class, roster, studentID, now); err != nil {
			return err
		}

		created, err := txClassRepo.AddRosterEntry(ctx, classID, studentID, now, now.AddDate(0, 1, 0))
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, classID, studentID int64) (bool, error) {
	_, err := s.classRepo.GetRosterEntry(ctx, classID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *EnrollmentService) Withdraw(ctx context.Context, classID, studentID int64) error {
	if classID <= 0 || studentID <= 0 {
		return ErrInvalidInput
	}
	removed, err := s.classRepo.DeleteRosterEntry(ctx, classID, studentID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotEnrolled
	}
	return nil
}

// validateEnrollment applies the admission rules: deadline inclusive through
// the end of its calendar day, then capacity, then duplicate enrollment.
func validateEnrollment(
	class *models.LiveClass,
	roster []models.RosterEntry,
	studentID int64,
	now time.Time,
) error {
	if now.After(endOfDay(class.EnrollmentDeadline)) {
		return ErrDeadlinePassed
	}
	if len(roster) >= class.MaxStudents {
		return ErrCapacityExceeded
	}
	for _, entry := range roster {
		if entry.StudentID == studentID {
			return ErrAlreadyEnrolled
		}
	}
	return nil
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), day.Location())
}
