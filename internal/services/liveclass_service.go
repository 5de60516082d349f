package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/repository"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/schedule"
)

// LiveClassService owns the class records themselves. Classes are only ever
// soft-disabled; sessions and payments keep referencing them afterwards.
type LiveClassService struct {
	classRepo *repository.LiveClassRepository
}

func NewLiveClassService(classRepo *repository.LiveClassRepository) *LiveClassService {
	return &LiveClassService{classRepo: classRepo}
}

type CreateClassInput struct {
	ClassName          string
	ArtForm            string
	Specialization     string
	ClassesPerWeek     int
	ClassDays          []string
	StartTime          string
	EndTime            string
	MaxStudents        int
	MonthlyFee         int64
	EnrollmentDeadline time.Time
	CoverImageID       *string
	TrailerVideoID     *string
}

func (s *LiveClassService) CreateClass(ctx context.Context, artistID int64, input CreateClassInput) (*models.LiveClass, error) {
	if artistID <= 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.ClassName) == "" {
		return nil, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	if input.MaxStudents <= 0 {
		return nil, fmt.Errorf("%w: max students must be positive", ErrInvalidInput)
	}
	if input.MonthlyFee < 0 {
		return nil, fmt.Errorf("%w: monthly fee must not be negative", ErrInvalidInput)
	}
	if input.EnrollmentDeadline.IsZero() {
		return nil, fmt.Errorf("%w: enrollment deadline is required", ErrInvalidInput)
	}

	days, err := schedule.ParseDays(input.ClassDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	pattern := schedule.Schedule{
		ClassesPerWeek: input.ClassesPerWeek,
		ClassDays:      days,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
	}
	if err := schedule.Validate(pattern); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.classRepo.Create(ctx, repository.CreateClassInput{
		ArtistID:           artistID,
		ClassName:          strings.TrimSpace(input.ClassName),
		ArtForm:            strings.TrimSpace(input.ArtForm),
		Specialization:     strings.TrimSpace(input.Specialization),
		ClassesPerWeek:     input.ClassesPerWeek,
		ClassDays:          input.ClassDays,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		MaxStudents:        input.MaxStudents,
		MonthlyFee:         input.MonthlyFee,
		EnrollmentDeadline: input.EnrollmentDeadline,
		CoverImageID:       input.CoverImageID,
		TrailerVideoID:     input.TrailerVideoID,
	})
}

func (s *LiveClassService) GetClass(ctx context.Context, classID int64) (*models.ClassDetail, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	roster, err := s.classRepo.ListRoster(ctx, classID)
	if err != nil {
		return nil, err
	}
	return &models.ClassDetail{LiveClass: *class, EnrolledStudents: roster}, nil
}

func (s *LiveClassService) ListByArtist(ctx context.Context, artistID int64) ([]models.LiveClass, error) {
	return s.classRepo.ListByArtist(ctx, artistID)
}

// Disable soft-disables a class: existing sessions and payments stay intact,
// new enrollments and sessions are refused.
func (s *LiveClassService) Disable(ctx context.Context, classID, artistID int64) (*models.LiveClass, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.ArtistID != artistID {
		return nil, ErrUnauthorized
	}
	return s.classRepo.SetDisabled(ctx, classID, true)
}
