package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

type classApplicationService interface {
	CreateClass(ctx context.Context, artistID int64, input services.CreateClassInput) (*models.LiveClass, error)
	GetClass(ctx context.Context, classID int64) (*models.ClassDetail, error)
	ListByArtist(ctx context.Context, artistID int64) ([]models.LiveClass, error)
	Disable(ctx context.Context, classID, artistID int64) (*models.LiveClass, error)
}

type enrollmentApplicationService interface {
	Enroll(ctx context.Context, classID, studentID int64, now time.Time) (*models.RosterEntry, error)
	Withdraw(ctx context.Context, classID, studentID int64) error
}

type ClassHandler struct {
	classes    classApplicationService
	enrollment enrollmentApplicationService
}

func NewClassHandler(classes *services.LiveClassService, enrollment *services.EnrollmentService) *ClassHandler {
	return &ClassHandler{classes: classes, enrollment: enrollment}
}

type createClassRequest struct {
	ClassName          string   `json:"class_name" validate:"required"`
	ArtForm            string   `json:"art_form" validate:"required"`
	Specialization     string   `json:"specialization"`
	ClassesPerWeek     int      `json:"classes_per_week" validate:"required,min=1,max=7"`
	ClassDays          []string `json:"class_days" validate:"required,min=1,max=7,dive,required"`
	StartTime          string   `json:"start_time" validate:"required"`
	EndTime            string   `json:"end_time" validate:"required"`
	MaxStudents        int      `json:"max_students" validate:"required,min=1"`
	MonthlyFee         int64    `json:"monthly_fee" validate:"min=0"`
	EnrollmentDeadline string   `json:"enrollment_deadline" validate:"required"`
	CoverImageID       *string  `json:"cover_image_id"`
	TrailerVideoID     *string  `json:"trailer_video_id"`
}

func (h *ClassHandler) CreateClass(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	var req createClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	deadline, err := time.Parse("2006-01-02", req.EnrollmentDeadline)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enrollment_deadline must be a YYYY-MM-DD date"})
	}

	class, err := h.classes.CreateClass(c.Context(), artistID, services.CreateClassInput{
		ClassName:          req.ClassName,
		ArtForm:            req.ArtForm,
		Specialization:     req.Specialization,
		ClassesPerWeek:     req.ClassesPerWeek,
		ClassDays:          req.ClassDays,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		MaxStudents:        req.MaxStudents,
		MonthlyFee:         req.MonthlyFee,
		EnrollmentDeadline: deadline,
		CoverImageID:       req.CoverImageID,
		TrailerVideoID:     req.TrailerVideoID,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) GetClass(c *fiber.Ctx) error {
	if _, ok := requireRole(c, RoleArtist, RoleStudent); !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	class, err := h.classes.GetClass(c.Context(), classID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) ListClasses(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	classes, err := h.classes.ListByArtist(c.Context(), artistID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"classes": classes})
}

func (h *ClassHandler) DisableClass(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	class, err := h.classes.Disable(c.Context(), classID, artistID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"class": class})
}

func (h *ClassHandler) Enroll(c *fiber.Ctx) error {
	studentID, ok := requireRole(c, RoleStudent)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	entry, err := h.enrollment.Enroll(c.Context(), classID, studentID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"enrollment": entry})
}

func (h *ClassHandler) Withdraw(c *fiber.Ctx) error {
	studentID, ok := requireRole(c, RoleStudent)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	if err := h.enrollment.Withdraw(c.Context(), classID, studentID); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
