package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

type sessionApplicationService interface {
	StartSession(ctx context.Context, classID, artistID int64, now time.Time) (*models.LiveSession, error)
	ScheduleSession(ctx context.Context, classID, artistID int64, from time.Time) (*models.LiveSession, error)
	EndSession(ctx context.Context, sessionID, artistID int64, now time.Time) (*models.LiveSession, error)
	CancelSession(ctx context.Context, sessionID, artistID int64, reason string, now time.Time) (*models.LiveSession, error)
	RecordJoin(ctx context.Context, sessionID, studentID int64, now time.Time) (*models.Attendee, error)
	RecordLeave(ctx context.Context, sessionID, studentID int64, now time.Time) (*models.Attendee, error)
	GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	ListByClass(ctx context.Context, classID int64) ([]models.LiveSession, error)
}

type SessionHandler struct {
	service sessionApplicationService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type cancelSessionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	session, err := h.service.StartSession(c.Context(), classID, artistID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ScheduleSession(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	session, err := h.service.ScheduleSession(c.Context(), classID, artistID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ListClassSessions(c *fiber.Ctx) error {
	if _, ok := requireRole(c, RoleArtist, RoleStudent); !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	sessions, err := h.service.ListByClass(c.Context(), classID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	if _, ok := requireRole(c, RoleArtist, RoleStudent); !ok {
		return nil
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) EndSession(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.EndSession(c.Context(), sessionID, artistID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req cancelSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required"})
	}

	session, err := h.service.CancelSession(c.Context(), sessionID, artistID, req.Reason, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) RecordJoin(c *fiber.Ctx) error {
	studentID, ok := requireRole(c, RoleStudent)
	if !ok {
		return nil
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	attendee, err := h.service.RecordJoin(c.Context(), sessionID, studentID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attendee": attendee})
}

func (h *SessionHandler) RecordLeave(c *fiber.Ctx) error {
	studentID, ok := requireRole(c, RoleStudent)
	if !ok {
		return nil
	}

	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	attendee, err := h.service.RecordLeave(c.Context(), sessionID, studentID, time.Now().UTC())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"attendee": attendee})
}
