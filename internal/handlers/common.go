package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

const (
	RoleArtist  = "artist"
	RoleStudent = "student"
)

var validate = validator.New()

func parseActorID(c *fiber.Ctx) (int64, error) {
	actorValue := c.Locals("user_id")
	actorStr, ok := actorValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(actorStr, 10, 64)
}

func requireRole(c *fiber.Ctx, roles ...string) (int64, bool) {
	role, ok := c.Locals("role").(string)
	if !ok {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, false
	}
	allowed := false
	for _, candidate := range roles {
		if role == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, false
	}

	actorID, err := parseActorID(c)
	if err != nil {
		c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, false
	}
	return actorID, true
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

// mapDomainError translates the service error taxonomy into stable HTTP
// responses.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotEnrolled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrOverlappingPeriod),
		errors.Is(err, services.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDeadlinePassed),
		errors.Is(err, services.ErrClassDisabled),
		errors.Is(err, services.ErrSessionAlreadyActive),
		errors.Is(err, services.ErrSessionNotActive),
		errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrExternalProvider):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
