package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/services"
)

type paymentApplicationService interface {
	RecordPayment(ctx context.Context, input services.RecordPaymentInput) (*models.LiveClassPayment, error)
	ConfirmPayment(ctx context.Context, externalPaymentID string, succeeded bool) (*models.LiveClassPayment, error)
	Refund(ctx context.Context, paymentID, artistID int64) (*models.LiveClassPayment, error)
	ListByClass(ctx context.Context, classID, artistID int64) ([]models.LiveClassPayment, error)
}

type PaymentHandler struct {
	service paymentApplicationService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type recordPaymentRequest struct {
	ClassID           int64  `json:"class_id" validate:"required,min=1"`
	StudentID         int64  `json:"student_id" validate:"required,min=1"`
	Amount            int64  `json:"amount" validate:"required,min=1"`
	PeriodStart       string `json:"period_start" validate:"required"`
	PeriodEnd         string `json:"period_end" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
}

type confirmPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Status            string `json:"status" validate:"required,oneof=captured failed"`
}

func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "period_start must be a YYYY-MM-DD date"})
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "period_end must be a YYYY-MM-DD date"})
	}

	payment, err := h.service.RecordPayment(c.Context(), services.RecordPaymentInput{
		ClassID:           req.ClassID,
		StudentID:         req.StudentID,
		ArtistID:          artistID,
		Amount:            req.Amount,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		RazorpayPaymentID: req.RazorpayPaymentID,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment})
}

// ConfirmPayment receives the gateway's asynchronous verdict. Signature
// verification happens upstream of this core.
func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	payment, err := h.service.ConfirmPayment(c.Context(), req.RazorpayPaymentID, req.Status == "captured")
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	payment, err := h.service.Refund(c.Context(), paymentID, artistID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) ListClassPayments(c *fiber.Ctx) error {
	artistID, ok := requireRole(c, RoleArtist)
	if !ok {
		return nil
	}

	classID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class id"})
	}

	payments, err := h.service.ListByClass(c.Context(), classID, artistID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}
