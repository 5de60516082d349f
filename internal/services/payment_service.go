package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/SantaKoska/Artistry-Hub-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentService records monthly billing outcomes. It never initiates
// charges: the gateway confirms or rejects externally and this core only
// reconciles what it is told.
type PaymentService struct {
	db             *pgxpool.Pool
	paymentRepo    *repository.PaymentRepository
	classRepo      *repository.LiveClassRepository
	commissionRate float64
}

func NewPaymentService(
	db *pgxpool.Pool,
	paymentRepo *repository.PaymentRepository,
	classRepo *repository.LiveClassRepository,
	commissionRate float64,
) *PaymentService {
	return &PaymentService{
		db:             db,
		paymentRepo:    paymentRepo,
		classRepo:      classRepo,
		commissionRate: commissionRate,
	}
}

// ComputeSplit divides an amount in minor currency units between platform
// commission and artist earnings. Commission rounds half-up; the remainder
// goes to the artist so commission + artistEarnings == amount exactly.
func ComputeSplit(amount int64, commissionRate float64) (commission, artistEarnings int64) {
	commission = int64(math.Floor(float64(amount)*commissionRate + 0.5))
	return commission, amount - commission
}

type RecordPaymentInput struct {
	ClassID           int64
	StudentID         int64
	ArtistID          int64
	Amount            int64
	PeriodStart       time.Time
	PeriodEnd         time.Time
	RazorpayPaymentID string
}

// RecordPayment creates a pending payment for one student/class billing
// period. Periods are half-open [start, end) and may never overlap a prior
// non-failed payment for the same student and class.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.LiveClassPayment, error) {
	if input.ClassID <= 0 || input.StudentID <= 0 || input.ArtistID <= 0 || input.Amount <= 0 {
		return nil, ErrInvalidInput
	}
	if !input.PeriodStart.Before(input.PeriodEnd) {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.RazorpayPaymentID) == "" {
		return nil, ErrInvalidInput
	}

	var payment *models.LiveClassPayment
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.ClassID); err != nil {
			return err
		}

		txClassRepo := repository.NewLiveClassRepository(tx)
		txPaymentRepo := repository.NewPaymentRepository(tx)

		class, err := txClassRepo.GetByID(ctx, input.ClassID)
		if err != nil {
			return err
		}
		if class.ArtistID != input.ArtistID {
			return ErrInvalidInput
		}

		overlaps, err := txPaymentRepo.HasOverlappingPeriod(ctx, input.ClassID, input.StudentID, input.PeriodStart, input.PeriodEnd)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlappingPeriod
		}

		commission, artistEarnings := ComputeSplit(input.Amount, s.commissionRate)
		created, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
			ClassID:           input.ClassID,
			StudentID:         input.StudentID,
			ArtistID:          input.ArtistID,
			Amount:            input.Amount,
			Commission:        commission,
			ArtistEarnings:    artistEarnings,
			PeriodStart:       input.PeriodStart,
			PeriodEnd:         input.PeriodEnd,
			Receipt:           uuid.NewString(),
			RazorpayPaymentID: input.RazorpayPaymentID,
		})
		if err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		payment = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ConfirmPayment applies the gateway's verdict for a pending payment. On
// success the roster entry's next due date moves one month forward from the
// previous due date, not from now, so billing cycles never drift.
func (s *PaymentService) ConfirmPayment(ctx context.Context, externalPaymentID string, succeeded bool) (*models.LiveClassPayment, error) {
	if strings.TrimSpace(externalPaymentID) == "" {
		return nil, ErrInvalidInput
	}

	var payment *models.LiveClassPayment
	err := withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback(ctx)
		}()

		txPaymentRepo := repository.NewPaymentRepository(tx)
		txClassRepo := repository.NewLiveClassRepository(tx)

		current, err := txPaymentRepo.GetByExternalIDForUpdate(ctx, externalPaymentID)
		if err != nil {
			return err
		}
		if current.Status != models.PaymentPending {
			return ErrInvalidTransition
		}

		nextStatus := models.PaymentFailed
		if succeeded {
			nextStatus = models.PaymentCompleted
		}
		updated, err := txPaymentRepo.UpdateStatusIfCurrent(ctx, current.ID, models.PaymentPending, nextStatus)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidTransition
			}
			return err
		}

		if succeeded {
			if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", updated.ClassID); err != nil {
				return err
			}
			if _, err := txClassRepo.AdvanceNextPaymentDue(ctx, updated.ClassID, updated.StudentID); err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return err
				}
				// Student withdrew after the charge was made; the payment
				// outcome still stands.
				log.Printf("payment %s: no roster entry to advance for student %d in class %d",
					externalPaymentID, updated.StudentID, updated.ClassID)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
		payment = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund moves a completed payment to refunded. Only the artist the payment
// belongs to may refund it. The roster entry's next due date is intentionally
// left alone.
func (s *PaymentService) Refund(ctx context.Context, paymentID, artistID int64) (*models.LiveClassPayment, error) {
	if paymentID <= 0 {
		return nil, ErrInvalidInput
	}

	current, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if current.ArtistID != artistID {
		return nil, ErrUnauthorized
	}
	if current.Status != models.PaymentCompleted {
		return nil, ErrInvalidTransition
	}

	refunded, err := s.paymentRepo.UpdateStatusIfCurrent(ctx, paymentID, models.PaymentCompleted, models.PaymentRefunded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return refunded, nil
}

// ListByClass returns a class's payment history to its owning artist.
func (s *PaymentService) ListByClass(ctx context.Context, classID, artistID int64) ([]models.LiveClassPayment, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.ArtistID != artistID {
		return nil, ErrUnauthorized
	}
	return s.paymentRepo.ListByClass(ctx, classID)
}
