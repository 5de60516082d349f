package repository

import (
	"context"
	"time"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/models"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, class_id, student_id, artist_id, amount, commission,
	artist_earnings, status, period_start, period_end, receipt,
	razorpay_payment_id, created_at`

type CreatePaymentInput struct {
	ClassID           int64
	StudentID         int64
	ArtistID          int64
	Amount            int64
	Commission        int64
	ArtistEarnings    int64
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Receipt           string
	RazorpayPaymentID string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*models.LiveClassPayment, error) {
	var payment models.LiveClassPayment
	err := row.Scan(
		&payment.ID,
		&payment.ClassID,
		&payment.StudentID,
		&payment.ArtistID,
		&payment.Amount,
		&payment.Commission,
		&payment.ArtistEarnings,
		&payment.Status,
		&payment.PeriodStart,
		&payment.PeriodEnd,
		&payment.Receipt,
		&payment.RazorpayPaymentID,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.LiveClassPayment, error) {
	query := `
		INSERT INTO live_class_payments (
			class_id, student_id, artist_id, amount, commission, artist_earnings,
			status, period_start, period_end, receipt, razorpay_payment_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9, $10)
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.ClassID,
		input.StudentID,
		input.ArtistID,
		input.Amount,
		input.Commission,
		input.ArtistEarnings,
		input.PeriodStart,
		input.PeriodEnd,
		input.Receipt,
		input.RazorpayPaymentID,
	))
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID int64) (*models.LiveClassPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM live_class_payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, paymentID))
}

func (r *PaymentRepository) GetByExternalIDForUpdate(ctx context.Context, externalID string) (*models.LiveClassPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM live_class_payments WHERE razorpay_payment_id = $1 FOR UPDATE`
	return scanPayment(r.db.QueryRow(ctx, query, externalID))
}

func (r *PaymentRepository) ListByClass(ctx context.Context, classID int64) ([]models.LiveClassPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM live_class_payments
		WHERE class_id = $1
		ORDER BY period_start DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.LiveClassPayment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	return payments, rows.Err()
}

// HasOverlappingPeriod reports whether a non-failed payment for the same
// class+student overlaps the half-open interval [periodStart, periodEnd).
func (r *PaymentRepository) HasOverlappingPeriod(
	ctx context.Context,
	classID, studentID int64,
	periodStart, periodEnd time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM live_class_payments
			WHERE class_id = $1
			  AND student_id = $2
			  AND status <> 'failed'
			  AND period_start < $4
			  AND period_end > $3
		)
	`
	var overlaps bool
	if err := r.db.QueryRow(ctx, query, classID, studentID, periodStart, periodEnd).Scan(&overlaps); err != nil {
		return false, err
	}
	return overlaps, nil
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	paymentID int64,
	currentStatus string,
	nextStatus string,
) (*models.LiveClassPayment, error) {
	query := `
		UPDATE live_class_payments
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, paymentID, currentStatus, nextStatus))
}
