package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// LiveClassPayment records one monthly billing outcome for a student on a
// class. Amounts are integer minor currency units (paise);
// Amount = Commission + ArtistEarnings holds exactly. The record is immutable
// once status leaves pending, except for the completed -> refunded transition.
type LiveClassPayment struct {
	ID                int64     `json:"id"`
	ClassID           int64     `json:"class_id"`
	StudentID         int64     `json:"student_id"`
	ArtistID          int64     `json:"artist_id"`
	Amount            int64     `json:"amount"`
	Commission        int64     `json:"commission"`
	ArtistEarnings    int64     `json:"artist_earnings"`
	Status            string    `json:"status"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	Receipt           string    `json:"receipt"`
	RazorpayPaymentID string    `json:"razorpay_payment_id"`
	CreatedAt         time.Time `json:"created_at"`
}
