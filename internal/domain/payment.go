package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID        int
	UserID    int
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	CreatedAt time.Time
}

// PaymentVerification is the answer of the external payment collaborator.
type PaymentVerification struct {
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	Succeeded     bool
	FailureReason string
}

// PaymentVerifier is an opaque, possibly slow external call; implementations
// must honor ctx cancellation.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error)
}
