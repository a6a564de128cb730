package payment

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

type StripeVerifier struct {
}

func NewStripeVerifier(apiKey string) *StripeVerifier {
	stripe.Key = apiKey

	return &StripeVerifier{}
}

// VerifyPayment looks up a payment intent by its reference and reports whether
// the charge went through. A declined or unfinished intent is not an error,
// the caller decides what a failed verification means for the hold.
func (s *StripeVerifier) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(reference, params)
	if err != nil {
		return nil, err
	}

	verification := &domain.PaymentVerification{
		Reference: reference,
		Amount:    decimal.NewFromInt(intent.Amount).Div(decimal.NewFromInt(100)),
		Currency:  string(intent.Currency),
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}

	if !verification.Succeeded && intent.LastPaymentError != nil {
		verification.FailureReason = intent.LastPaymentError.Msg
	}

	return verification, nil
}
