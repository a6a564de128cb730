package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentVerifier struct {
	mock.Mock
}

func (m *MockPaymentVerifier) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentVerification), args.Error(1)
}
