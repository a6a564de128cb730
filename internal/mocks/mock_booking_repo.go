package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
)

type MockBookingRepo struct {
	CreateFunc                func(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error
	GetSeatIDsByScreeningFunc func(ctx context.Context, screeningID int) ([]int, error)
	GetSummariesByUserIdFunc  func(ctx context.Context, userID int, pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error)
	GetByIdAndUserIdFunc      func(ctx context.Context, bookingID, userID int) (*domain.BookingDetail, error)
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	return m.CreateFunc(ctx, booking, payment)
}

func (m *MockBookingRepo) GetSeatIDsByScreening(ctx context.Context, screeningID int) ([]int, error) {
	return m.GetSeatIDsByScreeningFunc(ctx, screeningID)
}

func (m *MockBookingRepo) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	return m.GetSummariesByUserIdFunc(ctx, userID, pagination)
}

func (m *MockBookingRepo) GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*domain.BookingDetail, error) {
	return m.GetByIdAndUserIdFunc(ctx, bookingID, userID)
}
