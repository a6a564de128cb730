package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
)

type MockSeatRepo struct {
	GetSeatsByScreeningFunc           func(ctx context.Context, screeningID int) (*domain.ScreeningSeats, error)
	GetSeatsByScreeningAndSeatIdsFunc func(ctx context.Context, screeningID int, seatIDs []int) (*domain.ScreeningSeats, error)
}

func (m *MockSeatRepo) GetSeatsByScreening(ctx context.Context, screeningID int) (*domain.ScreeningSeats, error) {
	return m.GetSeatsByScreeningFunc(ctx, screeningID)
}

func (m *MockSeatRepo) GetSeatsByScreeningAndSeatIds(
	ctx context.Context,
	screeningID int,
	seatIDs []int) (*domain.ScreeningSeats, error) {

	return m.GetSeatsByScreeningAndSeatIdsFunc(ctx, screeningID, seatIDs)
}
