package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
)

type MockHoldStore struct {
	CreateFunc           func(ctx context.Context, hold domain.Hold) error
	GetFunc              func(ctx context.Context, holdID string) (*domain.Hold, error)
	GetSessionHoldIDFunc func(ctx context.Context, sessionID string, screeningID int) (string, error)
	ReleaseFunc          func(ctx context.Context, holdID string) (bool, error)
	ClaimFunc            func(ctx context.Context, holdID string) (*domain.Hold, error)
	ReleaseSeatsFunc     func(ctx context.Context, hold domain.Hold) error
	PruneScreeningFunc   func(ctx context.Context, screeningID int) ([]int, []int, error)
}

func (m *MockHoldStore) Create(ctx context.Context, hold domain.Hold) error {
	return m.CreateFunc(ctx, hold)
}

func (m *MockHoldStore) Get(ctx context.Context, holdID string) (*domain.Hold, error) {
	return m.GetFunc(ctx, holdID)
}

func (m *MockHoldStore) GetSessionHoldID(ctx context.Context, sessionID string, screeningID int) (string, error) {
	return m.GetSessionHoldIDFunc(ctx, sessionID, screeningID)
}

func (m *MockHoldStore) Release(ctx context.Context, holdID string) (bool, error) {
	return m.ReleaseFunc(ctx, holdID)
}

func (m *MockHoldStore) Claim(ctx context.Context, holdID string) (*domain.Hold, error) {
	return m.ClaimFunc(ctx, holdID)
}

func (m *MockHoldStore) ReleaseSeats(ctx context.Context, hold domain.Hold) error {
	return m.ReleaseSeatsFunc(ctx, hold)
}

func (m *MockHoldStore) PruneScreening(ctx context.Context, screeningID int) ([]int, []int, error) {
	return m.PruneScreeningFunc(ctx, screeningID)
}
