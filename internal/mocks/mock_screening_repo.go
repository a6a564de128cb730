package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
)

type MockScreeningRepo struct {
	GetByIdFunc        func(ctx context.Context, id int) (*domain.Screening, error)
	GetUpcomingIDsFunc func(ctx context.Context) ([]int, error)
}

func (m *MockScreeningRepo) GetById(ctx context.Context, id int) (*domain.Screening, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockScreeningRepo) GetUpcomingIDs(ctx context.Context) ([]int, error) {
	return m.GetUpcomingIDsFunc(ctx)
}
