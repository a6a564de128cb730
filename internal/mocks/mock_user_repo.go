package mocks

import (
	"context"

	"github.com/ozanyurt/cinebook/internal/domain"
)

type MockUserRepo struct {
	GetByIdFunc func(ctx context.Context, id int) (*domain.User, error)
}

func (m *MockUserRepo) GetById(ctx context.Context, id int) (*domain.User, error) {
	return m.GetByIdFunc(ctx, id)
}
