package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) Create(ctx context.Context, token *domain.ResponseToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResponseToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResponseToken), args.Error(1)
}

func (m *TokenRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
