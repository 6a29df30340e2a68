package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type HospitalRepository struct {
	mock.Mock
}

func (m *HospitalRepository) Create(ctx context.Context, hospital *domain.Hospital) error {
	args := m.Called(ctx, hospital)
	return args.Error(0)
}

func (m *HospitalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hospital, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hospital), args.Error(1)
}

func (m *HospitalRepository) GetByName(ctx context.Context, name string) (*domain.Hospital, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hospital), args.Error(1)
}

func (m *HospitalRepository) Update(ctx context.Context, hospital *domain.Hospital) error {
	args := m.Called(ctx, hospital)
	return args.Error(0)
}

func (m *HospitalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *HospitalRepository) List(ctx context.Context, params domain.PaginationParams, search string) ([]domain.Hospital, int64, error) {
	args := m.Called(ctx, params, search)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Hospital), args.Get(1).(int64), args.Error(2)
}

func (m *HospitalRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

func (m *HospitalRepository) EnsureWalkIn(ctx context.Context) (*domain.Hospital, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hospital), args.Error(1)
}
