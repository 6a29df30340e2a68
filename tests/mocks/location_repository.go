package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type LocationRepository struct {
	mock.Mock
}

func (m *LocationRepository) Create(ctx context.Context, loc *domain.DonorLocation, channel string) error {
	args := m.Called(ctx, loc, channel)
	return args.Error(0)
}

func (m *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorLocation), args.Error(1)
}

func (m *LocationRepository) GetLatestForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string, cutoff time.Time) (*domain.DonorLocation, error) {
	args := m.Called(ctx, donorID, phoneVariants, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorLocation), args.Error(1)
}

func (m *LocationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error) {
	args := m.Called(ctx, requestID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonorLocation), args.Error(1)
}

func (m *LocationRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID, cutoff time.Time) ([]domain.DonorLocation, error) {
	args := m.Called(ctx, hospitalID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonorLocation), args.Error(1)
}

func (m *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *LocationRepository) DeleteForDonor(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (int64, error) {
	args := m.Called(ctx, donorID, phoneVariants)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LocationRepository) CountLive(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
