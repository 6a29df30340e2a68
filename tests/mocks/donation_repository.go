package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type DonationRepository struct {
	mock.Mock
}

func (m *DonationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *DonationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

func (m *DonationRepository) ExistsCompleted(ctx context.Context, donorID *uuid.UUID, phoneVariants []string) (bool, error) {
	args := m.Called(ctx, donorID, phoneVariants)
	return args.Bool(0), args.Error(1)
}

func (m *DonationRepository) List(ctx context.Context, hospitalID *uuid.UUID, params domain.PaginationParams) ([]domain.Donation, int64, error) {
	args := m.Called(ctx, hospitalID, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Donation), args.Get(1).(int64), args.Error(2)
}

func (m *DonationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Donation, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donation), args.Error(1)
}

func (m *DonationRepository) CountSince(ctx context.Context, hospitalID *uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, hospitalID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DonationRepository) CountCompleted(ctx context.Context, hospitalID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, hospitalID)
	return args.Get(0).(int64), args.Error(1)
}
