package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

type BloodRequestRepository struct {
	mock.Mock
}

func (m *BloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *BloodRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *BloodRequestRepository) Update(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *BloodRequestRepository) List(ctx context.Context, hospitalID *uuid.UUID, status *domain.RequestStatus, bloodGroup *domain.BloodGroup, params domain.PaginationParams) ([]domain.BloodRequest, int64, error) {
	args := m.Called(ctx, hospitalID, status, bloodGroup, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.BloodRequest), args.Get(1).(int64), args.Error(2)
}

func (m *BloodRequestRepository) FindNewestActiveByBloodGroup(ctx context.Context, group domain.BloodGroup) (*domain.BloodRequest, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *BloodRequestRepository) ReserveUnit(ctx context.Context, id uuid.UUID, token domain.SubmissionToken) (*domain.ReservationResult, error) {
	args := m.Called(ctx, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationResult), args.Error(1)
}

func (m *BloodRequestRepository) AppendToken(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, id, token)
	return args.Bool(0), args.Error(1)
}

func (m *BloodRequestRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *BloodRequestRepository) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *BloodRequestRepository) ExpireOverdue(ctx context.Context) ([]domain.BloodRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}

func (m *BloodRequestRepository) CountByStatus(ctx context.Context, hospitalID *uuid.UUID, status domain.RequestStatus) (int64, error) {
	args := m.Called(ctx, hospitalID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BloodRequestRepository) OutstandingUnits(ctx context.Context, hospitalID *uuid.UUID) (int64, int64, error) {
	args := m.Called(ctx, hospitalID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *BloodRequestRepository) DemandByBloodGroup(ctx context.Context) ([]repository.BloodGroupDemand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BloodGroupDemand), args.Error(1)
}
