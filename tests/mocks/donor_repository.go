package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type DonorRepository struct {
	mock.Mock
}

func (m *DonorRepository) Create(ctx context.Context, donor *domain.Donor) error {
	args := m.Called(ctx, donor)
	return args.Error(0)
}

func (m *DonorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepository) GetByPhoneVariants(ctx context.Context, variants []string) (*domain.Donor, error) {
	args := m.Called(ctx, variants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepository) GetByNameInsensitive(ctx context.Context, name string) (*domain.Donor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donor), args.Error(1)
}

func (m *DonorRepository) Update(ctx context.Context, donor *domain.Donor) error {
	args := m.Called(ctx, donor)
	return args.Error(0)
}

func (m *DonorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DonorRepository) List(ctx context.Context, params domain.PaginationParams, search string, bloodGroup *domain.BloodGroup) ([]domain.Donor, int64, error) {
	args := m.Called(ctx, params, search, bloodGroup)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Donor), args.Get(1).(int64), args.Error(2)
}

func (m *DonorRepository) FindEligible(ctx context.Context, group domain.BloodGroup, limit int) ([]domain.Donor, error) {
	args := m.Called(ctx, group, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Donor), args.Error(1)
}

func (m *DonorRepository) StampDonation(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *DonorRepository) CountAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DonorRepository) ExistsByPhone(ctx context.Context, normalized string) (bool, error) {
	args := m.Called(ctx, normalized)
	return args.Bool(0), args.Error(1)
}
