package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type SettingsService struct {
	mock.Mock
}

func (m *SettingsService) List(ctx context.Context) ([]domain.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Setting), args.Error(1)
}

func (m *SettingsService) Update(ctx context.Context, userID uuid.UUID, key, value string) (*domain.Setting, error) {
	args := m.Called(ctx, userID, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Setting), args.Error(1)
}

func (m *SettingsService) SMSEnabled(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *SettingsService) InviteBatchLimit(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *SettingsService) FreshnessWindow(ctx context.Context) time.Duration {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration)
}

func (m *SettingsService) CountryCode(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}
