package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type SMSService struct {
	mock.Mock
}

func (m *SMSService) SendDonationInvite(ctx context.Context, toPhone, donorName, hospitalName string, group domain.BloodGroup, urgency domain.Urgency, responseLink string) error {
	args := m.Called(ctx, toPhone, donorName, hospitalName, group, urgency, responseLink)
	return args.Error(0)
}

func (m *SMSService) SendDonationThanks(ctx context.Context, toPhone, donorName string) error {
	args := m.Called(ctx, toPhone, donorName)
	return args.Error(0)
}

func (m *SMSService) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}
