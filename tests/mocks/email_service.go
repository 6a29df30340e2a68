package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	args := m.Called(ctx, toEmail, fullName, verificationToken)
	return args.Error(0)
}

func (m *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	args := m.Called(ctx, toEmail, fullName, resetToken)
	return args.Error(0)
}

func (m *EmailService) SendDonationInviteEmail(ctx context.Context, toEmail, donorName, hospitalName, bloodGroup, urgency, responseLink string) error {
	args := m.Called(ctx, toEmail, donorName, hospitalName, bloodGroup, urgency, responseLink)
	return args.Error(0)
}

func (m *EmailService) SendRequestFulfilledEmail(ctx context.Context, toEmail, recipientName, bloodGroup string, quantity int) error {
	args := m.Called(ctx, toEmail, recipientName, bloodGroup, quantity)
	return args.Error(0)
}

func (m *EmailService) SendDonationThanksEmail(ctx context.Context, toEmail, donorName, hospitalName string) error {
	args := m.Called(ctx, toEmail, donorName, hospitalName)
	return args.Error(0)
}

func (m *EmailService) SendDocumentReviewedEmail(ctx context.Context, toEmail, hospitalName, status string) error {
	args := m.Called(ctx, toEmail, hospitalName, status)
	return args.Error(0)
}
