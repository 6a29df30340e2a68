package unit_test

import (
	"context"
	"testing"
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/request"
	"github.com/Ekta-2312/Copy-Innovate-Backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	requestRepo  *mocks.BloodRequestRepository
	hospitalRepo *mocks.HospitalRepository
	donorRepo    *mocks.DonorRepository
	tokenRepo    *mocks.TokenRepository
	auditRepo    *mocks.AuditLogRepository
	settings     *mocks.SettingsService
	email        *mocks.EmailService
	sms          *mocks.SMSService
	publisher    *capturePublisher
	svc          request.Service
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requestRepo:  new(mocks.BloodRequestRepository),
		hospitalRepo: new(mocks.HospitalRepository),
		donorRepo:    new(mocks.DonorRepository),
		tokenRepo:    new(mocks.TokenRepository),
		auditRepo:    new(mocks.AuditLogRepository),
		settings:     new(mocks.SettingsService),
		email:        new(mocks.EmailService),
		sms:          new(mocks.SMSService),
		publisher:    &capturePublisher{},
	}

	repos := &repository.Repositories{
		Hospital:     f.hospitalRepo,
		BloodRequest: f.requestRepo,
		Donor:        f.donorRepo,
		Token:        f.tokenRepo,
		AuditLog:     f.auditRepo,
	}
	cfg := &config.Config{Domain: "blood.example.org", TokenExpiry: 24 * time.Hour}
	f.svc = request.NewService(repos, f.settings, f.email, f.sms, f.publisher, cfg)

	f.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.settings.On("SMSEnabled", mock.Anything).Return(true).Maybe()
	f.settings.On("InviteBatchLimit", mock.Anything).Return(25).Maybe()
	f.sms.On("Enabled").Return(true).Maybe()

	return f
}

func TestRequestCreate_RejectsUnverifiedHospital(t *testing.T) {
	f := newRequestFixture()

	hospital := &domain.Hospital{ID: uuid.New(), Name: "City Care", IsVerified: false}
	f.hospitalRepo.On("GetByID", mock.Anything, hospital.ID).Return(hospital, nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), domain.CreateBloodRequestInput{
		HospitalID: &hospital.ID,
		BloodGroup: domain.BloodOPos,
		Quantity:   2,
		RequiredBy: time.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrHospitalNotVerified)
	f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestInviteDonors_MintsTokenPerDonor(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	hospital := &domain.Hospital{ID: uuid.New(), Name: "City Care", IsVerified: true}
	req := activeRequest(3, 0)
	req.HospitalID = hospital.ID

	email := "asha@example.org"
	donors := []domain.Donor{
		{ID: uuid.New(), FullName: "Asha Patel", Phone: "9876543210", BloodGroup: req.BloodGroup, Email: &email},
		{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9123456780", BloodGroup: req.BloodGroup},
	}

	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.hospitalRepo.On("GetByID", mock.Anything, hospital.ID).Return(hospital, nil)
	f.donorRepo.On("FindEligible", mock.Anything, req.BloodGroup, 25).Return(donors, nil)

	// The token is registered on the request before any message goes out.
	f.tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *domain.ResponseToken) bool {
		return rt.RequestID == req.ID && rt.Token != "" && !rt.IsUsed
	})).Return(nil).Times(2)
	f.requestRepo.On("AppendToken", mock.Anything, req.ID, mock.Anything).Return(true, nil).Times(2)

	f.sms.On("SendDonationInvite", mock.Anything, "9876543210", "Asha Patel", hospital.Name, req.BloodGroup, req.Urgency, mock.Anything).Return(nil)
	f.sms.On("SendDonationInvite", mock.Anything, "9123456780", "Ravi Kumar", hospital.Name, req.BloodGroup, req.Urgency, mock.Anything).Return(nil)
	f.email.On("SendDonationInviteEmail", mock.Anything, email, "Asha Patel", hospital.Name, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	invited, err := f.svc.InviteDonors(ctx, req.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, invited)

	f.tokenRepo.AssertExpectations(t)
	f.sms.AssertExpectations(t)
	f.email.AssertExpectations(t)
}

func TestRequestInviteDonors_StopsWhenRequestCloses(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	hospital := &domain.Hospital{ID: uuid.New(), Name: "City Care", IsVerified: true}
	req := activeRequest(1, 0)
	req.HospitalID = hospital.ID

	donors := []domain.Donor{
		{ID: uuid.New(), FullName: "Asha Patel", Phone: "9876543210", BloodGroup: req.BloodGroup},
		{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9123456780", BloodGroup: req.BloodGroup},
	}

	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.hospitalRepo.On("GetByID", mock.Anything, hospital.ID).Return(hospital, nil)
	f.donorRepo.On("FindEligible", mock.Anything, req.BloodGroup, 25).Return(donors, nil)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// The request closed mid-fan-out: registration reports it and the
	// remaining donors are never contacted.
	f.requestRepo.On("AppendToken", mock.Anything, req.ID, mock.Anything).Return(false, nil).Once()

	invited, err := f.svc.InviteDonors(ctx, req.ID, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, invited)

	f.sms.AssertNotCalled(t, "SendDonationInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestInviteDonors_ClosedRequest(t *testing.T) {
	f := newRequestFixture()

	req := activeRequest(1, 1)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := f.svc.InviteDonors(context.Background(), req.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRequestClosed)
}

func TestRequestCancel(t *testing.T) {
	f := newRequestFixture()

	req := activeRequest(2, 1, "T1")
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("MarkCancelled", mock.Anything, req.ID).Return(true, nil)

	cancelled, err := f.svc.Cancel(context.Background(), req.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCancelled, cancelled.Status)
	assert.Empty(t, cancelled.ActiveTokens)

	types := f.publisher.Types()
	require.Len(t, types, 1)
	assert.Equal(t, domain.NotifRequestCancelled, types[0])
}

func TestRequestCancel_AlreadyClosed(t *testing.T) {
	f := newRequestFixture()

	req := activeRequest(2, 2)
	req.Status = domain.RequestFulfilled
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("MarkCancelled", mock.Anything, req.ID).Return(false, nil)

	_, err := f.svc.Cancel(context.Background(), req.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRequestClosed)
}

func TestRequestSweepExpired(t *testing.T) {
	f := newRequestFixture()

	lapsedA := activeRequest(2, 1)
	lapsedB := activeRequest(1, 0)
	f.requestRepo.On("ExpireOverdue", mock.Anything).Return([]domain.BloodRequest{*lapsedA, *lapsedB}, nil)

	n, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	types := f.publisher.Types()
	require.Len(t, types, 2)
	for _, typ := range types {
		assert.Equal(t, domain.NotifRequestExpired, typ)
	}
}

func TestRequestUpdate_QuantityCannotDropBelowConfirmed(t *testing.T) {
	f := newRequestFixture()

	req := activeRequest(4, 3)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	lower := 2
	_, err := f.svc.Update(context.Background(), req.ID, uuid.New(), domain.UpdateBloodRequestInput{Quantity: &lower})
	assert.ErrorIs(t, err, domain.ErrQuantityBelowUnits)
}

func TestRequestRespondContext(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	hospital := &domain.Hospital{ID: uuid.New(), Name: "City Care", IsVerified: true}
	donor := &domain.Donor{ID: uuid.New(), FullName: "Asha Patel", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(3, 1)
	req.HospitalID = hospital.ID

	rt := &domain.ResponseToken{
		ID:        uuid.New(),
		Token:     "T1",
		DonorID:   donor.ID,
		RequestID: req.ID,
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}

	f.tokenRepo.On("GetByToken", mock.Anything, "T1").Return(rt, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.donorRepo.On("GetByID", mock.Anything, donor.ID).Return(donor, nil)
	f.hospitalRepo.On("GetByID", mock.Anything, hospital.ID).Return(hospital, nil)

	rc, err := f.svc.RespondContext(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, donor.FullName, rc.DonorName)
	assert.Equal(t, hospital.Name, rc.HospitalName)
	assert.Equal(t, 2, rc.UnitsLeft)
	assert.True(t, rc.RequestOpen)
	assert.False(t, rc.TokenUsed)
}
