package unit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/fulfillment"
	"github.com/Ekta-2312/Copy-Innovate-Backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published notifications so tests can assert on
// the fan-out without a real hub.
type capturePublisher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (p *capturePublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *capturePublisher) Sent() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Notification, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *capturePublisher) Types() []domain.NotificationType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.NotificationType, 0, len(p.sent))
	for _, n := range p.sent {
		types = append(types, n.Type)
	}
	return types
}

type fulfillmentFixture struct {
	donorRepo    *mocks.DonorRepository
	requestRepo  *mocks.BloodRequestRepository
	locationRepo *mocks.LocationRepository
	donationRepo *mocks.DonationRepository
	tokenRepo    *mocks.TokenRepository
	hospitalRepo *mocks.HospitalRepository
	userRepo     *mocks.UserRepository
	auditRepo    *mocks.AuditLogRepository
	settings     *mocks.SettingsService
	email        *mocks.EmailService
	sms          *mocks.SMSService
	publisher    *capturePublisher
	svc          fulfillment.Service
}

func newFulfillmentFixture(policy fulfillment.WalkInPolicy) *fulfillmentFixture {
	f := &fulfillmentFixture{
		donorRepo:    new(mocks.DonorRepository),
		requestRepo:  new(mocks.BloodRequestRepository),
		locationRepo: new(mocks.LocationRepository),
		donationRepo: new(mocks.DonationRepository),
		tokenRepo:    new(mocks.TokenRepository),
		hospitalRepo: new(mocks.HospitalRepository),
		userRepo:     new(mocks.UserRepository),
		auditRepo:    new(mocks.AuditLogRepository),
		settings:     new(mocks.SettingsService),
		email:        new(mocks.EmailService),
		sms:          new(mocks.SMSService),
		publisher:    &capturePublisher{},
	}

	repos := &repository.Repositories{
		User:         f.userRepo,
		Hospital:     f.hospitalRepo,
		BloodRequest: f.requestRepo,
		Donor:        f.donorRepo,
		Location:     f.locationRepo,
		Donation:     f.donationRepo,
		Token:        f.tokenRepo,
		AuditLog:     f.auditRepo,
	}

	f.svc = fulfillment.NewService(repos, f.settings, f.email, f.sms, f.publisher, policy)

	// Ambient expectations shared by every path.
	f.settings.On("CountryCode", mock.Anything).Return("91").Maybe()
	f.settings.On("FreshnessWindow", mock.Anything).Return(time.Hour).Maybe()
	f.settings.On("SMSEnabled", mock.Anything).Return(false).Maybe()
	f.sms.On("Enabled").Return(false).Maybe()
	f.userRepo.On("ListByHospital", mock.Anything, mock.Anything).Return([]domain.User{}, nil).Maybe()
	f.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	return f
}

func activeRequest(quantity, confirmed int, tokens ...string) *domain.BloodRequest {
	return &domain.BloodRequest{
		ID:             uuid.New(),
		HospitalID:     uuid.New(),
		BloodGroup:     domain.BloodOPos,
		Quantity:       quantity,
		ConfirmedUnits: confirmed,
		Status:         domain.RequestActive,
		Urgency:        domain.UrgencyNormal,
		RequiredBy:     time.Now().Add(6 * time.Hour),
		ActiveTokens:   pq.StringArray(tokens),
		CreatedAt:      time.Now().Add(-time.Hour),
	}
}

func liveShare(donorID *uuid.UUID, phone string, requestID *uuid.UUID, token domain.SubmissionToken) *domain.DonorLocation {
	now := time.Now().UTC().Add(-5 * time.Minute)
	return &domain.DonorLocation{
		ID:         uuid.New(),
		DonorID:    donorID,
		DonorName:  "Ravi Kumar",
		Phone:      phone,
		Latitude:   23.0225,
		Longitude:  72.5714,
		RequestID:  requestID,
		Token:      token,
		RecordedAt: &now,
		CreatedAt:  now,
	}
}

func TestFulfillmentConfirm_TokenizedSuccess(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{
		ID:         uuid.New(),
		FullName:   "Ravi Kumar",
		Phone:      "9876543210",
		BloodGroup: domain.BloodOPos,
	}
	req := activeRequest(1, 0, "T1")
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, domain.TokenizedSubmission("T1")).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestFulfilled}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Donation) bool {
		return d.RequestID == req.ID && d.Status == domain.DonationCompleted && d.DonorName == donor.FullName
	})).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, &donor.ID, mock.Anything).Return(int64(1), nil)
	f.donorRepo.On("StampDonation", mock.Anything, donor.ID, mock.Anything).Return(nil)

	receipt, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: "98765 43210", ConfirmedBy: uuid.New()})
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, donor.FullName, receipt.DonorName)
	assert.Equal(t, req.ID, receipt.RequestID)
	assert.Equal(t, 1, receipt.ConfirmedUnits)
	assert.Equal(t, domain.RequestFulfilled, receipt.RequestStatus)

	assert.Contains(t, f.publisher.Types(), domain.NotifDonationConfirmed)
	assert.Contains(t, f.publisher.Types(), domain.NotifRequestFulfilled)

	f.requestRepo.AssertExpectations(t)
	f.donationRepo.AssertExpectations(t)
	f.locationRepo.AssertExpectations(t)
}

func TestFulfillmentConfirm_RepeatAfterSuccessIsAlreadyDonated(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(1, 0, "T1")
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil).Once()
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(nil, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil).Once()
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(true, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestFulfilled}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, &donor.ID, mock.Anything).Return(int64(1), nil)
	f.donorRepo.On("StampDonation", mock.Anything, donor.ID, mock.Anything).Return(nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	require.NoError(t, err)

	// The donor's state is terminal now. Even though their guard key is
	// retained after success, the history fence answers first: the kiosk
	// shows AlreadyDonated, never a transient retry-later message.
	_, err = f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	require.ErrorIs(t, err, domain.ErrAlreadyDonated)
	f.requestRepo.AssertNumberOfCalls(t, "ReserveUnit", 1)
}

func TestFulfillmentConfirm_GuardFencesWhileHistoryLags(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(2, 0, "T1")
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	// History stays invisible, as with a lagging read replica.
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestActive}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, &donor.ID, mock.Anything).Return(int64(1), nil)
	f.donorRepo.On("StampDonation", mock.Anything, donor.ID, mock.Anything).Return(nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	require.NoError(t, err)

	// The retained guard key is the backstop when the history row is not
	// yet visible: the retry is refused instead of reserving a second unit.
	_, err = f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessing)
	f.requestRepo.AssertNumberOfCalls(t, "ReserveUnit", 1)
}

func TestFulfillmentConfirm_AlreadyDonated(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	// The history fence fires even when the consumed share is gone.
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(nil, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(true, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrAlreadyDonated)

	// Terminal failure releases the guard; the retry gets the same answer
	// instead of AlreadyProcessing.
	_, err = f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrAlreadyDonated)
}

func TestFulfillmentConfirm_NoLiveShare(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}

	f.donorRepo.On("GetByID", mock.Anything, donor.ID).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(nil, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.ID.String(), ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrDonorNotFound)

	f.requestRepo.AssertNotCalled(t, "ReserveUnit", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillmentConfirm_UnknownDonorID(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	id := uuid.New()
	f.donorRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: id.String(), ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrDonorNotFound)
}

func TestFulfillmentConfirm_RequestExpired(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(1, 0, "T1")
	req.RequiredBy = time.Now().Add(-time.Minute)
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("MarkExpired", mock.Anything, req.ID).Return(true, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrRequestExpired)

	// The lapsed deadline was enforced, announced, and nothing was reserved.
	assert.Contains(t, f.publisher.Types(), domain.NotifRequestExpired)
	f.requestRepo.AssertCalled(t, "MarkExpired", mock.Anything, req.ID)
	f.requestRepo.AssertNotCalled(t, "ReserveUnit", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillmentConfirm_ReservationConflict(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(1, 0, "T1")
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: false}, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrReservationConflict)

	f.donationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.locationRepo.AssertNotCalled(t, "DeleteForDonor", mock.Anything, mock.Anything, mock.Anything)
}

func TestFulfillmentConfirm_WalkInFallbackCreatesRequest(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodBNeg}
	loc := liveShare(&donor.ID, donor.Phone, nil, domain.DirectSubmission())
	walkIn := &domain.Hospital{ID: uuid.New(), Name: domain.WalkInHospitalName}

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("FindNewestActiveByBloodGroup", mock.Anything, domain.BloodBNeg).Return(nil, nil)
	f.hospitalRepo.On("EnsureWalkIn", mock.Anything).Return(walkIn, nil)

	var fabricated *domain.BloodRequest
	f.requestRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.BloodRequest) bool {
		fabricated = r
		return r.HospitalID == walkIn.ID &&
			r.BloodGroup == domain.BloodBNeg &&
			r.Quantity == 1 &&
			r.Status == domain.RequestActive &&
			r.RequiredBy.After(time.Now().Add(23*time.Hour))
	})).Return(nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, mock.Anything, domain.DirectSubmission()).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestFulfilled}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, &donor.ID, mock.Anything).Return(int64(1), nil)
	f.donorRepo.On("StampDonation", mock.Anything, donor.ID, mock.Anything).Return(nil)

	receipt, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	require.NoError(t, err)
	require.NotNil(t, fabricated)
	assert.Equal(t, fabricated.ID, receipt.RequestID)
	assert.Equal(t, walkIn.ID, receipt.HospitalID)
}

func TestFulfillmentConfirm_WalkInPolicyDisabled(t *testing.T) {
	policy := fulfillment.DefaultWalkInPolicy()
	policy.Enabled = false
	f := newFulfillmentFixture(policy)
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodBNeg}
	loc := liveShare(&donor.ID, donor.Phone, nil, domain.DirectSubmission())

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("FindNewestActiveByBloodGroup", mock.Anything, domain.BloodBNeg).Return(nil, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	f.hospitalRepo.AssertNotCalled(t, "EnsureWalkIn", mock.Anything)
	f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFulfillmentConfirm_ExplicitRequestClosedFallsThrough(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	closed := activeRequest(1, 1)
	closed.Status = domain.RequestFulfilled
	fallback := activeRequest(3, 1, "T9")
	loc := liveShare(&donor.ID, donor.Phone, nil, domain.DirectSubmission())

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, closed.ID).Return(closed, nil)
	f.requestRepo.On("FindNewestActiveByBloodGroup", mock.Anything, domain.BloodOPos).Return(fallback, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, fallback.ID, domain.DirectSubmission()).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 2, Status: domain.RequestActive}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, &donor.ID, mock.Anything).Return(int64(1), nil)
	f.donorRepo.On("StampDonation", mock.Anything, donor.ID, mock.Anything).Return(nil)

	receipt, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{
		DonorKey:    donor.Phone,
		RequestID:   &closed.ID,
		ConfirmedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, receipt.RequestID)
	assert.Equal(t, domain.RequestActive, receipt.RequestStatus)
}

// A tokenized share stays tokenized even when resolution falls back to a
// different request than the one the token was minted for: the ledger's
// token guard must see the token, and refuses the unit when the resolved
// request's active set does not carry it.
func TestFulfillmentConfirm_TokenHeldAcrossFallbackResolution(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	closed := activeRequest(1, 1, "T1")
	closed.Status = domain.RequestFulfilled
	fallback := activeRequest(3, 0, "T9")
	loc := liveShare(&donor.ID, donor.Phone, &closed.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, closed.ID).Return(closed, nil)
	f.requestRepo.On("FindNewestActiveByBloodGroup", mock.Anything, domain.BloodOPos).Return(fallback, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, fallback.ID, domain.TokenizedSubmission("T1")).
		Return(&domain.ReservationResult{Applied: false}, nil)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrReservationConflict)

	// No direct-sentinel downgrade slipped past the token guard.
	f.requestRepo.AssertCalled(t, "ReserveUnit", mock.Anything, fallback.ID, domain.TokenizedSubmission("T1"))
	f.donationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestFulfillmentConfirm_SingleUnitRace runs concurrent confirmations of
// different donors against a request with one unit left. Exactly one
// reservation applies; every loser gets a conflict and writes nothing.
func TestFulfillmentConfirm_SingleUnitRace(t *testing.T) {
	const racers = 8

	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	req := activeRequest(1, 0)
	loc := liveShare(nil, "9876543210", &req.ID, domain.DirectSubmission())
	loc.DonorName = ""

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(nil, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	// First committer wins the conditional increment; everyone after sees
	// a non-applied result, which is how the SQL guard behaves.
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestFulfilled}, nil).Once()
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: false}, nil)

	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.locationRepo.On("DeleteForDonor", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		phone := "98765432" + string(rune('1'+i)) + "0"
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: key, ConfirmedBy: uuid.New()})
			errs <- err
		}(phone)
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domain.ErrReservationConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, conflicts)
	f.donationRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestFulfillmentConfirm_HistoryWriteFailureSurfaces(t *testing.T) {
	f := newFulfillmentFixture(fulfillment.DefaultWalkInPolicy())
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Ravi Kumar", Phone: "9876543210", BloodGroup: domain.BloodOPos}
	req := activeRequest(2, 0, "T1")
	loc := liveShare(&donor.ID, donor.Phone, &req.ID, domain.TokenizedSubmission("T1"))

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("GetLatestForDonor", mock.Anything, &donor.ID, mock.Anything, mock.Anything).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, &donor.ID, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.requestRepo.On("ReserveUnit", mock.Anything, req.ID, mock.Anything).
		Return(&domain.ReservationResult{Applied: true, ConfirmedUnits: 1, Status: domain.RequestActive}, nil)
	f.donationRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.svc.Confirm(ctx, domain.ConfirmDonationInput{DonorKey: donor.Phone, ConfirmedBy: uuid.New()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrReservationConflict)

	f.locationRepo.AssertNotCalled(t, "DeleteForDonor", mock.Anything, mock.Anything, mock.Anything)
}
