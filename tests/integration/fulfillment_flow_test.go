//go:build integration
// +build integration

package integration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/email"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/fulfillment"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/sms"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (p *recordingPublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

type flowFixture struct {
	env      *TestEnv
	svc      fulfillment.Service
	pub      *recordingPublisher
	hospital *domain.Hospital
	staff    uuid.UUID
}

func newFlowFixture(t *testing.T) *flowFixture {
	return newFlowFixtureWithPolicy(t, fulfillment.DefaultWalkInPolicy())
}

func newFlowFixtureWithPolicy(t *testing.T, policy fulfillment.WalkInPolicy) *flowFixture {
	env := SetupTestEnv(t)
	t.Cleanup(env.Teardown)

	pub := &recordingPublisher{}
	settingsSvc := settings.NewService(env.Repos.Setting, env.Repos.AuditLog, env.Cfg)
	svc := fulfillment.NewService(
		env.Repos,
		settingsSvc,
		email.NewService(env.Cfg),
		sms.NewService(env.Cfg),
		pub,
		policy,
	)

	ctx := context.Background()
	city := "Pune"
	hospital := &domain.Hospital{
		ID:         uuid.New(),
		Name:       "City Care Hospital",
		City:       &city,
		IsVerified: true,
	}
	require.NoError(t, env.Repos.Hospital.Create(ctx, hospital))

	staff := uuid.New()
	_, err := env.DB.Exec(
		`INSERT INTO users (id, hospital_id, email, password_hash, full_name, role) VALUES ($1, $2, $3, $4, $5, 'staff')`,
		staff, hospital.ID, "staff@citycare.example", "x", "Duty Staff",
	)
	require.NoError(t, err)

	return &flowFixture{env: env, svc: svc, pub: pub, hospital: hospital, staff: staff}
}

func (f *flowFixture) seedDonor(t *testing.T, name, phone string, group domain.BloodGroup) *domain.Donor {
	donor := &domain.Donor{
		ID:          uuid.New(),
		FullName:    name,
		Phone:       phone,
		BloodGroup:  group,
		IsAvailable: true,
	}
	require.NoError(t, f.env.Repos.Donor.Create(context.Background(), donor))
	return donor
}

func (f *flowFixture) seedRequest(t *testing.T, group domain.BloodGroup, quantity int, tokens ...string) *domain.BloodRequest {
	req := &domain.BloodRequest{
		ID:           uuid.New(),
		HospitalID:   f.hospital.ID,
		BloodGroup:   group,
		Quantity:     quantity,
		Status:       domain.RequestActive,
		Urgency:      domain.UrgencyNormal,
		RequiredBy:   time.Now().UTC().Add(48 * time.Hour),
		ActiveTokens: pq.StringArray(tokens),
		CreatedBy:    f.staff,
	}
	require.NoError(t, f.env.Repos.BloodRequest.Create(context.Background(), req))
	return req
}

func (f *flowFixture) seedLiveLocation(t *testing.T, donor *domain.Donor, req *domain.BloodRequest, token domain.SubmissionToken) *domain.DonorLocation {
	now := time.Now().UTC()
	loc := &domain.DonorLocation{
		ID:         uuid.New(),
		DonorID:    &donor.ID,
		DonorName:  donor.FullName,
		Phone:      donor.Phone,
		Latitude:   18.5204,
		Longitude:  73.8567,
		Token:      token,
		RecordedAt: &now,
	}
	if req != nil {
		loc.RequestID = &req.ID
	}
	require.NoError(t, f.env.Repos.Location.Create(context.Background(), loc, f.env.Cfg.FeedChannel))
	return loc
}

func (f *flowFixture) confirm(donorKey string) (*domain.DonationReceipt, error) {
	return f.svc.Confirm(context.Background(), domain.ConfirmDonationInput{
		DonorKey:    donorKey,
		ConfirmedBy: f.staff,
	})
}

func TestFulfillmentFlow_TokenizedConfirm(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	donor := f.seedDonor(t, "Asha Patel", "9876543210", domain.BloodAPos)
	req := f.seedRequest(t, domain.BloodAPos, 1, "tok-asha")
	f.seedLiveLocation(t, donor, req, domain.TokenizedSubmission("tok-asha"))

	receipt, err := f.confirm(donor.Phone)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, req.ID, receipt.RequestID)
	assert.Equal(t, 1, receipt.ConfirmedUnits)
	assert.Equal(t, domain.RequestFulfilled, receipt.RequestStatus)
	assert.Equal(t, "Asha Patel", receipt.DonorName)

	// The request row reflects the promotion and the token wipe.
	stored, err := f.env.Repos.BloodRequest.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestFulfilled, stored.Status)
	assert.Equal(t, 1, stored.ConfirmedUnits)
	assert.Empty(t, []string(stored.ActiveTokens))
	assert.NotNil(t, stored.FulfilledAt)

	// Donation history was written with the hospital attribution.
	var count int
	require.NoError(t, f.env.DB.Get(&count,
		`SELECT COUNT(*) FROM donations WHERE donor_id = $1 AND request_id = $2 AND hospital_id = $3 AND status = 'completed'`,
		donor.ID, req.ID, f.hospital.ID))
	assert.Equal(t, 1, count)

	// The consumed live location is gone.
	cutoff := time.Now().UTC().Add(-f.env.Cfg.LocationFreshness)
	loc, err := f.env.Repos.Location.GetLatestForDonor(ctx, &donor.ID, nil, cutoff)
	require.NoError(t, err)
	assert.Nil(t, loc)

	stamped, err := f.env.Repos.Donor.GetByID(ctx, donor.ID)
	require.NoError(t, err)
	assert.NotNil(t, stamped.LastDonationAt)
}

func TestFulfillmentFlow_SecondConfirmIsAlreadyDonated(t *testing.T) {
	f := newFlowFixture(t)

	donor := f.seedDonor(t, "Ravi Kumar", "9811122233", domain.BloodOPos)
	req := f.seedRequest(t, domain.BloodOPos, 2, "tok-ravi")
	f.seedLiveLocation(t, donor, req, domain.TokenizedSubmission("tok-ravi"))

	_, err := f.confirm(donor.Phone)
	require.NoError(t, err)

	_, err = f.confirm(donor.Phone)
	assert.ErrorIs(t, err, domain.ErrAlreadyDonated)

	stored, err := f.env.Repos.BloodRequest.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ConfirmedUnits)
	assert.Equal(t, domain.RequestActive, stored.Status)
}

func TestFulfillmentFlow_ConcurrentConfirmsOnLastUnit(t *testing.T) {
	// Walk-in is off so the loser cannot sidestep the contested request by
	// opening a fresh placeholder one.
	f := newFlowFixtureWithPolicy(t, fulfillment.WalkInPolicy{})

	req := f.seedRequest(t, domain.BloodBPos, 1, "tok-a", "tok-b")
	donorA := f.seedDonor(t, "Donor A", "9800000001", domain.BloodBPos)
	donorB := f.seedDonor(t, "Donor B", "9800000002", domain.BloodBPos)
	f.seedLiveLocation(t, donorA, req, domain.TokenizedSubmission("tok-a"))
	f.seedLiveLocation(t, donorB, req, domain.TokenizedSubmission("tok-b"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, donor := range []*domain.Donor{donorA, donorB} {
		wg.Add(1)
		go func(i int, phone string) {
			defer wg.Done()
			_, errs[i] = f.confirm(phone)
		}(i, donor.Phone)
	}
	wg.Wait()

	// The loser fails either at the atomic reserve or, when it reads the
	// request after the winner's commit, at resolution time.
	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrReservationConflict) || errors.Is(err, domain.ErrRequestClosed):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	stored, err := f.env.Repos.BloodRequest.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestFulfilled, stored.Status)
	assert.Equal(t, 1, stored.ConfirmedUnits)

	var count int
	require.NoError(t, f.env.DB.Get(&count, `SELECT COUNT(*) FROM donations WHERE request_id = $1`, req.ID))
	assert.Equal(t, 1, count)
}

func TestFulfillmentFlow_ExpiredRequestRejectsConfirm(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	donor := f.seedDonor(t, "Meera Iyer", "9822233344", domain.BloodABNeg)
	req := f.seedRequest(t, domain.BloodABNeg, 1, "tok-meera")
	req.RequiredBy = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.env.Repos.BloodRequest.Update(ctx, req))
	f.seedLiveLocation(t, donor, req, domain.TokenizedSubmission("tok-meera"))

	_, err := f.confirm(donor.Phone)
	assert.ErrorIs(t, err, domain.ErrRequestExpired)

	stored, err := f.env.Repos.BloodRequest.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestExpired, stored.Status)
	assert.Empty(t, []string(stored.ActiveTokens))
}
