package unit_test

import (
	"context"
	"testing"
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
	"github.com/Ekta-2312/Copy-Innovate-Backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type locationFixture struct {
	locationRepo *mocks.LocationRepository
	tokenRepo    *mocks.TokenRepository
	donorRepo    *mocks.DonorRepository
	requestRepo  *mocks.BloodRequestRepository
	settings     *mocks.SettingsService
	svc          location.Service
}

func newLocationFixture() *locationFixture {
	f := &locationFixture{
		locationRepo: new(mocks.LocationRepository),
		tokenRepo:    new(mocks.TokenRepository),
		donorRepo:    new(mocks.DonorRepository),
		requestRepo:  new(mocks.BloodRequestRepository),
		settings:     new(mocks.SettingsService),
	}
	cfg := &config.Config{FeedChannel: "donor_location_inserts", LocationFreshness: time.Hour}
	f.svc = location.NewService(f.locationRepo, f.tokenRepo, f.donorRepo, f.requestRepo, f.settings, cfg)

	f.settings.On("CountryCode", mock.Anything).Return("91").Maybe()
	f.settings.On("FreshnessWindow", mock.Anything).Return(time.Hour).Maybe()

	return f
}

func submitInput(token string) domain.SubmitLocationInput {
	return domain.SubmitLocationInput{
		DonorName: "Asha Patel",
		Phone:     "9876543210",
		Latitude:  23.0225,
		Longitude: 72.5714,
		Token:     token,
	}
}

func TestLocationSubmit_TokenizedFirstResponse(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	req := activeRequest(2, 0, "T1")
	rt := &domain.ResponseToken{
		ID:        uuid.New(),
		Token:     "T1",
		DonorID:   uuid.New(),
		RequestID: req.ID,
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}

	f.tokenRepo.On("GetByToken", mock.Anything, "T1").Return(rt, nil)
	f.tokenRepo.On("MarkUsed", mock.Anything, "T1").Return(true, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.locationRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.DonorLocation) bool {
		return l.DonorID != nil && *l.DonorID == rt.DonorID &&
			l.RequestID != nil && *l.RequestID == req.ID &&
			!l.Token.IsDirect() && l.Token.Token() == "T1"
	}), "donor_location_inserts").Return(nil)

	loc, err := f.svc.Submit(ctx, submitInput("T1"))
	require.NoError(t, err)
	assert.Equal(t, rt.DonorID, *loc.DonorID)

	f.tokenRepo.AssertCalled(t, "MarkUsed", mock.Anything, "T1")
}

func TestLocationSubmit_UsedTokenPositionUpdate(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Asha Patel", Phone: "9876543210", BloodGroup: domain.BloodAPos}
	req := activeRequest(2, 1, "T1")
	rt := &domain.ResponseToken{
		ID:        uuid.New(),
		Token:     "T1",
		DonorID:   donor.ID,
		RequestID: req.ID,
		IsUsed:    true,
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}

	f.tokenRepo.On("GetByToken", mock.Anything, "T1").Return(rt, nil)
	f.donorRepo.On("GetByID", mock.Anything, donor.ID).Return(donor, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.locationRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Submit(ctx, submitInput("T1"))
	require.NoError(t, err)

	// A position update never re-consumes the token.
	f.tokenRepo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
}

func TestLocationSubmit_UsedTokenByDifferentDonor(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	owner := &domain.Donor{ID: uuid.New(), FullName: "Someone Else", Phone: "9000000000", BloodGroup: domain.BloodAPos}
	rt := &domain.ResponseToken{
		ID:        uuid.New(),
		Token:     "T1",
		DonorID:   owner.ID,
		RequestID: uuid.New(),
		IsUsed:    true,
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}

	f.tokenRepo.On("GetByToken", mock.Anything, "T1").Return(rt, nil)
	f.donorRepo.On("GetByID", mock.Anything, owner.ID).Return(owner, nil)

	_, err := f.svc.Submit(ctx, submitInput("T1"))
	assert.ErrorIs(t, err, domain.ErrTokenUsed)

	f.locationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLocationSubmit_InvalidOrExpiredToken(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	f.tokenRepo.On("GetByToken", mock.Anything, "missing").Return(nil, nil)
	_, err := f.svc.Submit(ctx, submitInput("missing"))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	lapsed := &domain.ResponseToken{
		ID:        uuid.New(),
		Token:     "T2",
		DonorID:   uuid.New(),
		RequestID: uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	f.tokenRepo.On("GetByToken", mock.Anything, "T2").Return(lapsed, nil)
	_, err = f.svc.Submit(ctx, submitInput("T2"))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestLocationSubmit_DirectBypassesTokenValidation(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	donor := &domain.Donor{ID: uuid.New(), FullName: "Asha Patel", Phone: "9876543210", BloodGroup: domain.BloodAPos}

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(donor, nil)
	f.locationRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.DonorLocation) bool {
		return l.Token.IsDirect() && l.DonorID != nil && *l.DonorID == donor.ID
	}), mock.Anything).Return(nil)

	// The sentinel is case-insensitive at the boundary.
	_, err := f.svc.Submit(ctx, submitInput("Direct"))
	require.NoError(t, err)

	f.tokenRepo.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
}

func TestLocationSubmit_FutureFixTimeClamped(t *testing.T) {
	f := newLocationFixture()
	ctx := context.Background()

	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(nil, nil)

	var created *domain.DonorLocation
	f.locationRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.DonorLocation) bool {
		created = l
		return true
	}), mock.Anything).Return(nil)

	input := submitInput("direct")
	future := time.Now().Add(2 * time.Hour)
	input.RecordedAt = &future

	_, err := f.svc.Submit(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.RecordedAt)
	assert.False(t, created.RecordedAt.After(time.Now()))
}

func TestLocationGetByID_NotFound(t *testing.T) {
	f := newLocationFixture()

	id := uuid.New()
	f.locationRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := f.svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}
