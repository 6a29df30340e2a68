package location

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
)

// LiveLocation pairs a share with its freshness countdown for dashboards.
type LiveLocation struct {
	domain.DonorLocation
	Expiry domain.LocationExpiry `json:"expiry"`
}

type Service interface {
	// Submit validates the submission token, consumes it on first use and
	// appends the share. Resubmissions by the same donor with an already
	// consumed token are accepted as position updates.
	Submit(ctx context.Context, input domain.SubmitLocationInput) (*domain.DonorLocation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorLocation, error)
	ListLiveByRequest(ctx context.Context, requestID uuid.UUID) ([]LiveLocation, error)
	ListLiveByHospital(ctx context.Context, hospitalID uuid.UUID) ([]LiveLocation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Window(ctx context.Context) time.Duration
}

type service struct {
	locationRepo repository.LocationRepository
	tokenRepo    repository.TokenRepository
	donorRepo    repository.DonorRepository
	requestRepo  repository.BloodRequestRepository
	settings     settings.Service
	feedChannel  string
}

func NewService(
	locationRepo repository.LocationRepository,
	tokenRepo repository.TokenRepository,
	donorRepo repository.DonorRepository,
	requestRepo repository.BloodRequestRepository,
	settingsSvc settings.Service,
	cfg *config.Config,
) Service {
	return &service{
		locationRepo: locationRepo,
		tokenRepo:    tokenRepo,
		donorRepo:    donorRepo,
		requestRepo:  requestRepo,
		settings:     settingsSvc,
		feedChannel:  cfg.FeedChannel,
	}
}

func (s *service) Submit(ctx context.Context, input domain.SubmitLocationInput) (*domain.DonorLocation, error) {
	now := time.Now().UTC()
	token := domain.ParseSubmissionToken(input.Token)

	var donorID *uuid.UUID
	requestID := input.RequestID

	if token.IsDirect() {
		// Kiosk/staff path: no token to validate; link a profile when the
		// phone resolves to one.
		cc := s.settings.CountryCode(ctx)
		donor, err := s.donorRepo.GetByPhoneVariants(ctx, domain.PhoneVariants(input.Phone, cc))
		if err != nil {
			return nil, err
		}
		if donor != nil {
			donorID = &donor.ID
		}
	} else {
		rt, err := s.tokenRepo.GetByToken(ctx, token.Token())
		if err != nil {
			return nil, err
		}
		if rt == nil || rt.IsExpired(now) {
			return nil, domain.ErrTokenInvalid
		}

		if rt.IsUsed {
			// Position update: only the donor the token was minted for may
			// reuse it.
			same, err := s.sameDonor(ctx, rt.DonorID, input.Phone)
			if err != nil {
				return nil, err
			}
			if !same {
				return nil, domain.ErrTokenUsed
			}
		} else {
			if _, err := s.tokenRepo.MarkUsed(ctx, rt.Token); err != nil {
				return nil, err
			}
		}

		donorID = &rt.DonorID
		if requestID == nil {
			requestID = &rt.RequestID
		}
	}

	if requestID != nil {
		req, err := s.requestRepo.GetByID(ctx, *requestID)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, domain.ErrRequestNotFound
		}
	}

	recordedAt := input.RecordedAt
	if recordedAt != nil && recordedAt.After(now) {
		// Client clock skew: a future fix time would keep the entry live
		// past its real window.
		recordedAt = &now
	}

	loc := &domain.DonorLocation{
		ID:         uuid.New(),
		DonorID:    donorID,
		DonorName:  input.DonorName,
		Phone:      input.Phone,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Address:    input.Address,
		RequestID:  requestID,
		Token:      token,
		RecordedAt: recordedAt,
	}

	if err := s.locationRepo.Create(ctx, loc, s.feedChannel); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *service) sameDonor(ctx context.Context, donorID uuid.UUID, submittedPhone string) (bool, error) {
	donor, err := s.donorRepo.GetByID(ctx, donorID)
	if err != nil {
		return false, err
	}
	if donor == nil {
		return false, nil
	}

	cc := s.settings.CountryCode(ctx)
	submitted := domain.NormalizePhone(submittedPhone)
	for _, v := range domain.PhoneVariants(donor.Phone, cc) {
		if v == submitted {
			return true, nil
		}
	}
	for _, v := range domain.PhoneVariants(submittedPhone, cc) {
		if v == domain.NormalizePhone(donor.Phone) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorLocation, error) {
	loc, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	return loc, nil
}

func (s *service) ListLiveByRequest(ctx context.Context, requestID uuid.UUID) ([]LiveLocation, error) {
	now := time.Now().UTC()
	window := s.Window(ctx)

	locations, err := s.locationRepo.ListByRequest(ctx, requestID, now.Add(-window))
	if err != nil {
		return nil, err
	}
	return s.annotate(locations, now, window), nil
}

func (s *service) ListLiveByHospital(ctx context.Context, hospitalID uuid.UUID) ([]LiveLocation, error) {
	now := time.Now().UTC()
	window := s.Window(ctx)

	locations, err := s.locationRepo.ListByHospital(ctx, hospitalID, now.Add(-window))
	if err != nil {
		return nil, err
	}
	return s.annotate(locations, now, window), nil
}

// annotate re-applies the freshness filter on top of the SQL cutoff (the
// query and the annotation read the clock at slightly different instants)
// and attaches expiry metadata.
func (s *service) annotate(locations []domain.DonorLocation, now time.Time, window time.Duration) []LiveLocation {
	live := FilterLive(locations, now, window)
	out := make([]LiveLocation, 0, len(live))
	for i := range live {
		out = append(out, LiveLocation{
			DonorLocation: live[i],
			Expiry:        ExpiryOf(&live[i], now, window),
		})
	}
	return out
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.locationRepo.Delete(ctx, id)
}

func (s *service) Window(ctx context.Context) time.Duration {
	return s.settings.FreshnessWindow(ctx)
}
