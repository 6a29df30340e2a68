package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
)

// Stats are cached briefly; live donor counts shift as shares age out, so the
// TTL stays well under the freshness window.
const statsTTL = time.Minute

type Stats struct {
	ActiveRequests    int64                         `json:"active_requests"`
	FulfilledRequests int64                         `json:"fulfilled_requests"`
	UnitsNeeded       int64                         `json:"units_needed"`
	UnitsConfirmed    int64                         `json:"units_confirmed"`
	DonationsToday    int64                         `json:"donations_today"`
	TotalDonations    int64                         `json:"total_donations"`
	AvailableDonors   int64                         `json:"available_donors"`
	LiveDonors        int64                         `json:"live_donors"`
	DemandByGroup     []repository.BloodGroupDemand `json:"demand_by_group"`
	GeneratedAt       time.Time                     `json:"generated_at"`
}

type Service interface {
	// GetStats aggregates the dashboard counters, scoped to one hospital
	// when hospitalID is set and platform-wide otherwise.
	GetStats(ctx context.Context, hospitalID *uuid.UUID) (*Stats, error)
}

type service struct {
	requestRepo  repository.BloodRequestRepository
	donationRepo repository.DonationRepository
	donorRepo    repository.DonorRepository
	locationRepo repository.LocationRepository
	settingsSvc  settings.Service
	redis        *redis.Client
}

func NewService(
	requestRepo repository.BloodRequestRepository,
	donationRepo repository.DonationRepository,
	donorRepo repository.DonorRepository,
	locationRepo repository.LocationRepository,
	settingsSvc settings.Service,
	redisClient *redis.Client,
) Service {
	return &service{
		requestRepo:  requestRepo,
		donationRepo: donationRepo,
		donorRepo:    donorRepo,
		locationRepo: locationRepo,
		settingsSvc:  settingsSvc,
		redis:        redisClient,
	}
}

func (s *service) GetStats(ctx context.Context, hospitalID *uuid.UUID) (*Stats, error) {
	cacheKey := "dashboard:stats"
	if hospitalID != nil {
		cacheKey = fmt.Sprintf("dashboard:stats:%s", hospitalID)
	}

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	now := time.Now()

	activeRequests, err := s.requestRepo.CountByStatus(ctx, hospitalID, domain.RequestActive)
	if err != nil {
		return nil, err
	}

	fulfilledRequests, err := s.requestRepo.CountByStatus(ctx, hospitalID, domain.RequestFulfilled)
	if err != nil {
		return nil, err
	}

	unitsNeeded, unitsConfirmed, err := s.requestRepo.OutstandingUnits(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	donationsToday, err := s.donationRepo.CountSince(ctx, hospitalID, startOfDay)
	if err != nil {
		return nil, err
	}

	totalDonations, err := s.donationRepo.CountCompleted(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	availableDonors, err := s.donorRepo.CountAvailable(ctx)
	if err != nil {
		return nil, err
	}

	window := s.settingsSvc.FreshnessWindow(ctx)
	liveDonors, err := s.locationRepo.CountLive(ctx, now.Add(-window))
	if err != nil {
		return nil, err
	}

	demand, err := s.requestRepo.DemandByBloodGroup(ctx)
	if err != nil {
		return nil, err
	}
	if demand == nil {
		demand = []repository.BloodGroupDemand{}
	}

	stats := &Stats{
		ActiveRequests:    activeRequests,
		FulfilledRequests: fulfilledRequests,
		UnitsNeeded:       unitsNeeded,
		UnitsConfirmed:    unitsConfirmed,
		DonationsToday:    donationsToday,
		TotalDonations:    totalDonations,
		AvailableDonors:   availableDonors,
		LiveDonors:        liveDonors,
		DemandByGroup:     demand,
		GeneratedAt:       now.UTC(),
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, cacheKey, statsJSON, statsTTL).Err()
		}
	}

	return stats, nil
}
