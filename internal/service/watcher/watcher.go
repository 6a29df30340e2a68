// Package watcher consumes the donor-location change feed and pushes one
// dashboard notification per fresh share. It is the only bridge between the
// database insert path and the in-process notification hub, so API handlers
// never talk to the hub about locations directly.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
)

// defaultPingInterval keeps the feed connection verified while no shares
// arrive.
const defaultPingInterval = 90 * time.Second

type Publisher interface {
	Publish(n domain.Notification)
}

type Watcher struct {
	feed         Feed
	locationRepo repository.LocationRepository
	requestRepo  repository.BloodRequestRepository
	donationRepo repository.DonationRepository
	donorRepo    repository.DonorRepository
	settings     settings.Service
	publisher    Publisher
	pingEvery    time.Duration
}

func New(
	feed Feed,
	locationRepo repository.LocationRepository,
	requestRepo repository.BloodRequestRepository,
	donationRepo repository.DonationRepository,
	donorRepo repository.DonorRepository,
	settingsSvc settings.Service,
	publisher Publisher,
) *Watcher {
	return &Watcher{
		feed:         feed,
		locationRepo: locationRepo,
		requestRepo:  requestRepo,
		donationRepo: donationRepo,
		donorRepo:    donorRepo,
		settings:     settingsSvc,
		publisher:    publisher,
		pingEvery:    defaultPingInterval,
	}
}

// Run blocks until the context is cancelled or the feed closes. Event
// handling failures are logged and skipped; one malformed or stale event
// never stops the stream.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pingEvery)
	defer ticker.Stop()
	defer w.feed.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-w.feed.Events():
			if !ok {
				return errors.New("change feed closed")
			}
			w.handle(ctx, raw)
		case <-ticker.C:
			if err := w.feed.Ping(); err != nil {
				log.Printf("change feed ping: %v", err)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, raw string) {
	locationID, err := uuid.Parse(raw)
	if err != nil {
		log.Printf("change feed: discarding malformed event %q", raw)
		return
	}

	loc, err := w.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		log.Printf("change feed: load location %s: %v", locationID, err)
		return
	}
	if loc == nil {
		// Deleted between notify and read: the donor was confirmed already.
		return
	}

	now := time.Now().UTC()
	window := w.settings.FreshnessWindow(ctx)
	if loc.EffectiveTime().Before(now.Add(-window)) {
		return
	}

	if w.alreadyDonated(ctx, loc) {
		return
	}

	hospitalID, suppress := w.targetHospital(ctx, loc)
	if suppress {
		// The linked request closed between the share and this event.
		// Pushing it would resurrect a finished request on the dashboard.
		return
	}

	donorName, bloodGroup := w.resolveDonor(ctx, loc)
	expiry := location.ExpiryOf(loc, now, window)

	w.publisher.Publish(domain.NewNotification(hospitalID, domain.NotifDonorLocation,
		"Donor location shared",
		fmt.Sprintf("%s shared their live location", donorName),
		map[string]interface{}{
			"location_id":  loc.ID.String(),
			"donor_name":   donorName,
			"blood_group":  bloodGroup,
			"phone":        loc.Phone,
			"latitude":     loc.Latitude,
			"longitude":    loc.Longitude,
			"request_id":   loc.RequestID,
			"minutes_left": expiry.MinutesLeft,
		},
	))
}

// resolveDonor enriches the push with profile identity when the share's
// phone matches a registered donor; unknown donors keep their self-reported
// name and an empty blood group.
func (w *Watcher) resolveDonor(ctx context.Context, loc *domain.DonorLocation) (string, string) {
	cc := w.settings.CountryCode(ctx)
	profile, err := w.donorRepo.GetByPhoneVariants(ctx, domain.PhoneVariants(loc.Phone, cc))
	if err != nil {
		log.Printf("change feed: donor lookup for %s: %v", loc.ID, err)
	}
	if profile == nil {
		return loc.DonorName, ""
	}
	return profile.FullName, string(profile.BloodGroup)
}

// alreadyDonated suppresses pushes for donors whose donation is already on
// record. Lookup errors deliver rather than suppress: a duplicate push is
// cheaper than a silent donor.
func (w *Watcher) alreadyDonated(ctx context.Context, loc *domain.DonorLocation) bool {
	cc := w.settings.CountryCode(ctx)
	variants := domain.PhoneVariants(loc.Phone, cc)

	donated, err := w.donationRepo.ExistsCompleted(ctx, loc.DonorID, variants)
	if err != nil {
		log.Printf("change feed: history check for %s: %v", loc.ID, err)
		return false
	}
	return donated
}

// targetHospital scopes the push to the hospital owning the linked request,
// and asks for suppression when that request can no longer take donations.
// Shares without a resolvable request go to every dashboard: a walk-in
// donor is any hospital's donor.
func (w *Watcher) targetHospital(ctx context.Context, loc *domain.DonorLocation) (*uuid.UUID, bool) {
	if loc.RequestID == nil {
		return nil, false
	}

	req, err := w.requestRepo.GetByID(ctx, *loc.RequestID)
	if err != nil {
		log.Printf("change feed: load request %s: %v", *loc.RequestID, err)
		return nil, false
	}
	if req == nil {
		return nil, false
	}
	if !req.IsOpen() {
		return nil, true
	}
	return &req.HospitalID, false
}
