package location

import (
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

// ExpiringSoonWindow is how close to the freshness cutoff an entry gets
// flagged so dashboards can render it dimmed.
const ExpiringSoonWindow = 10 * time.Minute

// FilterLive keeps entries whose effective time falls inside the freshness
// window ending at now. Applying it twice with the same arguments returns
// the same entries.
func FilterLive(locations []domain.DonorLocation, now time.Time, window time.Duration) []domain.DonorLocation {
	cutoff := now.Add(-window)
	live := make([]domain.DonorLocation, 0, len(locations))
	for _, loc := range locations {
		if !loc.EffectiveTime().Before(cutoff) {
			live = append(live, loc)
		}
	}
	return live
}

// ExpiryOf computes how long an entry stays inside the freshness window.
func ExpiryOf(loc *domain.DonorLocation, now time.Time, window time.Duration) domain.LocationExpiry {
	deadline := loc.EffectiveTime().Add(window)
	remaining := deadline.Sub(now)

	expiry := domain.LocationExpiry{LocationID: loc.ID}
	if remaining <= 0 {
		expiry.Expired = true
		return expiry
	}

	expiry.MinutesLeft = int(remaining / time.Minute)
	expiry.SecondsLeft = int(remaining/time.Second) % 60
	expiry.ExpiringSoon = remaining <= ExpiringSoonWindow
	return expiry
}
