package unit_test

import (
	"testing"
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shareAgedBy(age time.Duration, now time.Time) domain.DonorLocation {
	at := now.Add(-age)
	return domain.DonorLocation{
		ID:         uuid.New(),
		DonorName:  "Donor",
		Phone:      "9876543210",
		RecordedAt: &at,
		CreatedAt:  at,
	}
}

func TestFilterLiveWindow(t *testing.T) {
	now := time.Now().UTC()
	window := time.Hour

	fresh := shareAgedBy(5*time.Minute, now)
	onEdge := shareAgedBy(window, now) // exactly at the cutoff stays live
	stale := shareAgedBy(window+time.Second, now)

	live := location.FilterLive([]domain.DonorLocation{fresh, onEdge, stale}, now, window)

	require.Len(t, live, 2)
	assert.Equal(t, fresh.ID, live[0].ID)
	assert.Equal(t, onEdge.ID, live[1].ID)
}

func TestFilterLiveIdempotent(t *testing.T) {
	now := time.Now().UTC()
	window := time.Hour

	input := []domain.DonorLocation{
		shareAgedBy(time.Minute, now),
		shareAgedBy(30*time.Minute, now),
		shareAgedBy(2*time.Hour, now),
	}

	once := location.FilterLive(input, now, window)
	twice := location.FilterLive(once, now, window)
	assert.Equal(t, once, twice)
}

func TestFilterLiveFallsBackToCreatedAt(t *testing.T) {
	now := time.Now().UTC()

	// No client fix time: the insert time decides freshness.
	noFix := domain.DonorLocation{ID: uuid.New(), CreatedAt: now.Add(-10 * time.Minute)}
	staleFix := domain.DonorLocation{ID: uuid.New(), CreatedAt: now.Add(-3 * time.Hour)}

	live := location.FilterLive([]domain.DonorLocation{noFix, staleFix}, now, time.Hour)
	require.Len(t, live, 1)
	assert.Equal(t, noFix.ID, live[0].ID)
}

func TestExpiryOfCountdown(t *testing.T) {
	now := time.Now().UTC()
	window := time.Hour

	fresh := shareAgedBy(10*time.Minute, now)
	expiry := location.ExpiryOf(&fresh, now, window)
	assert.False(t, expiry.Expired)
	assert.False(t, expiry.ExpiringSoon)
	assert.Equal(t, 50, expiry.MinutesLeft)

	closing := shareAgedBy(52*time.Minute, now)
	expiry = location.ExpiryOf(&closing, now, window)
	assert.False(t, expiry.Expired)
	assert.True(t, expiry.ExpiringSoon)
	assert.Equal(t, 8, expiry.MinutesLeft)

	gone := shareAgedBy(90*time.Minute, now)
	expiry = location.ExpiryOf(&gone, now, window)
	assert.True(t, expiry.Expired)
	assert.Equal(t, 0, expiry.MinutesLeft)
	assert.Equal(t, 0, expiry.SecondsLeft)
}
