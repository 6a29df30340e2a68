package unit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/watcher"
	"github.com/Ekta-2312/Copy-Innovate-Backend/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubFeed feeds the watcher from a plain channel; closing the channel ends
// the stream the way a dropped listener connection would.
type stubFeed struct {
	events chan string
}

func newStubFeed() *stubFeed {
	return &stubFeed{events: make(chan string, 8)}
}

func (f *stubFeed) Events() <-chan string { return f.events }
func (f *stubFeed) Ping() error           { return nil }
func (f *stubFeed) Close() error          { return nil }

type watcherFixture struct {
	feed         *stubFeed
	locationRepo *mocks.LocationRepository
	requestRepo  *mocks.BloodRequestRepository
	donationRepo *mocks.DonationRepository
	donorRepo    *mocks.DonorRepository
	settings     *mocks.SettingsService
	publisher    *capturePublisher
	w            *watcher.Watcher
}

func newWatcherFixture() *watcherFixture {
	f := &watcherFixture{
		feed:         newStubFeed(),
		locationRepo: new(mocks.LocationRepository),
		requestRepo:  new(mocks.BloodRequestRepository),
		donationRepo: new(mocks.DonationRepository),
		donorRepo:    new(mocks.DonorRepository),
		settings:     new(mocks.SettingsService),
		publisher:    &capturePublisher{},
	}
	f.w = watcher.New(f.feed, f.locationRepo, f.requestRepo, f.donationRepo, f.donorRepo, f.settings, f.publisher)

	f.settings.On("FreshnessWindow", mock.Anything).Return(time.Hour).Maybe()
	f.settings.On("CountryCode", mock.Anything).Return("91").Maybe()

	return f
}

// runEvents pushes the raw events through a full watcher run and returns
// once the watcher has drained them all.
func (f *watcherFixture) runEvents(t *testing.T, events ...string) {
	t.Helper()

	done := make(chan error, 1)
	go func() {
		done <- f.w.Run(context.Background())
	}()

	for _, ev := range events {
		f.feed.events <- ev
	}
	close(f.feed.events)

	select {
	case err := <-done:
		require.Error(t, err) // closed feed surfaces so main can restart it
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after feed close")
	}
}

func TestWatcherPublishesFreshShare(t *testing.T) {
	f := newWatcherFixture()

	req := activeRequest(2, 0, "T1")
	loc := liveShare(nil, "9876543210", &req.ID, domain.TokenizedSubmission("T1"))
	profile := &domain.Donor{ID: uuid.New(), FullName: "Asha Patel", Phone: loc.Phone, BloodGroup: domain.BloodAPos}

	f.locationRepo.On("GetByID", mock.Anything, loc.ID).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(profile, nil)

	f.runEvents(t, loc.ID.String())

	sent := f.publisher.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.NotifDonorLocation, sent[0].Type)
	require.NotNil(t, sent[0].HospitalID)
	assert.Equal(t, req.HospitalID, *sent[0].HospitalID)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(sent[0].Data, &payload))
	assert.Equal(t, "Asha Patel", payload["donor_name"])
	assert.Equal(t, string(domain.BloodAPos), payload["blood_group"])
}

func TestWatcherSuppressesClosedRequest(t *testing.T) {
	f := newWatcherFixture()

	fulfilled := activeRequest(1, 1)
	fulfilled.Status = domain.RequestFulfilled
	quotaMet := activeRequest(2, 2) // still active but out of units

	locA := liveShare(nil, "9876543210", &fulfilled.ID, domain.DirectSubmission())
	locB := liveShare(nil, "9123456780", &quotaMet.ID, domain.DirectSubmission())

	f.locationRepo.On("GetByID", mock.Anything, locA.ID).Return(locA, nil)
	f.locationRepo.On("GetByID", mock.Anything, locB.ID).Return(locB, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.requestRepo.On("GetByID", mock.Anything, fulfilled.ID).Return(fulfilled, nil)
	f.requestRepo.On("GetByID", mock.Anything, quotaMet.ID).Return(quotaMet, nil)

	f.runEvents(t, locA.ID.String(), locB.ID.String())

	assert.Empty(t, f.publisher.Sent())
}

func TestWatcherBroadcastsUnlinkedShare(t *testing.T) {
	f := newWatcherFixture()

	loc := liveShare(nil, "9876543210", nil, domain.DirectSubmission())

	f.locationRepo.On("GetByID", mock.Anything, loc.ID).Return(loc, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.donorRepo.On("GetByPhoneVariants", mock.Anything, mock.Anything).Return(nil, nil)

	f.runEvents(t, loc.ID.String())

	sent := f.publisher.Sent()
	require.Len(t, sent, 1)
	assert.Nil(t, sent[0].HospitalID)

	// Unmatched phone keeps the self-reported name.
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(sent[0].Data, &payload))
	assert.Equal(t, loc.DonorName, payload["donor_name"])
}

func TestWatcherSkipsStaleAndDonatedAndMalformed(t *testing.T) {
	f := newWatcherFixture()

	stale := liveShare(nil, "9876543210", nil, domain.DirectSubmission())
	old := time.Now().UTC().Add(-2 * time.Hour)
	stale.RecordedAt = &old
	stale.CreatedAt = old

	donated := liveShare(nil, "9123456780", nil, domain.DirectSubmission())
	deletedID := uuid.New()

	f.locationRepo.On("GetByID", mock.Anything, stale.ID).Return(stale, nil)
	f.locationRepo.On("GetByID", mock.Anything, donated.ID).Return(donated, nil)
	f.locationRepo.On("GetByID", mock.Anything, deletedID).Return(nil, nil)
	f.donationRepo.On("ExistsCompleted", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	f.runEvents(t, "not-a-uuid", stale.ID.String(), donated.ID.String(), deletedID.String())

	assert.Empty(t, f.publisher.Sent())
	f.requestRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	f := newWatcherFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.w.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
