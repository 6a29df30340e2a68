// Package fulfillment turns a staff confirmation into a reserved unit on
// exactly one blood request. The pipeline is: completed donation fence,
// per-donor guard, donor and request resolution, deadline check, then a
// single atomic conditional increment that is the only point where a unit
// is won or lost.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/email"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/sms"
)

// Publisher pushes ephemeral notifications to connected dashboards.
type Publisher interface {
	Publish(n domain.Notification)
}

// WalkInPolicy controls the request fabricated when a donor with no open
// matching request is confirmed.
type WalkInPolicy struct {
	Enabled  bool
	Quantity int
	Urgency  domain.Urgency
	TTL      time.Duration
}

func DefaultWalkInPolicy() WalkInPolicy {
	return WalkInPolicy{
		Enabled:  true,
		Quantity: 1,
		Urgency:  domain.UrgencyNormal,
		TTL:      24 * time.Hour,
	}
}

type Service interface {
	Confirm(ctx context.Context, input domain.ConfirmDonationInput) (*domain.DonationReceipt, error)
}

type service struct {
	donorRepo    repository.DonorRepository
	requestRepo  repository.BloodRequestRepository
	locationRepo repository.LocationRepository
	donationRepo repository.DonationRepository
	tokenRepo    repository.TokenRepository
	hospitalRepo repository.HospitalRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditLogRepository
	settings     settings.Service
	emailSvc     email.Service
	smsSvc       sms.Service
	publisher    Publisher
	guard        *Guard
	policy       WalkInPolicy
}

func NewService(
	repos *repository.Repositories,
	settingsSvc settings.Service,
	emailSvc email.Service,
	smsSvc sms.Service,
	publisher Publisher,
	policy WalkInPolicy,
) Service {
	return &service{
		donorRepo:    repos.Donor,
		requestRepo:  repos.BloodRequest,
		locationRepo: repos.Location,
		donationRepo: repos.Donation,
		tokenRepo:    repos.Token,
		hospitalRepo: repos.Hospital,
		userRepo:     repos.User,
		auditRepo:    repos.AuditLog,
		settings:     settingsSvc,
		emailSvc:     emailSvc,
		smsSvc:       smsSvc,
		publisher:    publisher,
		guard:        NewGuard(),
		policy:       policy,
	}
}

func (s *service) Confirm(ctx context.Context, input domain.ConfirmDonationInput) (*domain.DonationReceipt, error) {
	now := time.Now().UTC()

	ref, err := s.resolveDonor(ctx, input.DonorKey, now)
	if err != nil {
		return nil, err
	}

	// History is checked before the in-flight guard: a donor with a
	// completed donation on record is terminal and must keep hearing
	// AlreadyDonated, never the transient AlreadyProcessing their retained
	// guard key would otherwise produce.
	donated, err := s.donationRepo.ExistsCompleted(ctx, ref.profileID(), ref.variants)
	if err != nil {
		return nil, err
	}
	if donated {
		return nil, domain.ErrAlreadyDonated
	}

	if !s.guard.Acquire(ref.guardKey) {
		return nil, domain.ErrAlreadyProcessing
	}
	// The guard is released on every failure path so a legitimate retry is
	// possible, but stays held after a confirmed donation: the retained key
	// fences reprocessing until the history row is visible to readers.
	confirmed := false
	defer func() {
		if !confirmed {
			s.guard.Release(ref.guardKey)
		}
	}()

	// A confirmation needs a live share to anchor it; a donor nobody has
	// seen inside the freshness window cannot be standing at the counter.
	if ref.location == nil {
		return nil, domain.ErrDonorNotFound
	}

	req, _, err := s.resolveRequest(ctx, ref, input.RequestID, input.ConfirmedBy)
	if err != nil {
		return nil, err
	}

	if req.IsOverdue(now) {
		if expired, err := s.requestRepo.MarkExpired(ctx, req.ID); err == nil && expired {
			s.publisher.Publish(domain.NewNotification(&req.HospitalID, domain.NotifRequestExpired,
				"Request expired",
				fmt.Sprintf("%s request expired before it could be fulfilled", req.BloodGroup),
				map[string]string{"request_id": req.ID.String()},
			))
		}
		return nil, domain.ErrRequestExpired
	}

	result, err := s.requestRepo.ReserveUnit(ctx, req.ID, s.reservationToken(ref))
	if err != nil {
		return nil, err
	}
	if !result.Applied {
		return nil, domain.ErrReservationConflict
	}

	donation := s.buildDonation(ref, req, input.ConfirmedBy, now)
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		// The unit is already reserved; surface the failure rather than
		// invent a rollback that would race other reservations.
		return nil, fmt.Errorf("donation record after reservation: %w", err)
	}

	s.cleanupAfterConfirm(ctx, ref, now)
	s.announceConfirm(ctx, ref, req, donation, result, input)

	confirmed = true
	return &domain.DonationReceipt{
		DonationID:     donation.ID,
		DonorName:      donation.DonorName,
		BloodGroup:     donation.BloodGroup,
		RequestID:      req.ID,
		HospitalID:     req.HospitalID,
		ConfirmedUnits: result.ConfirmedUnits,
		RequestStatus:  result.Status,
		CompletedAt:    donation.DonatedAt,
	}, nil
}

// reservationToken picks the credential handed to the conditional update.
// A tokenized share keeps token validation in force no matter which request
// resolution landed on; if the token is not among the resolved request's
// active set the ledger refuses the unit. Only the explicit direct sentinel
// bypasses the token guard.
func (s *service) reservationToken(ref *donorRef) domain.SubmissionToken {
	if ref.location != nil && !ref.location.Token.IsDirect() {
		return ref.location.Token
	}
	return domain.DirectSubmission()
}

func (s *service) buildDonation(ref *donorRef, req *domain.BloodRequest, confirmedBy uuid.UUID, now time.Time) *domain.Donation {
	donation := &domain.Donation{
		ID:          uuid.New(),
		DonorID:     ref.profileID(),
		DonorName:   "Walk-in Donor",
		BloodGroup:  req.BloodGroup,
		RequestID:   req.ID,
		HospitalID:  req.HospitalID,
		Status:      domain.DonationCompleted,
		ConfirmedBy: confirmedBy,
		DonatedAt:   now,
	}

	if ref.profile != nil {
		donation.DonorName = ref.profile.FullName
		donation.Phone = ref.profile.Phone
		donation.BloodGroup = ref.profile.BloodGroup
	}
	if ref.location != nil {
		if donation.DonorName == "Walk-in Donor" && ref.location.DonorName != "" {
			donation.DonorName = ref.location.DonorName
		}
		if donation.Phone == "" {
			donation.Phone = ref.location.Phone
		}
		donation.Latitude = &ref.location.Latitude
		donation.Longitude = &ref.location.Longitude
		donation.Address = ref.location.Address
	}
	if donation.Phone == "" && len(ref.variants) > 0 {
		donation.Phone = ref.variants[0]
	}

	return donation
}

// cleanupAfterConfirm removes the donor's live shares and stamps the
// profile. Failures here never undo the reservation; they are logged and
// the donor simply lingers on maps until the freshness window drops them.
func (s *service) cleanupAfterConfirm(ctx context.Context, ref *donorRef, now time.Time) {
	if _, err := s.locationRepo.DeleteForDonor(ctx, ref.profileID(), ref.variants); err != nil {
		fmt.Printf("Failed to clear locations after confirmation: %v\n", err)
	}

	if ref.profile != nil {
		if err := s.donorRepo.StampDonation(ctx, ref.profile.ID, now); err != nil {
			fmt.Printf("Failed to stamp donor %s: %v\n", ref.profile.ID, err)
		}
	}
}

func (s *service) announceConfirm(ctx context.Context, ref *donorRef, req *domain.BloodRequest, donation *domain.Donation, result *domain.ReservationResult, input domain.ConfirmDonationInput) {
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     donation.ConfirmedBy,
		Action:     domain.AuditActionConfirm,
		EntityType: domain.EntityDonation,
		EntityID:   donation.ID,
		NewValue:   donation,
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
	})

	s.publisher.Publish(domain.NewNotification(&req.HospitalID, domain.NotifDonationConfirmed,
		"Donation confirmed",
		fmt.Sprintf("%s donated %s (%d/%d units)", donation.DonorName, donation.BloodGroup, result.ConfirmedUnits, req.Quantity),
		map[string]string{
			"donation_id": donation.ID.String(),
			"request_id":  req.ID.String(),
		},
	))

	if result.Status == domain.RequestFulfilled {
		s.publisher.Publish(domain.NewNotification(&req.HospitalID, domain.NotifRequestFulfilled,
			"Request fulfilled",
			fmt.Sprintf("All %d unit(s) of %s confirmed", req.Quantity, req.BloodGroup),
			map[string]string{"request_id": req.ID.String()},
		))

		go s.emailHospitalStaff(context.Background(), req)
	}

	go s.thankDonor(context.Background(), ref, req)
}

func (s *service) emailHospitalStaff(ctx context.Context, req *domain.BloodRequest) {
	staff, err := s.userRepo.ListByHospital(ctx, req.HospitalID)
	if err != nil {
		fmt.Printf("Failed to list staff for fulfilled email: %v\n", err)
		return
	}

	for _, user := range staff {
		if user.Email == "" {
			continue
		}
		if err := s.emailSvc.SendRequestFulfilledEmail(ctx, user.Email, user.FullName, string(req.BloodGroup), req.Quantity); err != nil {
			fmt.Printf("Failed to send fulfilled email to %s: %v\n", user.Email, err)
		}
	}
}

func (s *service) thankDonor(ctx context.Context, ref *donorRef, req *domain.BloodRequest) {
	if ref.profile == nil {
		return
	}

	if s.settings.SMSEnabled(ctx) && s.smsSvc.Enabled() {
		if err := s.smsSvc.SendDonationThanks(ctx, ref.profile.Phone, ref.profile.FullName); err != nil {
			fmt.Printf("Failed to send thanks SMS to %s: %v\n", ref.profile.Phone, err)
		}
	}

	if ref.profile.Email != nil && *ref.profile.Email != "" {
		hospitalName := domain.WalkInHospitalName
		if hospital, err := s.hospitalRepo.GetByID(ctx, req.HospitalID); err == nil && hospital != nil {
			hospitalName = hospital.Name
		}
		if err := s.emailSvc.SendDonationThanksEmail(ctx, *ref.profile.Email, ref.profile.FullName, hospitalName); err != nil {
			fmt.Printf("Failed to send thanks email to %s: %v\n", *ref.profile.Email, err)
		}
	}
}
