package fulfillment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

// donorRef is everything the engine could learn about the donor being
// confirmed: the submitted key in normalized form, the matched profile (may
// be nil for walk-ins) and the newest live location share.
type donorRef struct {
	guardKey string
	id       *uuid.UUID
	variants []string
	profile  *domain.Donor
	location *domain.DonorLocation
}

// resolveDonor matches the submitted key against donor profiles: by stable
// ID first, then by phone digits in all country-code variants, finally by
// the case-insensitive name on the donor's live share. A missing profile is
// not an error unless the key was an explicit ID.
func (s *service) resolveDonor(ctx context.Context, key string, now time.Time) (*donorRef, error) {
	ref := &donorRef{}
	cc := s.settings.CountryCode(ctx)

	if id, err := uuid.Parse(strings.TrimSpace(key)); err == nil {
		ref.guardKey = strings.ToLower(id.String())
		ref.id = &id

		profile, err := s.donorRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, domain.ErrDonorNotFound
		}
		ref.profile = profile
		ref.variants = domain.PhoneVariants(profile.Phone, cc)
	} else {
		digits := domain.NormalizePhone(key)
		if digits == "" {
			return nil, domain.ErrDonorNotFound
		}
		ref.guardKey = digits
		ref.variants = domain.PhoneVariants(key, cc)

		profile, err := s.donorRepo.GetByPhoneVariants(ctx, ref.variants)
		if err != nil {
			return nil, err
		}
		ref.profile = profile
	}

	cutoff := now.Add(-s.settings.FreshnessWindow(ctx))
	loc, err := s.locationRepo.GetLatestForDonor(ctx, ref.profileID(), ref.variants, cutoff)
	if err != nil {
		return nil, err
	}
	ref.location = loc

	// Last resort: a walk-in typed their name at a kiosk and staff confirm
	// by that share; the profile may still be findable by name.
	if ref.profile == nil && loc != nil && loc.DonorName != "" {
		profile, err := s.donorRepo.GetByNameInsensitive(ctx, loc.DonorName)
		if err != nil {
			return nil, err
		}
		ref.profile = profile
	}

	return ref, nil
}

func (r *donorRef) profileID() *uuid.UUID {
	if r.profile != nil {
		return &r.profile.ID
	}
	return r.id
}

// bloodGroup is the donor's group when a profile exists; callers fall back
// to the group of a request the donor was already bound to.
func (r *donorRef) bloodGroup() (domain.BloodGroup, bool) {
	if r.profile != nil && r.profile.BloodGroup.IsValid() {
		return r.profile.BloodGroup, true
	}
	return "", false
}

// resolveRequest picks the request the donation applies to: the explicitly
// named request when open, else the request on the donor's live share, else
// the newest active request matching the blood group, else a request the
// walk-in policy fabricates. sawClosed distinguishes "everything this donor
// pointed at is closed" from "nothing matched at all" for error reporting.
func (s *service) resolveRequest(ctx context.Context, ref *donorRef, explicitID *uuid.UUID, confirmedBy uuid.UUID) (*domain.BloodRequest, bool, error) {
	sawClosed := false
	group, haveGroup := ref.bloodGroup()

	if explicitID != nil {
		req, err := s.requestRepo.GetByID(ctx, *explicitID)
		if err != nil {
			return nil, false, err
		}
		if req == nil {
			return nil, false, domain.ErrRequestNotFound
		}
		if req.IsOpen() {
			return req, false, nil
		}
		sawClosed = true
		if !haveGroup {
			group, haveGroup = req.BloodGroup, true
		}
	}

	if ref.location != nil && ref.location.RequestID != nil &&
		(explicitID == nil || *ref.location.RequestID != *explicitID) {
		req, err := s.requestRepo.GetByID(ctx, *ref.location.RequestID)
		if err != nil {
			return nil, sawClosed, err
		}
		if req != nil {
			if req.IsOpen() {
				return req, sawClosed, nil
			}
			sawClosed = true
			if !haveGroup {
				group, haveGroup = req.BloodGroup, true
			}
		}
	}

	if haveGroup {
		req, err := s.requestRepo.FindNewestActiveByBloodGroup(ctx, group)
		if err != nil {
			return nil, sawClosed, err
		}
		if req != nil && req.IsOpen() {
			return req, sawClosed, nil
		}
	}

	req, err := s.walkInRequest(ctx, group, haveGroup, sawClosed, confirmedBy)
	return req, sawClosed, err
}

// walkInRequest opens a request on the walk-in placeholder hospital so the
// donation has a ledger to count against.
func (s *service) walkInRequest(ctx context.Context, group domain.BloodGroup, haveGroup bool, sawClosed bool, confirmedBy uuid.UUID) (*domain.BloodRequest, error) {
	if !s.policy.Enabled || !haveGroup {
		if sawClosed {
			return nil, domain.ErrRequestClosed
		}
		return nil, domain.ErrRequestNotFound
	}

	hospital, err := s.hospitalRepo.EnsureWalkIn(ctx)
	if err != nil {
		return nil, err
	}

	req := &domain.BloodRequest{
		ID:         uuid.New(),
		HospitalID: hospital.ID,
		BloodGroup: group,
		Quantity:   s.policy.Quantity,
		Status:     domain.RequestActive,
		Urgency:    s.policy.Urgency,
		RequiredBy: time.Now().UTC().Add(s.policy.TTL),
		CreatedBy:  confirmedBy,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
