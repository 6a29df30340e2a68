// Package request manages the blood request lifecycle: creation with donor
// invite fan-out, edits, cancellation and the periodic expiry sweep.
package request

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
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

// RespondContext is the prefill payload behind an invite link: who the token
// was minted for and what the request still needs. Consumed tokens resolve
// too, so a donor who already responded can keep updating their position.
type RespondContext struct {
	DonorName    string            `json:"donor_name"`
	DonorPhone   string            `json:"donor_phone"`
	RequestID    uuid.UUID         `json:"request_id"`
	HospitalName string            `json:"hospital_name"`
	BloodGroup   domain.BloodGroup `json:"blood_group"`
	Urgency      domain.Urgency    `json:"urgency"`
	UnitsLeft    int               `json:"units_left"`
	RequiredBy   time.Time         `json:"required_by"`
	RequestOpen  bool              `json:"request_open"`
	TokenUsed    bool              `json:"token_used"`
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateBloodRequestInput) (*domain.BloodRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateBloodRequestInput) (*domain.BloodRequest, error)
	Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.BloodRequest, error)
	List(ctx context.Context, hospitalID *uuid.UUID, status *domain.RequestStatus, bloodGroup *domain.BloodGroup, params domain.PaginationParams) (domain.PaginatedResponse[domain.BloodRequest], error)

	// InviteDonors re-runs the invite fan-out for an already open request
	// and reports how many donors were contacted.
	InviteDonors(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int, error)

	// RespondContext resolves an invite token for the public respond page.
	RespondContext(ctx context.Context, token string) (*RespondContext, error)

	// SweepExpired closes every active request whose deadline has passed.
	// Invoked periodically; safe to run concurrently with confirmations
	// because the reservation guard rechecks status.
	SweepExpired(ctx context.Context) (int, error)
}

type service struct {
	requestRepo  repository.BloodRequestRepository
	hospitalRepo repository.HospitalRepository
	donorRepo    repository.DonorRepository
	tokenRepo    repository.TokenRepository
	auditRepo    repository.AuditLogRepository
	settingsSvc  settings.Service
	emailSvc     email.Service
	smsSvc       sms.Service
	publisher    Publisher
	cfg          *config.Config
}

func NewService(
	repos *repository.Repositories,
	settingsSvc settings.Service,
	emailSvc email.Service,
	smsSvc sms.Service,
	publisher Publisher,
	cfg *config.Config,
) Service {
	return &service{
		requestRepo:  repos.BloodRequest,
		hospitalRepo: repos.Hospital,
		donorRepo:    repos.Donor,
		tokenRepo:    repos.Token,
		auditRepo:    repos.AuditLog,
		settingsSvc:  settingsSvc,
		emailSvc:     emailSvc,
		smsSvc:       smsSvc,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateBloodRequestInput) (*domain.BloodRequest, error) {
	if input.HospitalID == nil {
		return nil, domain.ErrHospitalNotFound
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, *input.HospitalID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrHospitalNotFound
	}
	if !hospital.IsVerified {
		return nil, domain.ErrHospitalNotVerified
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}

	req := &domain.BloodRequest{
		ID:           uuid.New(),
		HospitalID:   hospital.ID,
		BloodGroup:   input.BloodGroup,
		Quantity:     input.Quantity,
		Status:       domain.RequestActive,
		Urgency:      urgency,
		Notes:        input.Notes,
		RequiredBy:   input.RequiredBy,
		ActiveTokens: pq.StringArray{},
		CreatedBy:    userID,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionCreate,
		EntityType: domain.EntityBloodRequest,
		EntityID:   req.ID,
		NewValue:   req,
	})

	if s.publisher != nil {
		s.publisher.Publish(domain.NewNotification(nil, domain.NotifRequestCreated,
			"New Blood Request",
			fmt.Sprintf("%s needs %d unit(s) of %s (%s)", hospital.Name, req.Quantity, req.BloodGroup, req.Urgency),
			req,
		))
	}

	go func() {
		if _, err := s.fanOutInvites(context.Background(), req, hospital); err != nil {
			fmt.Printf("invite fan-out for request %s: %v\n", req.ID, err)
		}
	}()

	return req, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateBloodRequestInput) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status != domain.RequestActive {
		return nil, domain.ErrRequestClosed
	}

	oldReq := *req

	if input.Quantity != nil {
		if *input.Quantity < req.ConfirmedUnits {
			return nil, domain.ErrQuantityBelowUnits
		}
		req.Quantity = *input.Quantity
	}
	if input.Urgency != nil {
		req.Urgency = *input.Urgency
	}
	if input.RequiredBy != nil {
		req.RequiredBy = *input.RequiredBy
	}
	if input.Notes.Set {
		req.Notes = input.Notes.Value
	}

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntityBloodRequest,
		EntityID:   req.ID,
		OldValue:   oldReq,
		NewValue:   req,
	})

	return req, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.BloodRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}

	cancelled, err := s.requestRepo.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, domain.ErrRequestClosed
	}

	oldReq := *req
	req.Status = domain.RequestCancelled
	req.ActiveTokens = pq.StringArray{}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionCancel,
		EntityType: domain.EntityBloodRequest,
		EntityID:   req.ID,
		OldValue:   oldReq,
		NewValue:   req,
	})

	if s.publisher != nil {
		s.publisher.Publish(domain.NewNotification(&req.HospitalID, domain.NotifRequestCancelled,
			"Request Cancelled",
			fmt.Sprintf("Request for %d unit(s) of %s was cancelled", req.Quantity, req.BloodGroup),
			req,
		))
	}

	return req, nil
}

func (s *service) List(ctx context.Context, hospitalID *uuid.UUID, status *domain.RequestStatus, bloodGroup *domain.BloodGroup, params domain.PaginationParams) (domain.PaginatedResponse[domain.BloodRequest], error) {
	params.Validate()

	requests, total, err := s.requestRepo.List(ctx, hospitalID, status, bloodGroup, params)
	if err != nil {
		return domain.PaginatedResponse[domain.BloodRequest]{}, err
	}
	if requests == nil {
		requests = []domain.BloodRequest{}
	}

	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) InviteDonors(ctx context.Context, id uuid.UUID, userID uuid.UUID) (int, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if req == nil {
		return 0, domain.ErrRequestNotFound
	}
	if !req.IsOpen() {
		return 0, domain.ErrRequestClosed
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, req.HospitalID)
	if err != nil {
		return 0, err
	}
	if hospital == nil {
		return 0, domain.ErrHospitalNotFound
	}

	invited, err := s.fanOutInvites(ctx, req, hospital)
	if err != nil {
		return invited, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionInvite,
		EntityType: domain.EntityBloodRequest,
		EntityID:   req.ID,
		NewValue:   map[string]int{"invited": invited},
	})

	return invited, nil
}

func (s *service) RespondContext(ctx context.Context, token string) (*RespondContext, error) {
	rt, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil || rt.IsExpired(time.Now()) {
		return nil, domain.ErrTokenInvalid
	}

	req, err := s.requestRepo.GetByID(ctx, rt.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}

	donor, err := s.donorRepo.GetByID(ctx, rt.DonorID)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, domain.ErrTokenInvalid
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}

	rc := &RespondContext{
		DonorName:   donor.FullName,
		DonorPhone:  donor.Phone,
		RequestID:   req.ID,
		BloodGroup:  req.BloodGroup,
		Urgency:     req.Urgency,
		UnitsLeft:   req.UnitsLeft(),
		RequiredBy:  req.RequiredBy,
		RequestOpen: req.IsOpen(),
		TokenUsed:   rt.IsUsed,
	}
	if hospital != nil {
		rc.HospitalName = hospital.Name
	}

	return rc, nil
}

// fanOutInvites mints a single-use response token per eligible donor,
// registers it on the request, then sends the invite. Registration happens
// before sending so a donor never receives a link the reservation guard
// would not accept; when registration reports the request closed the
// fan-out stops.
func (s *service) fanOutInvites(ctx context.Context, req *domain.BloodRequest, hospital *domain.Hospital) (int, error) {
	limit := s.settingsSvc.InviteBatchLimit(ctx)
	donors, err := s.donorRepo.FindEligible(ctx, req.BloodGroup, limit)
	if err != nil {
		return 0, err
	}

	smsOn := s.smsSvc != nil && s.smsSvc.Enabled() && s.settingsSvc.SMSEnabled(ctx)
	invited := 0

	for i := range donors {
		donor := &donors[i]

		token, err := newInviteToken()
		if err != nil {
			return invited, err
		}

		rt := &domain.ResponseToken{
			ID:        uuid.New(),
			Token:     token,
			DonorID:   donor.ID,
			RequestID: req.ID,
			ExpiresAt: time.Now().Add(s.cfg.TokenExpiry),
		}
		if err := s.tokenRepo.Create(ctx, rt); err != nil {
			fmt.Printf("create response token for donor %s: %v\n", donor.ID, err)
			continue
		}

		appended, err := s.requestRepo.AppendToken(ctx, req.ID, token)
		if err != nil {
			fmt.Printf("register token on request %s: %v\n", req.ID, err)
			continue
		}
		if !appended {
			break
		}

		link := fmt.Sprintf("https://%s/respond?token=%s", s.cfg.Domain, token)

		if smsOn {
			if err := s.smsSvc.SendDonationInvite(ctx, donor.Phone, donor.FullName, hospital.Name, req.BloodGroup, req.Urgency, link); err != nil {
				fmt.Printf("send invite SMS to donor %s: %v\n", donor.ID, err)
			}
		}
		if donor.Email != nil && *donor.Email != "" {
			if err := s.emailSvc.SendDonationInviteEmail(ctx, *donor.Email, donor.FullName, hospital.Name, string(req.BloodGroup), string(req.Urgency), link); err != nil {
				fmt.Printf("send invite email to donor %s: %v\n", donor.ID, err)
			}
		}

		invited++
	}

	return invited, nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.requestRepo.ExpireOverdue(ctx)
	if err != nil {
		return 0, err
	}

	if s.publisher != nil {
		for i := range expired {
			req := expired[i]
			s.publisher.Publish(domain.NewNotification(&req.HospitalID, domain.NotifRequestExpired,
				"Request Expired",
				fmt.Sprintf("Request for %d unit(s) of %s passed its deadline with %d confirmed", req.Quantity, req.BloodGroup, req.ConfirmedUnits),
				req,
			))
		}
	}

	return len(expired), nil
}

func newInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
