package hospital

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateHospitalInput) (*domain.Hospital, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Hospital, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateHospitalInput) (*domain.Hospital, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	List(ctx context.Context, params domain.PaginationParams, search string) (domain.PaginatedResponse[domain.Hospital], error)

	// SetVerified flips the verification flag directly, independent of the
	// document review flow. Reserved for admins.
	SetVerified(ctx context.Context, id uuid.UUID, userID uuid.UUID, verified bool) (*domain.Hospital, error)
}

type service struct {
	hospitalRepo repository.HospitalRepository
	auditRepo    repository.AuditLogRepository
}

func NewService(hospitalRepo repository.HospitalRepository, auditRepo repository.AuditLogRepository) Service {
	return &service{
		hospitalRepo: hospitalRepo,
		auditRepo:    auditRepo,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateHospitalInput) (*domain.Hospital, error) {
	hospital := &domain.Hospital{
		ID:      uuid.New(),
		Name:    input.Name,
		Address: input.Address,
		City:    input.City,
		Phone:   input.Phone,
		Email:   input.Email,
	}

	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionCreate,
		EntityType: domain.EntityHospital,
		EntityID:   hospital.ID,
		NewValue:   hospital,
	})

	return hospital, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrHospitalNotFound
	}
	return hospital, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateHospitalInput) (*domain.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrHospitalNotFound
	}

	oldHospital := *hospital

	if input.Name != nil {
		hospital.Name = *input.Name
	}
	if input.Address.Set {
		hospital.Address = input.Address.Value
	}
	if input.City.Set {
		hospital.City = input.City.Value
	}
	if input.Phone.Set {
		hospital.Phone = input.Phone.Value
	}
	if input.Email.Set {
		hospital.Email = input.Email.Value
	}

	if err := s.hospitalRepo.Update(ctx, hospital); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntityHospital,
		EntityID:   hospital.ID,
		OldValue:   oldHospital,
		NewValue:   hospital,
	})

	return hospital, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if hospital == nil {
		return domain.ErrHospitalNotFound
	}

	if err := s.hospitalRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionDelete,
		EntityType: domain.EntityHospital,
		EntityID:   id,
		OldValue:   hospital,
	})

	return nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams, search string) (domain.PaginatedResponse[domain.Hospital], error) {
	params.Validate()

	hospitals, total, err := s.hospitalRepo.List(ctx, params, search)
	if err != nil {
		return domain.PaginatedResponse[domain.Hospital]{}, err
	}
	if hospitals == nil {
		hospitals = []domain.Hospital{}
	}

	return domain.NewPaginatedResponse(hospitals, params.Page, params.PageSize, total), nil
}

func (s *service) SetVerified(ctx context.Context, id uuid.UUID, userID uuid.UUID, verified bool) (*domain.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrHospitalNotFound
	}

	oldHospital := *hospital

	if err := s.hospitalRepo.SetVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	hospital.IsVerified = verified

	action := domain.AuditActionApprove
	if !verified {
		action = domain.AuditActionReject
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     action,
		EntityType: domain.EntityHospital,
		EntityID:   id,
		OldValue:   oldHospital,
		NewValue:   hospital,
	})

	return hospital, nil
}
