package donor

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateDonorInput) (*domain.Donor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Donor, error)
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateDonorInput) (*domain.Donor, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	List(ctx context.Context, params domain.PaginationParams, search string, bloodGroup *domain.BloodGroup) (domain.PaginatedResponse[domain.Donor], error)
}

type service struct {
	donorRepo repository.DonorRepository
	auditRepo repository.AuditLogRepository
}

func NewService(donorRepo repository.DonorRepository, auditRepo repository.AuditLogRepository) Service {
	return &service{
		donorRepo: donorRepo,
		auditRepo: auditRepo,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateDonorInput) (*domain.Donor, error) {
	exists, err := s.donorRepo.ExistsByPhone(ctx, domain.NormalizePhone(input.Phone))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrPhoneExists
	}

	donor := &domain.Donor{
		ID:          uuid.New(),
		FullName:    input.FullName,
		Phone:       input.Phone,
		BloodGroup:  input.BloodGroup,
		Email:       input.Email,
		City:        input.City,
		DateOfBirth: input.DateOfBirth,
		IsAvailable: true,
	}

	if err := s.donorRepo.Create(ctx, donor); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionCreate,
		EntityType: domain.EntityDonor,
		EntityID:   donor.ID,
		NewValue:   donor,
	})

	return donor, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donor, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, domain.ErrDonorProfileNotFound
	}
	return donor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, input domain.UpdateDonorInput) (*domain.Donor, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, domain.ErrDonorProfileNotFound
	}

	oldDonor := *donor

	if input.Phone != nil && domain.NormalizePhone(*input.Phone) != domain.NormalizePhone(donor.Phone) {
		exists, err := s.donorRepo.ExistsByPhone(ctx, domain.NormalizePhone(*input.Phone))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrPhoneExists
		}
		donor.Phone = *input.Phone
	}
	if input.FullName != nil {
		donor.FullName = *input.FullName
	}
	if input.BloodGroup != nil {
		donor.BloodGroup = *input.BloodGroup
	}
	if input.Email.Set {
		donor.Email = input.Email.Value
	}
	if input.City.Set {
		donor.City = input.City.Value
	}
	if input.IsAvailable != nil {
		donor.IsAvailable = *input.IsAvailable
	}

	if err := s.donorRepo.Update(ctx, donor); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntityDonor,
		EntityID:   donor.ID,
		OldValue:   oldDonor,
		NewValue:   donor,
	})

	return donor, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if donor == nil {
		return domain.ErrDonorProfileNotFound
	}

	if err := s.donorRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionDelete,
		EntityType: domain.EntityDonor,
		EntityID:   id,
		OldValue:   donor,
	})

	return nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams, search string, bloodGroup *domain.BloodGroup) (domain.PaginatedResponse[domain.Donor], error) {
	params.Validate()

	donors, total, err := s.donorRepo.List(ctx, params, search, bloodGroup)
	if err != nil {
		return domain.PaginatedResponse[domain.Donor]{}, err
	}
	if donors == nil {
		donors = []domain.Donor{}
	}

	return domain.NewPaginatedResponse(donors, params.Page, params.PageSize, total), nil
}
