package user

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput) (*domain.User, error)
	AssignRole(ctx context.Context, currentUser *domain.User, input domain.AssignRoleInput) error
	SetActive(ctx context.Context, currentUser *domain.User, userID uuid.UUID, active bool) error
	ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, currentUser *domain.User, userID uuid.UUID) error
}

type service struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
}

func NewService(userRepo repository.UserRepository, auditRepo repository.AuditLogRepository) Service {
	return &service{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input domain.UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailExists
		}
		user.Email = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}
	if input.Phone.Set {
		user.Phone = input.Phone.Value
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// AssignRole changes another user's role. Admins may assign any role;
// hospital admins may only manage staff within their own hospital.
func (s *service) AssignRole(ctx context.Context, currentUser *domain.User, input domain.AssignRoleInput) error {
	if !domain.UserRole(input.Role).IsValid() {
		return domain.ErrInvalidRole
	}
	if currentUser.ID == input.UserID {
		return domain.ErrCannotModifySelf
	}

	target, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrUserNotFound
	}

	if !currentUser.HasRole(string(domain.RoleAdmin)) {
		if !currentUser.HasRole(string(domain.RoleHospitalAdmin)) {
			return domain.ErrForbidden
		}
		if input.Role == string(domain.RoleAdmin) || target.Role == string(domain.RoleAdmin) {
			return domain.ErrForbidden
		}
		if currentUser.HospitalID == nil || target.HospitalID == nil || *currentUser.HospitalID != *target.HospitalID {
			return domain.ErrForbidden
		}
	}

	if err := s.userRepo.AssignRole(ctx, input.UserID, input.Role); err != nil {
		return err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     currentUser.ID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntityUser,
		EntityID:   input.UserID,
		OldValue:   map[string]string{"role": target.Role},
		NewValue:   map[string]string{"role": input.Role},
	})

	return nil
}

func (s *service) SetActive(ctx context.Context, currentUser *domain.User, userID uuid.UUID, active bool) error {
	if currentUser.ID == userID {
		return domain.ErrCannotModifySelf
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrUserNotFound
	}
	if !currentUser.HasRole(string(domain.RoleAdmin)) {
		if target.HospitalID == nil || !currentUser.CanAccessHospital(*target.HospitalID) {
			return domain.ErrForbidden
		}
	}

	target.IsActive = active
	if err := s.userRepo.Update(ctx, target); err != nil {
		return err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     currentUser.ID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntityUser,
		EntityID:   userID,
		NewValue:   map[string]bool{"is_active": active},
	})

	return nil
}

func (s *service) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.User, error) {
	users, err := s.userRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *service) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *service) Delete(ctx context.Context, currentUser *domain.User, userID uuid.UUID) error {
	if currentUser.ID == userID {
		return domain.ErrCannotModifySelf
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrUserNotFound
	}
	if !currentUser.HasRole(string(domain.RoleAdmin)) {
		if target.HospitalID == nil || !currentUser.CanAccessHospital(*target.HospitalID) {
			return domain.ErrForbidden
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     currentUser.ID,
		Action:     domain.AuditActionDelete,
		EntityType: domain.EntityUser,
		EntityID:   userID,
		OldValue:   target,
	})

	return nil
}
