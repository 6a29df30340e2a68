package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

// Service exposes runtime-tunable settings. Typed getters fall back to the
// environment config when no row exists, so a fresh database behaves the
// same as one that was never tuned.
type Service interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Update(ctx context.Context, userID uuid.UUID, key, value string) (*domain.Setting, error)

	SMSEnabled(ctx context.Context) bool
	InviteBatchLimit(ctx context.Context) int
	FreshnessWindow(ctx context.Context) time.Duration
	CountryCode(ctx context.Context) string
}

const defaultInviteBatchLimit = 25

type service struct {
	settingRepo repository.SettingRepository
	auditRepo   repository.AuditLogRepository
	cfg         *config.Config
}

func NewService(settingRepo repository.SettingRepository, auditRepo repository.AuditLogRepository, cfg *config.Config) Service {
	return &service{
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		cfg:         cfg,
	}
}

func (s *service) List(ctx context.Context) ([]domain.Setting, error) {
	return s.settingRepo.List(ctx)
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, key, value string) (*domain.Setting, error) {
	old, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	setting := &domain.Setting{Key: key, Value: value}
	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionUpdate,
		EntityType: domain.EntitySetting,
		EntityID:   uuid.Nil,
		OldValue:   old,
		NewValue:   setting,
	})

	return setting, nil
}

func (s *service) get(ctx context.Context, key string) string {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil || setting == nil {
		return ""
	}
	return setting.Value
}

func (s *service) SMSEnabled(ctx context.Context) bool {
	if v := s.get(ctx, domain.SettingSMSEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			return enabled
		}
	}
	return true
}

func (s *service) InviteBatchLimit(ctx context.Context) int {
	if v := s.get(ctx, domain.SettingInviteBatchLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultInviteBatchLimit
}

func (s *service) FreshnessWindow(ctx context.Context) time.Duration {
	if v := s.get(ctx, domain.SettingFreshnessHours); v != "" {
		if hours, err := strconv.ParseFloat(v, 64); err == nil && hours > 0 {
			return time.Duration(hours * float64(time.Hour))
		}
	}
	return s.cfg.LocationFreshness
}

func (s *service) CountryCode(ctx context.Context) string {
	if v := s.get(ctx, domain.SettingCountryCode); v != "" {
		return v
	}
	return s.cfg.CountryCode
}
