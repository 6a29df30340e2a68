package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/audit"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/auth"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/dashboard"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/document"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/donation"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/donor"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/email"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/fulfillment"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/hospital"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/hub"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/request"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/sms"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/user"
)

type Services struct {
	Auth        auth.Service
	Hospital    hospital.Service
	Donor       donor.Service
	Request     request.Service
	Location    location.Service
	Fulfillment fulfillment.Service
	Donation    donation.Service
	Document    document.Service
	Dashboard   dashboard.Service
	Settings    settings.Service
	Audit       audit.Service
	User        user.Service
	Email       email.Service
	SMS         sms.Service

	// Hub carries live dashboard notifications; the SSE handler subscribes
	// to it and the watcher publishes into it.
	Hub *hub.Hub
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	notifHub := hub.New()

	emailService := email.NewService(cfg)
	smsService := sms.NewService(cfg)
	settingsService := settings.NewService(repos.Setting, repos.AuditLog, cfg)
	authService := auth.NewService(repos.User, repos.Session, emailService, cfg)
	hospitalService := hospital.NewService(repos.Hospital, repos.AuditLog)
	donorService := donor.NewService(repos.Donor, repos.AuditLog)
	requestService := request.NewService(repos, settingsService, emailService, smsService, notifHub, cfg)
	locationService := location.NewService(repos.Location, repos.Token, repos.Donor, repos.BloodRequest, settingsService, cfg)
	fulfillmentService := fulfillment.NewService(repos, settingsService, emailService, smsService, notifHub, fulfillment.DefaultWalkInPolicy())
	donationService := donation.NewService(repos.Donation)
	documentService := document.NewService(repos, minioClient, emailService, notifHub, cfg)
	dashboardService := dashboard.NewService(repos.BloodRequest, repos.Donation, repos.Donor, repos.Location, settingsService, redis)
	auditService := audit.NewService(repos.AuditLog)
	userService := user.NewService(repos.User, repos.AuditLog)

	return &Services{
		Auth:        authService,
		Hospital:    hospitalService,
		Donor:       donorService,
		Request:     requestService,
		Location:    locationService,
		Fulfillment: fulfillmentService,
		Donation:    donationService,
		Document:    documentService,
		Dashboard:   dashboardService,
		Settings:    settingsService,
		Audit:       auditService,
		User:        userService,
		Email:       emailService,
		SMS:         smsService,
		Hub:         notifHub,
	}
}
