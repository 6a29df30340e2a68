package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	Hospital     HospitalRepository
	BloodRequest BloodRequestRepository
	Donor        DonorRepository
	Location     LocationRepository
	Donation     DonationRepository
	Token        TokenRepository
	Document     DocumentRepository
	Setting      SettingRepository
	AuditLog     AuditLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Session:      NewSessionRepository(db),
		Hospital:     NewHospitalRepository(db),
		BloodRequest: NewBloodRequestRepository(db),
		Donor:        NewDonorRepository(db),
		Location:     NewLocationRepository(db),
		Donation:     NewDonationRepository(db),
		Token:        NewTokenRepository(db),
		Document:     NewDocumentRepository(db),
		Setting:      NewSettingRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}
}
