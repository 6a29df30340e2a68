// Package donation is the read side of the donation ledger; records are
// written by the fulfillment engine only.
package donation

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error)
	List(ctx context.Context, hospitalID *uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Donation], error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Donation, error)
}

type service struct {
	donationRepo repository.DonationRepository
}

func NewService(donationRepo repository.DonationRepository) Service {
	return &service{donationRepo: donationRepo}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	return donation, nil
}

func (s *service) List(ctx context.Context, hospitalID *uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Donation], error) {
	params.Validate()

	donations, total, err := s.donationRepo.List(ctx, hospitalID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Donation]{}, err
	}
	if donations == nil {
		donations = []domain.Donation{}
	}

	return domain.NewPaginatedResponse(donations, params.Page, params.PageSize, total), nil
}

func (s *service) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Donation, error) {
	donations, err := s.donationRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []domain.Donation{}
	}
	return donations, nil
}
