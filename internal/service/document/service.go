// Package document handles hospital verification documents: upload to
// object storage, admin review, and the verification flip on approval.
package document

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/repository"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/email"
)

// Documents are private; links handed to clients expire.
const urlExpiry = 15 * time.Minute

type Publisher interface {
	Publish(n domain.Notification)
}

type Service interface {
	Upload(ctx context.Context, userID, hospitalID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.VerificationDocument, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationDocument, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.VerificationDocument, error)
	ListPending(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.VerificationDocument], error)

	// Review settles a pending document. Approval also marks the hospital
	// verified; either outcome emails the hospital's staff.
	Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, approve bool) (*domain.VerificationDocument, error)

	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type service struct {
	documentRepo repository.DocumentRepository
	hospitalRepo repository.HospitalRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditLogRepository
	minioClient  *minio.Client
	emailSvc     email.Service
	publisher    Publisher
	cfg          *config.Config
}

func NewService(
	repos *repository.Repositories,
	minioClient *minio.Client,
	emailSvc email.Service,
	publisher Publisher,
	cfg *config.Config,
) Service {
	return &service{
		documentRepo: repos.Document,
		hospitalRepo: repos.Hospital,
		userRepo:     repos.User,
		auditRepo:    repos.AuditLog,
		minioClient:  minioClient,
		emailSvc:     emailSvc,
		publisher:    publisher,
		cfg:          cfg,
	}
}

func (s *service) Upload(ctx context.Context, userID, hospitalID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.VerificationDocument, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if hospital == nil {
		return nil, domain.ErrHospitalNotFound
	}

	docID := uuid.New()
	storagePath := fmt.Sprintf("verification/%s/%s", hospitalID, docID)

	_, err = s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	doc := &domain.VerificationDocument{
		ID:          docID,
		HospitalID:  hospitalID,
		UploadedBy:  userID,
		FileName:    fileName,
		FileSize:    fileSize,
		MimeType:    mimeType,
		StoragePath: storagePath,
		Status:      domain.DocumentPending,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
		return nil, err
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionCreate,
		EntityType: domain.EntityDocument,
		EntityID:   doc.ID,
		NewValue:   doc,
	})

	doc.URL = s.presignURL(ctx, doc.StoragePath)
	return doc, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerificationDocument, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	doc.URL = s.presignURL(ctx, doc.StoragePath)
	return doc, nil
}

func (s *service) ListByHospital(ctx context.Context, hospitalID uuid.UUID) ([]domain.VerificationDocument, error) {
	docs, err := s.documentRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].URL = s.presignURL(ctx, docs[i].StoragePath)
	}
	return docs, nil
}

func (s *service) ListPending(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.VerificationDocument], error) {
	params.Validate()

	docs, total, err := s.documentRepo.ListPending(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.VerificationDocument]{}, err
	}
	for i := range docs {
		docs[i].URL = s.presignURL(ctx, docs[i].StoragePath)
	}
	if docs == nil {
		docs = []domain.VerificationDocument{}
	}

	return domain.NewPaginatedResponse(docs, params.Page, params.PageSize, total), nil
}

func (s *service) Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, approve bool) (*domain.VerificationDocument, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	if doc.Status != domain.DocumentPending {
		return nil, domain.ErrDocumentReviewed
	}

	status := domain.DocumentApproved
	action := domain.AuditActionApprove
	if !approve {
		status = domain.DocumentRejected
		action = domain.AuditActionReject
	}

	now := time.Now()
	if err := s.documentRepo.SetStatus(ctx, id, status, reviewerID, now); err != nil {
		// Zero rows here means another reviewer settled it first.
		if err == domain.ErrDocumentNotFound {
			return nil, domain.ErrDocumentReviewed
		}
		return nil, err
	}

	doc.Status = status
	doc.ReviewedBy = &reviewerID
	doc.ReviewedAt = &now

	if approve {
		if err := s.hospitalRepo.SetVerified(ctx, doc.HospitalID, true); err != nil {
			fmt.Printf("mark hospital %s verified: %v\n", doc.HospitalID, err)
		}
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     reviewerID,
		Action:     action,
		EntityType: domain.EntityDocument,
		EntityID:   doc.ID,
		NewValue:   doc,
	})

	if s.publisher != nil {
		s.publisher.Publish(domain.NewNotification(&doc.HospitalID, domain.NotifDocumentReviewed,
			"Verification Document Reviewed",
			fmt.Sprintf("Document %s was %s", doc.FileName, status),
			doc,
		))
	}

	go s.notifyHospitalStaff(context.Background(), doc.HospitalID, string(status))

	doc.URL = s.presignURL(ctx, doc.StoragePath)
	return doc, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrDocumentNotFound
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, doc.StoragePath, minio.RemoveObjectOptions{})

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     domain.AuditActionDelete,
		EntityType: domain.EntityDocument,
		EntityID:   id,
		OldValue:   doc,
	})

	return nil
}

func (s *service) notifyHospitalStaff(ctx context.Context, hospitalID uuid.UUID, status string) {
	hospital, err := s.hospitalRepo.GetByID(ctx, hospitalID)
	if err != nil || hospital == nil {
		return
	}

	users, err := s.userRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		fmt.Printf("list staff for hospital %s: %v\n", hospitalID, err)
		return
	}

	for i := range users {
		if err := s.emailSvc.SendDocumentReviewedEmail(ctx, users[i].Email, hospital.Name, status); err != nil {
			fmt.Printf("send review email to %s: %v\n", users[i].Email, err)
		}
	}
}

func (s *service) presignURL(ctx context.Context, storagePath string) string {
	u, err := s.minioClient.PresignedGetObject(ctx, s.cfg.MinIOBucket, storagePath, urlExpiry, url.Values{})
	if err != nil {
		return ""
	}
	return u.String()
}
