package seller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/seller"
	"github.com/opas/backend/internal/domain/shared"
)

// RegistrationServiceConfig holds configuration for the registration service
type RegistrationServiceConfig struct {
	// UploadURLExpiry is the duration for which document upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which document download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxDocumentsPerRequest is the maximum number of documents per request
	MaxDocumentsPerRequest int
}

// DefaultRegistrationServiceConfig returns the default configuration
func DefaultRegistrationServiceConfig() RegistrationServiceConfig {
	return RegistrationServiceConfig{
		UploadURLExpiry:        15 * time.Minute,
		DownloadURLExpiry:      1 * time.Hour,
		MaxDocumentsPerRequest: 10,
	}
}

// RegistrationService handles the seller registration review workflow
type RegistrationService struct {
	registrationRepo seller.RegistrationRepository
	profileRepo      seller.ProfileRepository
	txScope          TransactionScope
	storageService   DocumentStorageService
	eventBus         shared.EventPublisher
	config           RegistrationServiceConfig
	logger           *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	registrationRepo seller.RegistrationRepository,
	profileRepo seller.ProfileRepository,
	txScope TransactionScope,
	storageService DocumentStorageService,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		profileRepo:      profileRepo,
		txScope:          txScope,
		storageService:   storageService,
		eventBus:         eventBus,
		config:           DefaultRegistrationServiceConfig(),
		logger:           logger,
	}
}

// SetConfig sets the service configuration
func (s *RegistrationService) SetConfig(config RegistrationServiceConfig) {
	s.config = config
}

// Submit creates a new pending registration request. An applicant can only
// have one live (non-rejected) request at a time.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitRegistrationInput) (*RegistrationResponse, error) {
	existing, err := s.registrationRepo.FindLiveByApplicant(ctx, input.ApplicantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("REGISTRATION_EXISTS",
			"Applicant already has a registration request in progress")
	}

	req, err := seller.NewRegistrationRequest(
		input.ApplicantID,
		input.BusinessName,
		input.ContactName,
		input.ContactPhone,
		input.ContactEmail,
		input.MarketSection,
		input.StallNumber,
	)
	if err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, req)

	s.logger.Info("Registration request submitted",
		zap.String("registration_id", req.ID.String()),
		zap.String("business_name", req.BusinessName))

	resp := ToRegistrationResponse(req)
	return &resp, nil
}

// Get retrieves a registration request by ID
func (s *RegistrationService) Get(ctx context.Context, id uuid.UUID) (*RegistrationResponse, error) {
	req, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToRegistrationResponse(req)
	return &resp, nil
}

// List returns registration requests matching the filter
func (s *RegistrationService) List(ctx context.Context, input ListRegistrationsInput) (*RegistrationListResult, error) {
	filter := seller.NewRegistrationFilter()
	filter.Keyword = input.Keyword
	filter.Status = input.Status
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	requests, total, err := s.registrationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]RegistrationResponse, len(requests))
	for i, req := range requests {
		responses[i] = ToRegistrationResponse(req)
	}

	return &RegistrationListResult{
		Requests: responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// StartReview moves a pending request to under_review
func (s *RegistrationService) StartReview(ctx context.Context, input ReviewInput) (*RegistrationResponse, error) {
	req, err := s.registrationRepo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	if err := req.StartReview(input.ReviewerID); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Registration review started",
		zap.String("registration_id", req.ID.String()),
		zap.String("reviewer_id", input.ReviewerID.String()))

	resp := ToRegistrationResponse(req)
	return &resp, nil
}

// Approve approves a registration request and creates the seller profile with
// the next seller code. The reviewed request and the new profile are persisted
// in one transaction, so a failed profile write leaves the request pending and
// reviewable.
func (s *RegistrationService) Approve(ctx context.Context, input ReviewInput) (*ApproveResult, error) {
	req, err := s.registrationRepo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	if err := req.Approve(input.ReviewerID); err != nil {
		return nil, err
	}

	var profile *seller.Profile
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		seq, err := repos.ProfileRepo().NextSellerCodeSeq(ctx)
		if err != nil {
			return err
		}

		profile, err = seller.NewProfileFromRegistration(seller.FormatSellerCode(seq), req)
		if err != nil {
			return err
		}

		if err := repos.RegistrationRepo().Update(ctx, req); err != nil {
			return err
		}
		return repos.ProfileRepo().Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, req)
	s.publishEvents(ctx, profile)

	s.logger.Info("Registration approved",
		zap.String("registration_id", req.ID.String()),
		zap.String("seller_code", profile.SellerCode),
		zap.String("reviewer_id", input.ReviewerID.String()))

	return &ApproveResult{
		Registration: ToRegistrationResponse(req),
		Profile:      ToProfileResponse(profile),
	}, nil
}

// Reject rejects a registration request with a reason
func (s *RegistrationService) Reject(ctx context.Context, input RejectInput) (*RegistrationResponse, error) {
	req, err := s.registrationRepo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	if err := req.Reject(input.ReviewerID, input.Reason); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, req)

	s.logger.Info("Registration rejected",
		zap.String("registration_id", req.ID.String()),
		zap.String("reviewer_id", input.ReviewerID.String()))

	resp := ToRegistrationResponse(req)
	return &resp, nil
}

// InitiateDocumentUpload returns a presigned URL for uploading a verification
// document. The document is attached to the request on ConfirmDocumentUpload.
func (s *RegistrationService) InitiateDocumentUpload(ctx context.Context, input InitiateDocumentUploadInput) (*InitiateDocumentUploadResult, error) {
	req, err := s.registrationRepo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	if req.Status == seller.RegistrationStatusApproved || req.Status == seller.RegistrationStatusRejected {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot attach documents to a reviewed request")
	}

	if len(req.DocumentKeys) >= s.config.MaxDocumentsPerRequest {
		return nil, shared.NewDomainError("DOCUMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d documents per request allowed", s.config.MaxDocumentsPerRequest))
	}

	if !isAllowedDocumentContentType(input.ContentType) {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: images, PDF, and Word documents.", input.ContentType))
	}

	storageKey := s.generateStorageKey(req.ID, input.FileName)

	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, input.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate document upload URL", zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateDocumentUploadResult{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmDocumentUpload verifies the object exists in storage and attaches it
// to the registration request.
func (s *RegistrationService) ConfirmDocumentUpload(ctx context.Context, input ConfirmDocumentUploadInput) (*RegistrationResponse, error) {
	req, err := s.registrationRepo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storageService.ObjectExists(ctx, input.StorageKey)
	if err != nil {
		s.logger.Error("Failed to verify document upload", zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"Document not found in storage. Please upload the file first.")
	}

	if err := req.AddDocument(input.StorageKey); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Verification document attached",
		zap.String("registration_id", req.ID.String()),
		zap.String("storage_key", input.StorageKey))

	resp := ToRegistrationResponse(req)
	return &resp, nil
}

// DocumentDownloadURLs returns presigned download URLs for all documents
// attached to a registration request.
func (s *RegistrationService) DocumentDownloadURLs(ctx context.Context, registrationID uuid.UUID) ([]DocumentURL, error) {
	req, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	urls := make([]DocumentURL, 0, len(req.DocumentKeys))
	for _, key := range req.DocumentKeys {
		url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("Failed to generate document download URL",
				zap.String("storage_key", key),
				zap.Error(err))
			continue
		}
		urls = append(urls, DocumentURL{StorageKey: key, URL: url, ExpiresAt: expiresAt})
	}

	return urls, nil
}

// generateStorageKey generates a unique storage key for a document
func (s *RegistrationService) generateStorageKey(registrationID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("sellers/%s/documents/%s%s", registrationID.String(), uuid.New().String(), ext)
}

// publishEvents publishes and clears an aggregate's pending domain events
func (s *RegistrationService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
