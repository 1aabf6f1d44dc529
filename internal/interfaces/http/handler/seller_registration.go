package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	appseller "github.com/opas/backend/internal/application/seller"
	"github.com/opas/backend/internal/domain/seller"
)

// SellerRegistrationHandler handles seller registration HTTP requests
type SellerRegistrationHandler struct {
	BaseHandler
	auditRecorder
	registrationService *appseller.RegistrationService
}

// NewSellerRegistrationHandler creates a new seller registration handler
func NewSellerRegistrationHandler(registrationService *appseller.RegistrationService, auditService *audit.Service) *SellerRegistrationHandler {
	return &SellerRegistrationHandler{
		auditRecorder:       auditRecorder{auditService: auditService},
		registrationService: registrationService,
	}
}

// Submit godoc
// @Summary      Submit seller registration
// @Description  Submit a new seller registration request for review
// @Tags         seller-registrations
// @Accept       json
// @Produce      json
// @Param        request body SubmitRegistrationRequest true "Registration data"
// @Success      201 {object} dto.Response{data=RegistrationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations [post]
func (h *SellerRegistrationHandler) Submit(c *gin.Context) {
	var req SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		h.BadRequest(c, "Invalid applicant ID")
		return
	}

	result, err := h.registrationService.Submit(c.Request.Context(), appseller.SubmitRegistrationInput{
		ApplicantID:   applicantID,
		BusinessName:  req.BusinessName,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		ContactEmail:  req.ContactEmail,
		MarketSection: req.MarketSection,
		StallNumber:   req.StallNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toRegistrationResponse(*result))
}

// Get godoc
// @Summary      Get seller registration
// @Tags         seller-registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=RegistrationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id} [get]
func (h *SellerRegistrationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	result, err := h.registrationService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRegistrationResponse(*result))
}

// List godoc
// @Summary      List seller registrations
// @Tags         seller-registrations
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]RegistrationResponse}
// @Security     BearerAuth
// @Router       /seller-registrations [get]
func (h *SellerRegistrationHandler) List(c *gin.Context) {
	var req ListRegistrationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := appseller.ListRegistrationsInput{
		Keyword:   req.Keyword,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := seller.RegistrationStatus(req.Status)
		input.Status = &status
	}

	result, err := h.registrationService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	requests := make([]RegistrationResponse, len(result.Requests))
	for i, r := range result.Requests {
		requests[i] = toRegistrationResponse(r)
	}

	h.SuccessWithMeta(c, requests, result.Total, result.Page, result.PageSize)
}

// StartReview godoc
// @Summary      Start registration review
// @Description  Move a pending registration to under review
// @Tags         seller-registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=RegistrationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/review [post]
func (h *SellerRegistrationHandler) StartReview(c *gin.Context) {
	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	result, err := h.registrationService.StartReview(c.Request.Context(), appseller.ReviewInput{
		RegistrationID: id,
		ReviewerID:     reviewerID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "seller_registration.start_review", "seller_registration", &id, nil)

	h.Success(c, toRegistrationResponse(*result))
}

// Approve godoc
// @Summary      Approve seller registration
// @Description  Approve a registration under review and create the seller profile
// @Tags         seller-registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=ApproveRegistrationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/approve [post]
func (h *SellerRegistrationHandler) Approve(c *gin.Context) {
	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	result, err := h.registrationService.Approve(c.Request.Context(), appseller.ReviewInput{
		RegistrationID: id,
		ReviewerID:     reviewerID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "seller_registration.approve", "seller_registration", &id, map[string]interface{}{
		"seller_code": result.Profile.SellerCode,
	})

	h.Success(c, ApproveRegistrationResponse{
		Registration: toRegistrationResponse(result.Registration),
		Profile:      toProfileResponse(result.Profile),
	})
}

// Reject godoc
// @Summary      Reject seller registration
// @Description  Reject a registration under review with a reason
// @Tags         seller-registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body RejectRegistrationRequest true "Rejection reason"
// @Success      200 {object} dto.Response{data=RegistrationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/reject [post]
func (h *SellerRegistrationHandler) Reject(c *gin.Context) {
	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	var req RejectRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.registrationService.Reject(c.Request.Context(), appseller.RejectInput{
		RegistrationID: id,
		ReviewerID:     reviewerID,
		Reason:         req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "seller_registration.reject", "seller_registration", &id, map[string]interface{}{
		"reason": req.Reason,
	})

	h.Success(c, toRegistrationResponse(*result))
}

// InitiateDocumentUpload godoc
// @Summary      Initiate document upload
// @Description  Get a presigned URL for uploading a verification document
// @Tags         seller-registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body InitiateDocumentUploadRequest true "Document metadata"
// @Success      200 {object} dto.Response{data=DocumentUploadResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/documents [post]
func (h *SellerRegistrationHandler) InitiateDocumentUpload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	var req InitiateDocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.registrationService.InitiateDocumentUpload(c.Request.Context(), appseller.InitiateDocumentUploadInput{
		RegistrationID: id,
		FileName:       req.FileName,
		ContentType:    req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DocumentUploadResponse{
		StorageKey: result.StorageKey,
		UploadURL:  result.UploadURL,
		ExpiresAt:  result.ExpiresAt,
	})
}

// ConfirmDocumentUpload godoc
// @Summary      Confirm document upload
// @Description  Attach an uploaded document to the registration after verifying it exists
// @Tags         seller-registrations
// @Accept       json
// @Produce      json
// @Param        id path string true "Registration ID"
// @Param        request body ConfirmDocumentUploadRequest true "Storage key"
// @Success      200 {object} dto.Response{data=RegistrationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/documents/confirm [post]
func (h *SellerRegistrationHandler) ConfirmDocumentUpload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	var req ConfirmDocumentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.registrationService.ConfirmDocumentUpload(c.Request.Context(), appseller.ConfirmDocumentUploadInput{
		RegistrationID: id,
		StorageKey:     req.StorageKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRegistrationResponse(*result))
}

// ListDocuments godoc
// @Summary      List registration documents
// @Description  Get presigned download URLs for a registration's documents
// @Tags         seller-registrations
// @Produce      json
// @Param        id path string true "Registration ID"
// @Success      200 {object} dto.Response{data=[]DocumentURLResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /seller-registrations/{id}/documents [get]
func (h *SellerRegistrationHandler) ListDocuments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	urls, err := h.registrationService.DocumentDownloadURLs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	docs := make([]DocumentURLResponse, len(urls))
	for i, u := range urls {
		docs[i] = DocumentURLResponse{
			StorageKey: u.StorageKey,
			URL:        u.URL,
			ExpiresAt:  u.ExpiresAt,
		}
	}

	h.Success(c, docs)
}
