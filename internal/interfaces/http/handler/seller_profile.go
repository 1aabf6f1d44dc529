package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	appseller "github.com/opas/backend/internal/application/seller"
	"github.com/opas/backend/internal/domain/seller"
)

// SellerProfileHandler handles seller profile HTTP requests
type SellerProfileHandler struct {
	BaseHandler
	auditRecorder
	profileService *appseller.ProfileService
}

// NewSellerProfileHandler creates a new seller profile handler
func NewSellerProfileHandler(profileService *appseller.ProfileService, auditService *audit.Service) *SellerProfileHandler {
	return &SellerProfileHandler{
		auditRecorder:  auditRecorder{auditService: auditService},
		profileService: profileService,
	}
}

// Get godoc
// @Summary      Get seller profile
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Profile ID"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id} [get]
func (h *SellerProfileHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	result, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProfileResponse(*result))
}

// GetByCode godoc
// @Summary      Get seller profile by code
// @Tags         sellers
// @Produce      json
// @Param        code path string true "Seller code"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/code/{code} [get]
func (h *SellerProfileHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Seller code is required")
		return
	}

	result, err := h.profileService.GetBySellerCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProfileResponse(*result))
}

// List godoc
// @Summary      List seller profiles
// @Tags         sellers
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "Filter by status"
// @Param        market_section query string false "Filter by market section"
// @Success      200 {object} dto.Response{data=[]ProfileResponse}
// @Security     BearerAuth
// @Router       /sellers [get]
func (h *SellerProfileHandler) List(c *gin.Context) {
	var req ListProfilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := appseller.ListProfilesInput{
		Keyword:       req.Keyword,
		MarketSection: req.MarketSection,
		Page:          req.Page,
		PageSize:      req.PageSize,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}
	if req.Status != "" {
		status := seller.ProfileStatus(req.Status)
		input.Status = &status
	}

	result, err := h.profileService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	profiles := make([]ProfileResponse, len(result.Profiles))
	for i, p := range result.Profiles {
		profiles[i] = toProfileResponse(p)
	}

	h.SuccessWithMeta(c, profiles, result.Total, result.Page, result.PageSize)
}

// Suspend godoc
// @Summary      Suspend seller
// @Description  Suspend an active seller with a reason
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        request body ProfileStatusChangeRequest true "Suspension reason"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/suspend [post]
func (h *SellerProfileHandler) Suspend(c *gin.Context) {
	h.changeStatus(c, "seller.suspend", h.profileService.Suspend)
}

// Reinstate godoc
// @Summary      Reinstate seller
// @Description  Reinstate a suspended seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        request body ProfileStatusChangeRequest true "Reinstatement reason"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/reinstate [post]
func (h *SellerProfileHandler) Reinstate(c *gin.Context) {
	h.changeStatus(c, "seller.reinstate", h.profileService.Reinstate)
}

// Ban godoc
// @Summary      Ban seller
// @Description  Permanently ban a seller with a reason
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        request body ProfileStatusChangeRequest true "Ban reason"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/ban [post]
func (h *SellerProfileHandler) Ban(c *gin.Context) {
	h.changeStatus(c, "seller.ban", h.profileService.Ban)
}

// Rate godoc
// @Summary      Rate seller
// @Description  Record a buyer rating (1-5) into the seller's running average
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        request body RateSellerRequest true "Rating"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/rate [post]
func (h *SellerProfileHandler) Rate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	var req RateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.profileService.Rate(c.Request.Context(), appseller.RateSellerInput{
		ProfileID: id,
		Rating:    toDecimal(req.Rating),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProfileResponse(*result))
}

// RecordFulfillment godoc
// @Summary      Record order fulfillment
// @Description  Record whether a seller fulfilled an order, updating the fulfillment rate
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID"
// @Param        request body RecordFulfillmentRequest true "Fulfillment outcome"
// @Success      200 {object} dto.Response{data=ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/fulfillment [post]
func (h *SellerProfileHandler) RecordFulfillment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	var req RecordFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.profileService.RecordFulfillment(c.Request.Context(), appseller.RecordFulfillmentInput{
		ProfileID: id,
		Fulfilled: *req.Fulfilled,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProfileResponse(*result))
}

func (h *SellerProfileHandler) changeStatus(
	c *gin.Context,
	action string,
	op func(ctx context.Context, input appseller.StatusChangeInput) (*appseller.ProfileResponse, error),
) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid profile ID")
		return
	}

	var req ProfileStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := op(c.Request.Context(), appseller.StatusChangeInput{
		ProfileID: id,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, action, "seller_profile", &id, map[string]interface{}{
		"reason": req.Reason,
	})

	h.Success(c, toProfileResponse(*result))
}
