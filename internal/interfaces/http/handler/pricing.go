package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	apppricing "github.com/opas/backend/internal/application/pricing"
	"github.com/opas/backend/internal/domain/pricing"
)

// CeilingHandler handles price ceiling HTTP requests
type CeilingHandler struct {
	BaseHandler
	auditRecorder
	ceilingService *apppricing.CeilingService
}

// NewCeilingHandler creates a new price ceiling handler
func NewCeilingHandler(ceilingService *apppricing.CeilingService, auditService *audit.Service) *CeilingHandler {
	return &CeilingHandler{
		auditRecorder:  auditRecorder{auditService: auditService},
		ceilingService: ceilingService,
	}
}

// Create godoc
// @Summary      Create price ceiling
// @Description  Set a maximum allowed price for a product
// @Tags         price-ceilings
// @Accept       json
// @Produce      json
// @Param        request body CreateCeilingRequest true "Ceiling data"
// @Success      201 {object} dto.Response{data=CeilingResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings [post]
func (h *CeilingHandler) Create(c *gin.Context) {
	var req CreateCeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.ceilingService.Create(c.Request.Context(), apppricing.CreateCeilingInput{
		ProductCode:    req.ProductCode,
		ProductName:    req.ProductName,
		Category:       req.Category,
		CeilingPrice:   toDecimal(req.CeilingPrice),
		Unit:           req.Unit,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "price_ceiling.create", "price_ceiling", &result.ID, map[string]interface{}{
		"product_code":  result.ProductCode,
		"ceiling_price": result.CeilingPrice.String(),
	})

	h.Created(c, toCeilingResponse(*result))
}

// Update godoc
// @Summary      Update price ceiling
// @Tags         price-ceilings
// @Accept       json
// @Produce      json
// @Param        id path string true "Ceiling ID"
// @Param        request body UpdateCeilingRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=CeilingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings/{id} [put]
func (h *CeilingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ceiling ID")
		return
	}

	var req UpdateCeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := apppricing.UpdateCeilingInput{
		CeilingID:      id,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
	}
	if req.CeilingPrice != nil {
		input.CeilingPrice = toDecimalPtr(*req.CeilingPrice)
	}

	result, err := h.ceilingService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "price_ceiling.update", "price_ceiling", &id, nil)

	h.Success(c, toCeilingResponse(*result))
}

// Deactivate godoc
// @Summary      Deactivate price ceiling
// @Tags         price-ceilings
// @Produce      json
// @Param        id path string true "Ceiling ID"
// @Success      200 {object} dto.Response{data=CeilingResponse}
// @Security     BearerAuth
// @Router       /price-ceilings/{id}/deactivate [post]
func (h *CeilingHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ceiling ID")
		return
	}

	result, err := h.ceilingService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "price_ceiling.deactivate", "price_ceiling", &id, nil)

	h.Success(c, toCeilingResponse(*result))
}

// Reactivate godoc
// @Summary      Reactivate price ceiling
// @Tags         price-ceilings
// @Produce      json
// @Param        id path string true "Ceiling ID"
// @Success      200 {object} dto.Response{data=CeilingResponse}
// @Security     BearerAuth
// @Router       /price-ceilings/{id}/reactivate [post]
func (h *CeilingHandler) Reactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ceiling ID")
		return
	}

	result, err := h.ceilingService.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "price_ceiling.reactivate", "price_ceiling", &id, nil)

	h.Success(c, toCeilingResponse(*result))
}

// Get godoc
// @Summary      Get price ceiling
// @Tags         price-ceilings
// @Produce      json
// @Param        id path string true "Ceiling ID"
// @Success      200 {object} dto.Response{data=CeilingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings/{id} [get]
func (h *CeilingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ceiling ID")
		return
	}

	result, err := h.ceilingService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCeilingResponse(*result))
}

// GetActiveForProduct godoc
// @Summary      Get active ceiling for product
// @Description  Get the currently effective ceiling for a product code
// @Tags         price-ceilings
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.Response{data=CeilingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings/product/{code} [get]
func (h *CeilingHandler) GetActiveForProduct(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	result, err := h.ceilingService.GetActiveForProduct(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toCeilingResponse(*result))
}

// List godoc
// @Summary      List price ceilings
// @Tags         price-ceilings
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        category query string false "Filter by category"
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} dto.Response{data=[]CeilingResponse}
// @Security     BearerAuth
// @Router       /price-ceilings [get]
func (h *CeilingHandler) List(c *gin.Context) {
	var req ListCeilingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.ceilingService.List(c.Request.Context(), apppricing.ListCeilingsInput{
		Keyword:   req.Keyword,
		Category:  req.Category,
		Active:    req.Active,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ceilings := make([]CeilingResponse, len(result.Ceilings))
	for i, ceiling := range result.Ceilings {
		ceilings[i] = toCeilingResponse(ceiling)
	}

	h.SuccessWithMeta(c, ceilings, result.Total, result.Page, result.PageSize)
}

// ListingHandler handles product listing HTTP requests
type ListingHandler struct {
	BaseHandler
	listingService *apppricing.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *apppricing.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// Upsert godoc
// @Summary      Create or update listing
// @Description  Upsert a seller's listing and run an immediate compliance check
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        request body UpsertListingRequest true "Listing data"
// @Success      200 {object} dto.Response{data=UpsertListingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings [put]
func (h *ListingHandler) Upsert(c *gin.Context) {
	var req UpsertListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	result, err := h.listingService.Upsert(c.Request.Context(), apppricing.UpsertListingInput{
		SellerID:    sellerID,
		ProductCode: req.ProductCode,
		ProductName: req.ProductName,
		ListedPrice: toDecimal(req.ListedPrice),
		Quantity:    toDecimal(req.Quantity),
		Unit:        req.Unit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := UpsertListingResponse{
		Listing:   toListingResponse(result.Listing),
		Compliant: result.Compliant,
	}
	if result.Violation != nil {
		violation := toNonComplianceResponse(*result.Violation)
		response.Violation = &violation
	}

	h.Success(c, response)
}

// Get godoc
// @Summary      Get listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	result, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListingResponse(*result))
}

// List godoc
// @Summary      List listings
// @Tags         listings
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        seller_id query string false "Filter by seller"
// @Param        product_code query string false "Filter by product"
// @Success      200 {object} dto.Response{data=[]ListingResponse}
// @Security     BearerAuth
// @Router       /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	var req ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := apppricing.ListListingsInput{
		Keyword:     req.Keyword,
		ProductCode: req.ProductCode,
		Active:      req.Active,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	if req.SellerID != "" {
		sellerID, err := uuid.Parse(req.SellerID)
		if err != nil {
			h.BadRequest(c, "Invalid seller ID")
			return
		}
		input.SellerID = &sellerID
	}

	result, err := h.listingService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	listings := make([]ListingResponse, len(result.Listings))
	for i, l := range result.Listings {
		listings[i] = toListingResponse(l)
	}

	h.SuccessWithMeta(c, listings, result.Total, result.Page, result.PageSize)
}

// Deactivate godoc
// @Summary      Deactivate listing
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=ListingResponse}
// @Security     BearerAuth
// @Router       /listings/{id}/deactivate [post]
func (h *ListingHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	result, err := h.listingService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toListingResponse(*result))
}

// ComplianceHandler handles price compliance HTTP requests
type ComplianceHandler struct {
	BaseHandler
	auditRecorder
	complianceService *apppricing.ComplianceService
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(complianceService *apppricing.ComplianceService, auditService *audit.Service) *ComplianceHandler {
	return &ComplianceHandler{
		auditRecorder:     auditRecorder{auditService: auditService},
		complianceService: complianceService,
	}
}

// Scan godoc
// @Summary      Run compliance scan
// @Description  Check every active listing against the effective ceilings
// @Tags         compliance
// @Produce      json
// @Success      200 {object} dto.Response{data=ScanResultResponse}
// @Security     BearerAuth
// @Router       /compliance/scan [post]
func (h *ComplianceHandler) Scan(c *gin.Context) {
	result, err := h.complianceService.Scan(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "compliance.scan", "compliance_scan", nil, map[string]interface{}{
		"listings_checked": result.ListingsChecked,
		"violations":       result.Violations,
	})

	h.Success(c, ScanResultResponse{
		CeilingsScanned: result.CeilingsScanned,
		ListingsChecked: result.ListingsChecked,
		Violations:      result.Violations,
		NewRecords:      result.NewRecords,
		Refreshed:       result.Refreshed,
	})
}

// Get godoc
// @Summary      Get non-compliance record
// @Tags         compliance
// @Produce      json
// @Param        id path string true "Record ID"
// @Success      200 {object} dto.Response{data=NonComplianceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /compliance/records/{id} [get]
func (h *ComplianceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	result, err := h.complianceService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toNonComplianceResponse(*result))
}

// List godoc
// @Summary      List non-compliance records
// @Tags         compliance
// @Produce      json
// @Param        seller_id query string false "Filter by seller"
// @Param        product_code query string false "Filter by product"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]NonComplianceResponse}
// @Security     BearerAuth
// @Router       /compliance/records [get]
func (h *ComplianceHandler) List(c *gin.Context) {
	var req ListNonComplianceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := apppricing.ListNonComplianceInput{
		ProductCode: req.ProductCode,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	if req.SellerID != "" {
		sellerID, err := uuid.Parse(req.SellerID)
		if err != nil {
			h.BadRequest(c, "Invalid seller ID")
			return
		}
		input.SellerID = &sellerID
	}
	if req.Status != "" {
		status := pricing.NonComplianceStatus(req.Status)
		input.Status = &status
	}

	result, err := h.complianceService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	records := make([]NonComplianceResponse, len(result.Records))
	for i, r := range result.Records {
		records[i] = toNonComplianceResponse(r)
	}

	h.SuccessWithMeta(c, records, result.Total, result.Page, result.PageSize)
}

// Resolve godoc
// @Summary      Resolve non-compliance record
// @Description  Close a record after the seller corrected the price
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body CloseRecordRequest true "Resolution note"
// @Success      200 {object} dto.Response{data=NonComplianceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /compliance/records/{id}/resolve [post]
func (h *ComplianceHandler) Resolve(c *gin.Context) {
	h.closeRecord(c, "compliance.resolve", h.complianceService.Resolve)
}

// Waive godoc
// @Summary      Waive non-compliance record
// @Description  Close a record without penalty, e.g. for a justified exception
// @Tags         compliance
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID"
// @Param        request body CloseRecordRequest true "Waiver note"
// @Success      200 {object} dto.Response{data=NonComplianceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /compliance/records/{id}/waive [post]
func (h *ComplianceHandler) Waive(c *gin.Context) {
	h.closeRecord(c, "compliance.waive", h.complianceService.Waive)
}

// Rate godoc
// @Summary      Get compliance rate
// @Description  Get the share of active listings that comply with their ceilings
// @Tags         compliance
// @Produce      json
// @Success      200 {object} dto.Response{data=ComplianceRateResponse}
// @Security     BearerAuth
// @Router       /compliance/rate [get]
func (h *ComplianceHandler) Rate(c *gin.Context) {
	result, err := h.complianceService.ComplianceRate(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ComplianceRateResponse{
		TotalListings:     result.TotalListings,
		CompliantListings: result.CompliantListings,
		Rate:              result.Rate,
	})
}

func (h *ComplianceHandler) closeRecord(
	c *gin.Context,
	action string,
	op func(ctx context.Context, input apppricing.CloseRecordInput) (*apppricing.NonComplianceResponse, error),
) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID")
		return
	}

	var req CloseRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := op(c.Request.Context(), apppricing.CloseRecordInput{
		RecordID: id,
		AdminID:  adminID,
		Note:     req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, action, "non_compliance_record", &id, map[string]interface{}{
		"note": req.Note,
	})

	h.Success(c, toNonComplianceResponse(*result))
}
