package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	appopas "github.com/opas/backend/internal/application/opas"
)

// InventoryHandler handles OPAS inventory HTTP requests
type InventoryHandler struct {
	BaseHandler
	auditRecorder
	inventoryService *appopas.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *appopas.InventoryService, auditService *audit.Service) *InventoryHandler {
	return &InventoryHandler{
		auditRecorder:    auditRecorder{auditService: auditService},
		inventoryService: inventoryService,
	}
}

// Get godoc
// @Summary      Get inventory item
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} dto.Response{data=InventoryItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	result, err := h.inventoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInventoryItemResponse(*result))
}

// GetByProductCode godoc
// @Summary      Get inventory item by product code
// @Tags         inventory
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} dto.Response{data=InventoryItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/product/{code} [get]
func (h *InventoryHandler) GetByProductCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	result, err := h.inventoryService.GetByProductCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInventoryItemResponse(*result))
}

// List godoc
// @Summary      List inventory
// @Tags         inventory
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        low_only query bool false "Only items at or below the minimum threshold"
// @Success      200 {object} dto.Response{data=[]InventoryItemResponse}
// @Security     BearerAuth
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var req ListInventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.inventoryService.List(c.Request.Context(), appopas.ListInventoryInput{
		Keyword:   req.Keyword,
		LowOnly:   req.LowOnly,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]InventoryItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = toInventoryItemResponse(item)
	}

	h.SuccessWithMeta(c, items, result.Total, result.Page, result.PageSize)
}

// Adjust godoc
// @Summary      Adjust inventory
// @Description  Apply a manual stock correction with a reason
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID"
// @Param        request body AdjustInventoryRequest true "Adjustment"
// @Success      200 {object} dto.Response{data=InventoryItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.inventoryService.Adjust(c.Request.Context(), appopas.AdjustInventoryInput{
		ItemID: id,
		Delta:  toDecimal(req.Delta),
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "inventory.adjust", "inventory_item", &id, map[string]interface{}{
		"delta":  req.Delta,
		"reason": req.Reason,
	})

	h.Success(c, toInventoryItemResponse(*result))
}

// Release godoc
// @Summary      Release inventory
// @Description  Record an outbound stock movement
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID"
// @Param        request body ReleaseInventoryRequest true "Quantity"
// @Success      200 {object} dto.Response{data=InventoryItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{id}/release [post]
func (h *InventoryHandler) Release(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req ReleaseInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.inventoryService.Release(c.Request.Context(), appopas.ReleaseInventoryInput{
		ItemID:   id,
		Quantity: toDecimal(req.Quantity),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInventoryItemResponse(*result))
}

// SetThresholds godoc
// @Summary      Set stock thresholds
// @Description  Set the minimum and maximum stock thresholds for an item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Item ID"
// @Param        request body SetThresholdsRequest true "Thresholds"
// @Success      200 {object} dto.Response{data=InventoryItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{id}/thresholds [put]
func (h *InventoryHandler) SetThresholds(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.inventoryService.SetThresholds(c.Request.Context(), appopas.SetThresholdsInput{
		ItemID:       id,
		MinThreshold: toDecimal(req.MinThreshold),
		MaxThreshold: toDecimal(req.MaxThreshold),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "inventory.set_thresholds", "inventory_item", &id, map[string]interface{}{
		"min_threshold": req.MinThreshold,
		"max_threshold": req.MaxThreshold,
	})

	h.Success(c, toInventoryItemResponse(*result))
}

// ListLowStock godoc
// @Summary      List low stock items
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]InventoryItemResponse}
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]InventoryItemResponse, len(items))
	for i, item := range items {
		responses[i] = toInventoryItemResponse(item)
	}

	h.Success(c, responses)
}

// Sweep godoc
// @Summary      Run low-stock sweep
// @Description  Check all inventory items and raise alerts for low stock
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=SweepResultResponse}
// @Security     BearerAuth
// @Router       /inventory/sweep [post]
func (h *InventoryHandler) Sweep(c *gin.Context) {
	result, err := h.inventoryService.Sweep(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, SweepResultResponse{
		ItemsChecked: result.ItemsChecked,
		LowStock:     result.LowStock,
	})
}
