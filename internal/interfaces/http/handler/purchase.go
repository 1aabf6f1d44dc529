package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	appopas "github.com/opas/backend/internal/application/opas"
	"github.com/opas/backend/internal/domain/opas"
)

// PurchaseHandler handles bulk purchase HTTP requests
type PurchaseHandler struct {
	BaseHandler
	auditRecorder
	purchaseService *appopas.PurchaseService
}

// NewPurchaseHandler creates a new bulk purchase handler
func NewPurchaseHandler(purchaseService *appopas.PurchaseService, auditService *audit.Service) *PurchaseHandler {
	return &PurchaseHandler{
		auditRecorder:   auditRecorder{auditService: auditService},
		purchaseService: purchaseService,
	}
}

func toPurchaseItemInput(item PurchaseItemRequest) appopas.PurchaseItemInput {
	return appopas.PurchaseItemInput{
		ProductCode: item.ProductCode,
		ProductName: item.ProductName,
		Quantity:    toDecimal(item.Quantity),
		UnitPrice:   toDecimal(item.UnitPrice),
		Unit:        item.Unit,
	}
}

// Create godoc
// @Summary      Create bulk purchase
// @Description  Create a draft bulk purchase from a seller
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body CreatePurchaseRequest true "Purchase data"
// @Success      201 {object} dto.Response{data=PurchaseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	items := make([]appopas.PurchaseItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = toPurchaseItemInput(item)
	}

	result, err := h.purchaseService.Create(c.Request.Context(), appopas.CreatePurchaseInput{
		SellerID: sellerID,
		Remark:   req.Remark,
		Items:    items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "purchase.create", "purchase", &result.ID, map[string]interface{}{
		"purchase_number": result.PurchaseNumber,
		"total_amount":    result.TotalAmount.String(),
	})

	h.Created(c, toPurchaseResponse(*result))
}

// AddItem godoc
// @Summary      Add purchase item
// @Description  Add a line item to a draft purchase
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Param        request body AddPurchaseItemRequest true "Line item"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/items [post]
func (h *PurchaseHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	var req AddPurchaseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.purchaseService.AddItem(c.Request.Context(), appopas.AddPurchaseItemInput{
		PurchaseID: id,
		Item:       toPurchaseItemInput(req.Item),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPurchaseResponse(*result))
}

// UpdateItem godoc
// @Summary      Update purchase item
// @Description  Update quantity or price of a draft purchase line
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Param        itemId path string true "Item ID"
// @Param        request body UpdatePurchaseItemRequest true "New values"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/items/{itemId} [put]
func (h *PurchaseHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req UpdatePurchaseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.purchaseService.UpdateItem(c.Request.Context(), appopas.UpdatePurchaseItemInput{
		PurchaseID: id,
		ItemID:     itemID,
		Quantity:   toDecimal(req.Quantity),
		UnitPrice:  toDecimal(req.UnitPrice),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPurchaseResponse(*result))
}

// RemoveItem godoc
// @Summary      Remove purchase item
// @Description  Remove a line item from a draft purchase
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Param        itemId path string true "Item ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/items/{itemId} [delete]
func (h *PurchaseHandler) RemoveItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	result, err := h.purchaseService.RemoveItem(c.Request.Context(), appopas.RemovePurchaseItemInput{
		PurchaseID: id,
		ItemID:     itemID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPurchaseResponse(*result))
}

// Delete godoc
// @Summary      Delete purchase
// @Description  Delete a draft purchase
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      204 "No Content"
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	if err := h.purchaseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "purchase.delete", "purchase", &id, nil)

	h.NoContent(c)
}

// Confirm godoc
// @Summary      Confirm purchase
// @Description  Confirm a draft purchase, locking its lines
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/confirm [post]
func (h *PurchaseHandler) Confirm(c *gin.Context) {
	h.transition(c, "purchase.confirm", h.purchaseService.Confirm)
}

// Receive godoc
// @Summary      Receive purchase
// @Description  Mark a confirmed purchase as received and move stock into inventory
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *gin.Context) {
	h.transition(c, "purchase.receive", h.purchaseService.Receive)
}

// MarkPaid godoc
// @Summary      Mark purchase paid
// @Description  Mark a received purchase as paid to the seller
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/pay [post]
func (h *PurchaseHandler) MarkPaid(c *gin.Context) {
	h.transition(c, "purchase.mark_paid", h.purchaseService.MarkPaid)
}

// Cancel godoc
// @Summary      Cancel purchase
// @Description  Cancel a purchase that has not been received yet
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	h.transition(c, "purchase.cancel", h.purchaseService.Cancel)
}

// Get godoc
// @Summary      Get purchase
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/{id} [get]
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	result, err := h.purchaseService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPurchaseResponse(*result))
}

// GetByNumber godoc
// @Summary      Get purchase by number
// @Tags         purchases
// @Produce      json
// @Param        number path string true "Purchase number"
// @Success      200 {object} dto.Response{data=PurchaseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchases/number/{number} [get]
func (h *PurchaseHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Purchase number is required")
		return
	}

	result, err := h.purchaseService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPurchaseResponse(*result))
}

// List godoc
// @Summary      List purchases
// @Tags         purchases
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        seller_id query string false "Filter by seller"
// @Param        status query string false "Filter by status"
// @Success      200 {object} dto.Response{data=[]PurchaseResponse}
// @Security     BearerAuth
// @Router       /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	var req ListPurchasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := appopas.ListPurchasesInput{
		Keyword:   req.Keyword,
		From:      req.From,
		To:        req.To,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
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
		status := opas.PurchaseStatus(req.Status)
		input.Status = &status
	}

	result, err := h.purchaseService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	purchases := make([]PurchaseResponse, len(result.Purchases))
	for i, p := range result.Purchases {
		purchases[i] = toPurchaseResponse(p)
	}

	h.SuccessWithMeta(c, purchases, result.Total, result.Page, result.PageSize)
}

func (h *PurchaseHandler) transition(
	c *gin.Context,
	action string,
	op func(ctx context.Context, id uuid.UUID) (*appopas.PurchaseResponse, error),
) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return
	}

	result, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, action, "purchase", &id, map[string]interface{}{
		"purchase_number": result.PurchaseNumber,
		"status":          string(result.Status),
	})

	h.Success(c, toPurchaseResponse(*result))
}
