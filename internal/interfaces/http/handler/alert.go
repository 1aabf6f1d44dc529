package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appalert "github.com/opas/backend/internal/application/alert"
	"github.com/opas/backend/internal/domain/alert"
)

// AlertHandler handles marketplace alert HTTP requests
type AlertHandler struct {
	BaseHandler
	alertService *appalert.Service
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertService *appalert.Service) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Create godoc
// @Summary      Create alert
// @Description  Manually raise a marketplace alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        request body CreateAlertRequest true "Alert data"
// @Success      201 {object} dto.Response{data=AlertResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /alerts [post]
func (h *AlertHandler) Create(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := appalert.CreateAlertInput{
		Category: alert.Category(req.Category),
		Severity: alert.Severity(req.Severity),
		Title:    req.Title,
		Message:  req.Message,
	}
	if req.ReferenceID != "" {
		refID, err := uuid.Parse(req.ReferenceID)
		if err != nil {
			h.BadRequest(c, "Invalid reference ID")
			return
		}
		input.ReferenceID = &refID
	}

	result, err := h.alertService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAlertResponse(*result))
}

// Get godoc
// @Summary      Get alert
// @Tags         alerts
// @Produce      json
// @Param        id path string true "Alert ID"
// @Success      200 {object} dto.Response{data=AlertResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /alerts/{id} [get]
func (h *AlertHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	result, err := h.alertService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAlertResponse(*result))
}

// List godoc
// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        category query string false "Filter by category"
// @Param        severity query string false "Filter by severity"
// @Success      200 {object} dto.Response{data=[]AlertResponse}
// @Security     BearerAuth
// @Router       /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	var req ListAlertsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := appalert.ListAlertsInput{
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := alert.Status(req.Status)
		input.Status = &status
	}
	if req.Category != "" {
		category := alert.Category(req.Category)
		input.Category = &category
	}
	if req.Severity != "" {
		severity := alert.Severity(req.Severity)
		input.Severity = &severity
	}

	result, err := h.alertService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	alerts := make([]AlertResponse, len(result.Alerts))
	for i, a := range result.Alerts {
		alerts[i] = toAlertResponse(a)
	}

	h.SuccessWithMeta(c, alerts, result.Total, result.Page, result.PageSize)
}

// Acknowledge godoc
// @Summary      Acknowledge alert
// @Description  Mark an active alert as being handled
// @Tags         alerts
// @Produce      json
// @Param        id path string true "Alert ID"
// @Success      200 {object} dto.Response{data=AlertResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	h.handle(c, h.alertService.Acknowledge)
}

// Resolve godoc
// @Summary      Resolve alert
// @Tags         alerts
// @Produce      json
// @Param        id path string true "Alert ID"
// @Success      200 {object} dto.Response{data=AlertResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	h.handle(c, h.alertService.Resolve)
}

// CountActive godoc
// @Summary      Count active alerts
// @Tags         alerts
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Security     BearerAuth
// @Router       /alerts/active/count [get]
func (h *AlertHandler) CountActive(c *gin.Context) {
	count, err := h.alertService.CountActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}

func (h *AlertHandler) handle(
	c *gin.Context,
	op func(ctx context.Context, input appalert.HandleAlertInput) (*appalert.AlertResponse, error),
) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	result, err := op(c.Request.Context(), appalert.HandleAlertInput{
		AlertID: id,
		AdminID: adminID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAlertResponse(*result))
}
