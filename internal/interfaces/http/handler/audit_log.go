package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaudit "github.com/opas/backend/internal/application/audit"
)

// AuditLogHandler handles audit log HTTP requests. The log is append-only:
// entries are written by the mutation handlers, this surface is read-only.
type AuditLogHandler struct {
	BaseHandler
	auditService *appaudit.Service
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(auditService *appaudit.Service) *AuditLogHandler {
	return &AuditLogHandler{
		auditService: auditService,
	}
}

// ListAuditEntriesRequest represents the query parameters for listing audit entries
type ListAuditEntriesRequest struct {
	AdminID    string     `form:"admin_id" binding:"omitempty,uuid"`
	Action     string     `form:"action" binding:"omitempty,max=100"`
	ObjectType string     `form:"object_type" binding:"omitempty,max=100"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page       int        `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// AuditEntryResponse represents an audit log entry in API responses
type AuditEntryResponse struct {
	ID            uuid.UUID              `json:"id"`
	AdminID       uuid.UUID              `json:"admin_id"`
	AdminUsername string                 `json:"admin_username"`
	Action        string                 `json:"action"`
	ObjectType    string                 `json:"object_type"`
	ObjectID      *uuid.UUID             `json:"object_id,omitempty"`
	Detail        map[string]interface{} `json:"detail,omitempty"`
	RequestID     string                 `json:"request_id,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func toAuditEntryResponse(e appaudit.EntryResponse) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            e.ID,
		AdminID:       e.AdminID,
		AdminUsername: e.AdminUsername,
		Action:        e.Action,
		ObjectType:    e.ObjectType,
		ObjectID:      e.ObjectID,
		Detail:        e.Detail,
		RequestID:     e.RequestID,
		CreatedAt:     e.CreatedAt,
	}
}

func (h *AuditLogHandler) bindListInput(c *gin.Context) (*appaudit.ListEntriesInput, bool) {
	var req ListAuditEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return nil, false
	}

	input := appaudit.ListEntriesInput{
		Action:     req.Action,
		ObjectType: req.ObjectType,
		From:       req.From,
		To:         req.To,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.AdminID != "" {
		adminID, err := uuid.Parse(req.AdminID)
		if err != nil {
			h.BadRequest(c, "Invalid admin ID")
			return nil, false
		}
		input.AdminID = &adminID
	}

	return &input, true
}

// Get godoc
// @Summary      Get audit entry
// @Tags         audit-log
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} dto.Response{data=AuditEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /audit-log/{id} [get]
func (h *AuditLogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	result, err := h.auditService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAuditEntryResponse(*result))
}

// List godoc
// @Summary      List audit entries
// @Tags         audit-log
// @Produce      json
// @Param        admin_id query string false "Filter by admin"
// @Param        action query string false "Filter by action"
// @Param        object_type query string false "Filter by object type"
// @Success      200 {object} dto.Response{data=[]AuditEntryResponse}
// @Security     BearerAuth
// @Router       /audit-log [get]
func (h *AuditLogHandler) List(c *gin.Context) {
	input, ok := h.bindListInput(c)
	if !ok {
		return
	}

	result, err := h.auditService.List(c.Request.Context(), *input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entries := make([]AuditEntryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = toAuditEntryResponse(e)
	}

	h.SuccessWithMeta(c, entries, result.Total, result.Page, result.PageSize)
}

// Count godoc
// @Summary      Count audit entries
// @Tags         audit-log
// @Produce      json
// @Success      200 {object} dto.Response{data=CountData}
// @Security     BearerAuth
// @Router       /audit-log/count [get]
func (h *AuditLogHandler) Count(c *gin.Context) {
	input, ok := h.bindListInput(c)
	if !ok {
		return
	}

	count, err := h.auditService.Count(c.Request.Context(), *input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CountData{Count: count})
}
