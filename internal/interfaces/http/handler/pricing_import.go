package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	apppricing "github.com/opas/backend/internal/application/pricing"
	csvimport "github.com/opas/backend/internal/infrastructure/import"
)

// maxImportFileSize caps uploaded CSV files at 10MB
const maxImportFileSize = 10 * 1024 * 1024

// CeilingImportHandler handles bulk price ceiling imports from CSV files
type CeilingImportHandler struct {
	BaseHandler
	auditRecorder
	importService *apppricing.CeilingImportService
}

// NewCeilingImportHandler creates a new ceiling import handler
func NewCeilingImportHandler(importService *apppricing.CeilingImportService, auditService *audit.Service) *CeilingImportHandler {
	return &CeilingImportHandler{
		auditRecorder: auditRecorder{auditService: auditService},
		importService: importService,
	}
}

// Import godoc
// @Summary      Import price ceilings from CSV
// @Description  Validate and import a CSV file of price ceilings. Pass dry_run=true to validate only.
// @Tags         price-ceilings
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file (product_code, product_name, category, ceiling_price, unit, effective_from)"
// @Param        dry_run query bool false "Validate without importing"
// @Success      200 {object} dto.Response{data=CeilingImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings/import [post]
func (h *CeilingImportHandler) Import(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "CSV file is required")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	dryRun := c.Query("dry_run") == "true"

	result, err := h.importService.Import(c.Request.Context(), apppricing.ImportCeilingsInput{
		UserID:   userID,
		FileName: fileHeader.Filename,
		FileSize: fileHeader.Size,
		Reader:   file,
		DryRun:   dryRun,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !dryRun && result.Created > 0 {
		h.record(c, "price_ceiling.import", "import_session", &result.SessionID, map[string]interface{}{
			"file_name": fileHeader.Filename,
			"created":   result.Created,
		})
	}

	h.Success(c, toCeilingImportResponse(result))
}

// GetSession godoc
// @Summary      Get import session
// @Tags         price-ceilings
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} dto.Response{data=ImportSessionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /price-ceilings/import/sessions/{id} [get]
func (h *CeilingImportHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.importService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toImportSessionResponse(session))
}

// ListSessions godoc
// @Summary      List my import sessions
// @Tags         price-ceilings
// @Produce      json
// @Param        limit query int false "Maximum sessions to return"
// @Success      200 {object} dto.Response{data=[]ImportSessionResponse}
// @Security     BearerAuth
// @Router       /price-ceilings/import/sessions [get]
func (h *CeilingImportHandler) ListSessions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ListImportSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	sessions, err := h.importService.ListSessions(c.Request.Context(), userID, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ImportSessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = toImportSessionResponse(session)
	}

	h.Success(c, responses)
}

// ListImportSessionsRequest contains query parameters for listing sessions
type ListImportSessionsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// CeilingImportResponse is the API representation of an import outcome
type CeilingImportResponse struct {
	SessionID string           `json:"session_id"`
	State     string           `json:"state"`
	TotalRows int              `json:"total_rows"`
	ValidRows int              `json:"valid_rows"`
	ErrorRows int              `json:"error_rows"`
	Created   int              `json:"created"`
	Errors    []ImportRowError `json:"errors,omitempty"`
	Preview   []map[string]any `json:"preview,omitempty"`
}

// ImportRowError is the API representation of a single row error
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportSessionResponse is the API representation of an import session
type ImportSessionResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	State     string `json:"state"`
	TotalRows int    `json:"total_rows"`
	ValidRows int    `json:"valid_rows"`
	ErrorRows int    `json:"error_rows"`
	CreatedAt string `json:"created_at"`
}

func toCeilingImportResponse(result *apppricing.ImportCeilingsResult) CeilingImportResponse {
	errors := make([]ImportRowError, len(result.Errors))
	for i, e := range result.Errors {
		errors[i] = ImportRowError{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
		}
	}

	return CeilingImportResponse{
		SessionID: result.SessionID.String(),
		State:     string(result.State),
		TotalRows: result.TotalRows,
		ValidRows: result.ValidRows,
		ErrorRows: result.ErrorRows,
		Created:   result.Created,
		Errors:    errors,
		Preview:   result.Preview,
	}
}

func toImportSessionResponse(session *csvimport.ImportSession) ImportSessionResponse {
	return ImportSessionResponse{
		ID:        session.ID.String(),
		FileName:  session.FileName,
		State:     string(session.State),
		TotalRows: session.TotalRows,
		ValidRows: session.ValidRows,
		ErrorRows: session.ErrorRows,
		CreatedAt: session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
