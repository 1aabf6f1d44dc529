package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	appidentity "github.com/opas/backend/internal/application/identity"
	"github.com/opas/backend/internal/domain/identity"
)

// AdminUserHandler handles admin user management HTTP requests
type AdminUserHandler struct {
	BaseHandler
	auditRecorder
	userService *appidentity.AdminUserService
}

// NewAdminUserHandler creates a new admin user handler
func NewAdminUserHandler(userService *appidentity.AdminUserService, auditService *audit.Service) *AdminUserHandler {
	return &AdminUserHandler{
		auditRecorder: auditRecorder{auditService: auditService},
		userService:   userService,
	}
}

// Create godoc
// @Summary      Create admin user
// @Description  Create a new admin user (super admin only)
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        request body CreateAdminUserRequest true "Admin user data"
// @Success      201 {object} dto.Response{data=AuthUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin-users [post]
func (h *AdminUserHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.userService.Create(c.Request.Context(), appidentity.CreateAdminUserInput{
		ActorID:     actorID,
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        identity.AdminRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "admin_user.create", "admin_user", &result.ID, map[string]interface{}{
		"username": result.Username,
		"role":     string(result.Role),
	})

	h.Created(c, toAuthUserResponse(*result))
}

// Get godoc
// @Summary      Get admin user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin-users/{id} [get]
func (h *AdminUserHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admin user ID")
		return
	}

	result, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAuthUserResponse(*result))
}

// List godoc
// @Summary      List admin users
// @Tags         admin-users
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "Filter by status"
// @Param        role query string false "Filter by role"
// @Success      200 {object} dto.Response{data=[]AuthUserResponse}
// @Security     BearerAuth
// @Router       /admin-users [get]
func (h *AdminUserHandler) List(c *gin.Context) {
	var req ListAdminUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	input := appidentity.ListAdminUsersInput{
		Keyword:   req.Keyword,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := identity.AdminStatus(req.Status)
		input.Status = &status
	}
	if req.Role != "" {
		role := identity.AdminRole(req.Role)
		input.Role = &role
	}

	result, err := h.userService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	users := make([]AuthUserResponse, len(result.Users))
	for i, u := range result.Users {
		users[i] = toAuthUserResponse(u)
	}

	h.SuccessWithMeta(c, users, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update admin user
// @Description  Update an admin user's profile or role (super admin only)
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Param        request body UpdateAdminUserRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=AuthUserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin-users/{id} [put]
func (h *AdminUserHandler) Update(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admin user ID")
		return
	}

	var req UpdateAdminUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	input := appidentity.UpdateAdminUserInput{
		ActorID:     actorID,
		UserID:      id,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	}
	if req.Role != nil {
		role := identity.AdminRole(*req.Role)
		input.Role = &role
	}

	result, err := h.userService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "admin_user.update", "admin_user", &id, nil)

	h.Success(c, toAuthUserResponse(*result))
}

// Activate godoc
// @Summary      Activate admin user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /admin-users/{id}/activate [post]
func (h *AdminUserHandler) Activate(c *gin.Context) {
	h.changeStatus(c, "admin_user.activate", h.userService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate admin user
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /admin-users/{id}/deactivate [post]
func (h *AdminUserHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, "admin_user.deactivate", h.userService.Deactivate)
}

// Lock godoc
// @Summary      Lock admin user
// @Description  Prevent an admin user from authenticating until unlocked
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /admin-users/{id}/lock [post]
func (h *AdminUserHandler) Lock(c *gin.Context) {
	h.changeStatus(c, "admin_user.lock", h.userService.Lock)
}

// Unlock godoc
// @Summary      Unlock admin user
// @Description  Clear a lockout caused by repeated failed logins
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /admin-users/{id}/unlock [post]
func (h *AdminUserHandler) Unlock(c *gin.Context) {
	h.changeStatus(c, "admin_user.unlock", h.userService.Unlock)
}

// ResetPassword godoc
// @Summary      Reset admin user password
// @Description  Set a new password for another admin (super admin only)
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /admin-users/{id}/reset-password [post]
func (h *AdminUserHandler) ResetPassword(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admin user ID")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	err = h.userService.ResetPassword(c.Request.Context(), appidentity.ResetPasswordInput{
		ActorID:     actorID,
		UserID:      id,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "admin_user.reset_password", "admin_user", &id, nil)

	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete admin user
// @Description  Delete an admin user (super admin only)
// @Tags         admin-users
// @Produce      json
// @Param        id path string true "Admin user ID"
// @Success      204 "No Content"
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin-users/{id} [delete]
func (h *AdminUserHandler) Delete(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admin user ID")
		return
	}

	err = h.userService.Delete(c.Request.Context(), appidentity.DeleteAdminUserInput{
		ActorID: actorID,
		UserID:  id,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, "admin_user.delete", "admin_user", &id, nil)

	h.NoContent(c)
}

func (h *AdminUserHandler) changeStatus(
	c *gin.Context,
	action string,
	op func(ctx context.Context, input appidentity.SetAdminUserStatusInput) error,
) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid admin user ID")
		return
	}

	err = op(c.Request.Context(), appidentity.SetAdminUserStatusInput{
		ActorID: actorID,
		UserID:  id,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.record(c, action, "admin_user", &id, nil)

	h.NoContent(c)
}
