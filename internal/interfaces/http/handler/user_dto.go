package handler

// =====================
// Admin User Request DTOs
// =====================

// CreateAdminUserRequest represents the request body for creating an admin user
type CreateAdminUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
	Role        string `json:"role" binding:"required,oneof=super_admin admin moderator"`
}

// UpdateAdminUserRequest represents the request body for updating an admin user
type UpdateAdminUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        *string `json:"role" binding:"omitempty,oneof=super_admin admin moderator"`
}

// ResetPasswordRequest represents the request body for an admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ListAdminUsersRequest represents the query parameters for listing admin users
type ListAdminUsersRequest struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=active inactive locked"`
	Role      string `form:"role" binding:"omitempty,oneof=super_admin admin moderator"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=username email created_at last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}
