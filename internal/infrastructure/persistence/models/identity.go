package models

import (
	"time"

	"github.com/opas/backend/internal/domain/identity"
	"github.com/opas/backend/internal/domain/shared"
)

// AdminUserModel is the persistence model for the AdminUser domain entity.
type AdminUserModel struct {
	AggregateModel
	Username     string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string               `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string               `gorm:"type:varchar(255);not null"`
	DisplayName  string               `gorm:"type:varchar(200)"`
	Role         identity.AdminRole   `gorm:"type:varchar(20);not null"`
	Status       identity.AdminStatus `gorm:"type:varchar(20);not null;default:'active'"`
	FailedLogins int                  `gorm:"not null;default:0"`
	LastLoginAt  *time.Time           `gorm:"index"`
	LastLoginIP  string               `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts the persistence model to a domain AdminUser entity.
func (m *AdminUserModel) ToDomain() *identity.AdminUser {
	return &identity.AdminUser{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Role:         m.Role,
		Status:       m.Status,
		FailedLogins: m.FailedLogins,
		LastLoginAt:  m.LastLoginAt,
		LastLoginIP:  m.LastLoginIP,
	}
}

// FromDomain populates the persistence model from a domain AdminUser entity.
func (m *AdminUserModel) FromDomain(u *identity.AdminUser) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = u.Role
	m.Status = u.Status
	m.FailedLogins = u.FailedLogins
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// AdminUserModelFromDomain creates a new persistence model from a domain AdminUser entity.
func AdminUserModelFromDomain(u *identity.AdminUser) *AdminUserModel {
	m := &AdminUserModel{}
	m.FromDomain(u)
	return m
}
