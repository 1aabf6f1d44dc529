package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// AdminUserSortFields contains allowed sort fields for admin users
var AdminUserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}

// RegistrationSortFields contains allowed sort fields for seller registration requests
var RegistrationSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"business_name":  true,
	"market_section": true,
	"status":         true,
	"reviewed_at":    true,
}

// SellerProfileSortFields contains allowed sort fields for seller profiles
var SellerProfileSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"seller_code":      true,
	"business_name":    true,
	"market_section":   true,
	"status":           true,
	"rating":           true,
	"rating_count":     true,
	"orders_fulfilled": true,
	"orders_total":     true,
}

// CeilingSortFields contains allowed sort fields for price ceilings
var CeilingSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"product_code":   true,
	"product_name":   true,
	"category":       true,
	"ceiling_price":  true,
	"effective_from": true,
	"active":         true,
}

// ListingSortFields contains allowed sort fields for product listings
var ListingSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"product_code": true,
	"product_name": true,
	"listed_price": true,
	"quantity":     true,
	"active":       true,
}

// NonComplianceSortFields contains allowed sort fields for non-compliance records
var NonComplianceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"product_code":   true,
	"listed_price":   true,
	"ceiling_price":  true,
	"excess_percent": true,
	"status":         true,
	"detected_at":    true,
	"resolved_at":    true,
}

// PurchaseSortFields contains allowed sort fields for bulk purchases
var PurchaseSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"purchase_number": true,
	"seller_id":       true,
	"status":          true,
	"total_amount":    true,
	"confirmed_at":    true,
	"received_at":     true,
	"paid_at":         true,
}

// InventorySortFields contains allowed sort fields for inventory items
var InventorySortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"product_code":  true,
	"product_name":  true,
	"quantity":      true,
	"min_threshold": true,
	"average_cost":  true,
}

// AlertSortFields contains allowed sort fields for marketplace alerts
var AlertSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"category":        true,
	"severity":        true,
	"status":          true,
	"acknowledged_at": true,
	"resolved_at":     true,
}

// AuditLogSortFields contains allowed sort fields for audit log entries
var AuditLogSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"action":      true,
	"object_type": true,
}
