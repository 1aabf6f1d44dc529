package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerStats breaks seller counts down by profile status
type SellerStats struct {
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Banned    int64 `json:"banned"`
	Total     int64 `json:"total"`
}

// RegistrationStats counts registration requests awaiting review
type RegistrationStats struct {
	Pending     int64 `json:"pending"`
	UnderReview int64 `json:"under_review"`
}

// PurchaseStats summarizes the bulk purchase pipeline
type PurchaseStats struct {
	Draft            int64           `json:"draft"`
	Confirmed        int64           `json:"confirmed"`
	Received         int64           `json:"received"`
	Paid             int64           `json:"paid"`
	MonthToDateSpend decimal.Decimal `json:"month_to_date_spend"`
}

// StatsResult is the dashboard statistics snapshot
type StatsResult struct {
	Sellers           SellerStats       `json:"sellers"`
	Registrations     RegistrationStats `json:"registrations"`
	OpenNonCompliance int64             `json:"open_non_compliance"`
	ActiveAlerts      int64             `json:"active_alerts"`
	Purchases         PurchaseStats     `json:"purchases"`
	LowStockItems     int64             `json:"low_stock_items"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// HealthBand classifies the overall marketplace health score
type HealthBand string

const (
	HealthBandHealthy  HealthBand = "healthy"
	HealthBandDegraded HealthBand = "degraded"
	HealthBandCritical HealthBand = "critical"
)

// HealthResult is the marketplace health snapshot. Every input is normalized
// to a 0-100 scale before weighting.
type HealthResult struct {
	Score           decimal.Decimal `json:"score"`
	Band            HealthBand      `json:"band"`
	ComplianceRate  decimal.Decimal `json:"compliance_rate"`
	SellerRating    decimal.Decimal `json:"seller_rating"`
	FulfillmentRate decimal.Decimal `json:"fulfillment_rate"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
