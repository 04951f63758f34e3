package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// Contract binds a brand and a creator for one campaign engagement.
// TotalAmountCents is fixed at draft time; the funding engine locks it
// into escrow in an advance slice and a final slice.
type Contract struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID          uuid.UUID            `gorm:"column:brand_id;type:uuid;not null;index"`
	CampaignID       uuid.UUID            `gorm:"column:campaign_id;type:uuid;not null;index"`
	CreatorID        uuid.UUID            `gorm:"column:creator_id;type:uuid;not null;index"`
	Status           enums.ContractStatus `gorm:"column:status;type:contract_status_enum;not null;default:'draft'"`
	TotalAmountCents int64                `gorm:"column:total_amount_cents;not null"`
	AdvancePercent   int                  `gorm:"column:advance_percent;not null"`
	FundedAt         *time.Time           `gorm:"column:funded_at"`
	CompletedAt      *time.Time           `gorm:"column:completed_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
