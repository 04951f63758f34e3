package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// PayoutRecord documents an off-platform transfer to a creator after a
// contract completed. It is bookkeeping only and moves no wallet money.
type PayoutRecord struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID      uuid.UUID          `gorm:"column:contract_id;type:uuid;not null;uniqueIndex:uniq_payout_records_contract"`
	CampaignID      uuid.UUID          `gorm:"column:campaign_id;type:uuid;not null;index"`
	CreatorID       uuid.UUID          `gorm:"column:creator_id;type:uuid;not null;index"`
	AmountCents     int64              `gorm:"column:amount_cents;not null"`
	Method          enums.PayoutMethod `gorm:"column:method;type:payout_method_enum;not null"`
	ReferenceNumber string             `gorm:"column:reference_number;not null"`
	Note            *string            `gorm:"column:note"`
	RecordedBy      uuid.UUID          `gorm:"column:recorded_by;type:uuid;not null"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
}
