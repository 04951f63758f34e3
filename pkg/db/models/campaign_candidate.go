package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// CampaignCandidate tracks a creator's standing within a campaign. The
// funding engine flips it to hired on advance lock and completed on final
// lock; the earlier stages are managed elsewhere.
type CampaignCandidate struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID uuid.UUID             `gorm:"column:campaign_id;type:uuid;not null;index"`
	CreatorID  uuid.UUID             `gorm:"column:creator_id;type:uuid;not null;index"`
	ContractID *uuid.UUID            `gorm:"column:contract_id;type:uuid"`
	Status     enums.CandidateStatus `gorm:"column:status;type:candidate_status_enum;not null;default:'applied'"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
