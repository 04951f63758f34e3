package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// AuditLogEntry is an append-only record of a state-changing operation,
// written in the same transaction as the change itself.
type AuditLogEntry struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Action      enums.AuditAction `gorm:"column:action;not null;index"`
	ActorUserID uuid.UUID         `gorm:"column:actor_user_id;type:uuid;not null"`
	ActorRole   enums.MemberRole  `gorm:"column:actor_role;not null"`
	SubjectType string            `gorm:"column:subject_type;not null"`
	SubjectID   uuid.UUID         `gorm:"column:subject_id;type:uuid;not null;index"`
	BrandID     *uuid.UUID        `gorm:"column:brand_id;type:uuid;index"`
	Detail      json.RawMessage   `gorm:"column:detail;type:jsonb"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
