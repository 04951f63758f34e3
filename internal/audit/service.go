package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// Service defines operations that record audit trail entries. Entries are
// written inside the same transaction as the change they describe.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordEntryInput) (*models.AuditLogEntry, error)
	ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]models.AuditLogEntry, error)
}

type service struct {
	repo Repository
}

// SystemActorID identifies mutations that originate from gateway callbacks
// or background jobs instead of an authenticated user.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// RecordEntryInput captures the immutable data an audit entry requires.
type RecordEntryInput struct {
	Action      enums.AuditAction `json:"action"`
	ActorUserID uuid.UUID         `json:"actor_user_id"`
	ActorRole   enums.MemberRole  `json:"actor_role"`
	SubjectType string            `json:"subject_type"`
	SubjectID   uuid.UUID         `json:"subject_id"`
	BrandID     *uuid.UUID        `json:"brand_id,omitempty"`
	Detail      json.RawMessage   `json:"detail,omitempty"`
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordEntryInput) (*models.AuditLogEntry, error) {
	if input.Action == "" {
		return nil, fmt.Errorf("audit action is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, fmt.Errorf("actor user id is required")
	}
	if !input.ActorRole.IsValid() {
		return nil, fmt.Errorf("invalid actor role %q", input.ActorRole)
	}
	if input.SubjectType == "" {
		return nil, fmt.Errorf("subject type is required")
	}
	if input.SubjectID == uuid.Nil {
		return nil, fmt.Errorf("subject id is required")
	}

	entry := &models.AuditLogEntry{
		Action:      input.Action,
		ActorUserID: input.ActorUserID,
		ActorRole:   input.ActorRole,
		SubjectType: input.SubjectType,
		SubjectID:   input.SubjectID,
		BrandID:     input.BrandID,
		Detail:      input.Detail,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]models.AuditLogEntry, error) {
	if subjectID == uuid.Nil {
		return nil, fmt.Errorf("subject id is required")
	}
	return s.repo.ListBySubjectID(ctx, subjectID)
}
