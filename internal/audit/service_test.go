package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

type memoryAuditRepo struct {
	entries []models.AuditLogEntry
}

func (r *memoryAuditRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *memoryAuditRepo) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryAuditRepo) ListBySubjectID(ctx context.Context, subjectID uuid.UUID) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for _, entry := range r.entries {
		if entry.SubjectID == subjectID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func validInput() RecordEntryInput {
	detail, _ := json.Marshal(map[string]any{"amount_cents": 5000})
	brandID := uuid.New()
	return RecordEntryInput{
		Action:      enums.AuditActionWalletRecharged,
		ActorUserID: SystemActorID,
		ActorRole:   enums.MemberRoleSystem,
		SubjectType: "wallet_account",
		SubjectID:   uuid.New(),
		BrandID:     &brandID,
		Detail:      detail,
	}
}

func TestRecordPersistsEntry(t *testing.T) {
	repo := &memoryAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := validInput()
	entry, err := svc.Record(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Action != input.Action {
		t.Fatalf("action mismatch: %s", entry.Action)
	}
	if entry.ActorUserID != SystemActorID {
		t.Fatalf("actor mismatch: %s", entry.ActorUserID)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.entries))
	}
}

func TestRecordValidatesInput(t *testing.T) {
	svc, err := NewService(&memoryAuditRepo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(*RecordEntryInput){
		"missing action":       func(in *RecordEntryInput) { in.Action = "" },
		"missing actor":        func(in *RecordEntryInput) { in.ActorUserID = uuid.Nil },
		"invalid role":         func(in *RecordEntryInput) { in.ActorRole = "superuser" },
		"missing subject type": func(in *RecordEntryInput) { in.SubjectType = "" },
		"missing subject id":   func(in *RecordEntryInput) { in.SubjectID = uuid.Nil },
	}
	for name, mutate := range cases {
		input := validInput()
		mutate(&input)
		if _, err := svc.Record(context.Background(), input); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestListForSubjectFiltersEntries(t *testing.T) {
	repo := &memoryAuditRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := validInput()
	if _, err := svc.Record(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := validInput()
	if _, err := svc.Record(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := svc.ListForSubject(context.Background(), input.SubjectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if _, err := svc.ListForSubject(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil subject id")
	}
}
