package payouts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/internal/funding"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	dbpkg "github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
)

func setupPayoutTestDB(t *testing.T) *dbpkg.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(`DROP TABLE IF EXISTS outbox_events`).Error; err != nil {
		t.Fatalf("reset outbox table: %v", err)
	}
	err = conn.Exec(`
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`).Error
	if err != nil {
		t.Fatalf("create outbox table: %v", err)
	}

	client, err := dbpkg.NewWithConn(conn)
	if err != nil {
		t.Fatalf("wrap connection: %v", err)
	}
	return client
}

type stubPayoutRepo struct {
	records    map[uuid.UUID]*models.PayoutRecord
	byContract map[uuid.UUID]uuid.UUID
	released   map[uuid.UUID]int64
}

func newStubPayoutRepo() *stubPayoutRepo {
	return &stubPayoutRepo{
		records:    map[uuid.UUID]*models.PayoutRecord{},
		byContract: map[uuid.UUID]uuid.UUID{},
		released:   map[uuid.UUID]int64{},
	}
}

func (r *stubPayoutRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubPayoutRepo) Create(ctx context.Context, record *models.PayoutRecord) error {
	if _, exists := r.byContract[record.ContractID]; exists {
		return errors.New("duplicate key value violates unique constraint \"uniq_payout_records_contract\"")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	r.records[record.ID] = &copied
	r.byContract[record.ContractID] = record.ID
	return nil
}

func (r *stubPayoutRepo) GetByContractID(ctx context.Context, contractID uuid.UUID) (*models.PayoutRecord, error) {
	id, ok := r.byContract[contractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.records[id]
	return &copied, nil
}

func (r *stubPayoutRepo) ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]models.PayoutRecord, error) {
	var out []models.PayoutRecord
	for _, record := range r.records {
		if record.CreatorID == creatorID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *stubPayoutRepo) ReleaseEscrowForContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	r.released[contractID]++
	return 2, nil
}

type contractOnlyFundingRepo struct {
	funding.Repository
	contracts map[uuid.UUID]*models.Contract
}

func newContractOnlyFundingRepo() *contractOnlyFundingRepo {
	return &contractOnlyFundingRepo{contracts: map[uuid.UUID]*models.Contract{}}
}

func (r *contractOnlyFundingRepo) WithTx(tx *gorm.DB) funding.Repository { return r }

func (r *contractOnlyFundingRepo) GetContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	contract, ok := r.contracts[contractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

type payoutAuditRecorder struct {
	entries []audit.RecordEntryInput
}

func (s *payoutAuditRecorder) WithTx(tx *gorm.DB) audit.Service { return s }

func (s *payoutAuditRecorder) Record(ctx context.Context, input audit.RecordEntryInput) (*models.AuditLogEntry, error) {
	s.entries = append(s.entries, input)
	return &models.AuditLogEntry{ID: uuid.New()}, nil
}

func (s *payoutAuditRecorder) ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]models.AuditLogEntry, error) {
	return nil, nil
}

type payoutFixture struct {
	svc         Service
	repo        *stubPayoutRepo
	fundingRepo *contractOnlyFundingRepo
	auditSvc    *payoutAuditRecorder
}

func newPayoutFixture(t *testing.T) *payoutFixture {
	t.Helper()

	client := setupPayoutTestDB(t)
	repo := newStubPayoutRepo()
	fundingRepo := newContractOnlyFundingRepo()
	auditSvc := &payoutAuditRecorder{}
	outboxSvc := outbox.NewService(outbox.NewRepository(client.DB()), nil)

	svc, err := NewService(client, repo, fundingRepo, auditSvc, outboxSvc, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &payoutFixture{svc: svc, repo: repo, fundingRepo: fundingRepo, auditSvc: auditSvc}
}

func (f *payoutFixture) seedContract(status enums.ContractStatus) *models.Contract {
	contract := &models.Contract{
		ID:               uuid.New(),
		BrandID:          uuid.New(),
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		Status:           status,
		TotalAmountCents: 100_000,
		AdvancePercent:   30,
	}
	f.fundingRepo.contracts[contract.ID] = contract
	return contract
}

func operator() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.MemberRoleAdmin}
}

func TestRecordPayoutReleasesEscrow(t *testing.T) {
	f := newPayoutFixture(t)
	contract := f.seedContract(enums.ContractStatusCompleted)
	actor := operator()
	note := "wire sent friday"

	record, err := f.svc.RecordPayout(context.Background(), actor, RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     100_000,
		Method:          enums.PayoutMethodBankTransfer,
		ReferenceNumber: "  TXN-9921  ",
		Note:            &note,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.CreatorID != contract.CreatorID {
		t.Fatal("payout not attributed to the contract creator")
	}
	if record.CampaignID != contract.CampaignID {
		t.Fatal("payout not attributed to the contract campaign")
	}
	if record.ReferenceNumber != "TXN-9921" {
		t.Fatalf("reference number not trimmed: %q", record.ReferenceNumber)
	}
	if record.RecordedBy != actor.UserID {
		t.Fatal("recorded_by not set to the acting operator")
	}
	if f.repo.released[contract.ID] != 1 {
		t.Fatalf("expected escrow release once, got %d", f.repo.released[contract.ID])
	}
	if len(f.auditSvc.entries) != 1 || f.auditSvc.entries[0].Action != enums.AuditActionPayoutRecorded {
		t.Fatalf("expected payout.recorded audit entry, got %+v", f.auditSvc.entries)
	}
}

func TestRecordPayoutRejectsDuplicate(t *testing.T) {
	f := newPayoutFixture(t)
	contract := f.seedContract(enums.ContractStatusCompleted)

	input := RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     100_000,
		Method:          enums.PayoutMethodUPI,
		ReferenceNumber: "TXN-1",
	}
	if _, err := f.svc.RecordPayout(context.Background(), operator(), input); err != nil {
		t.Fatalf("first payout failed: %v", err)
	}

	_, err := f.svc.RecordPayout(context.Background(), operator(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyProcessed {
		t.Fatalf("expected already processed error, got %v", err)
	}
	if f.repo.released[contract.ID] != 1 {
		t.Fatal("duplicate payout released escrow again")
	}
}

func TestRecordPayoutRequiresCompletedContract(t *testing.T) {
	f := newPayoutFixture(t)
	contract := f.seedContract(enums.ContractStatusActive)

	_, err := f.svc.RecordPayout(context.Background(), operator(), RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     100_000,
		Method:          enums.PayoutMethodBankTransfer,
		ReferenceNumber: "TXN-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordPayoutRequiresOperator(t *testing.T) {
	f := newPayoutFixture(t)
	contract := f.seedContract(enums.ContractStatusCompleted)
	brandID := uuid.New()

	_, err := f.svc.RecordPayout(context.Background(), auth.Actor{
		UserID:  uuid.New(),
		BrandID: &brandID,
		Role:    enums.MemberRoleBrand,
	}, RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     100_000,
		Method:          enums.PayoutMethodBankTransfer,
		ReferenceNumber: "TXN-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestRecordPayoutValidatesMethodAndAmount(t *testing.T) {
	f := newPayoutFixture(t)
	contract := f.seedContract(enums.ContractStatusCompleted)

	_, err := f.svc.RecordPayout(context.Background(), operator(), RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     0,
		Method:          enums.PayoutMethodBankTransfer,
		ReferenceNumber: "TXN-1",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for amount, got %v", err)
	}

	_, err = f.svc.RecordPayout(context.Background(), operator(), RecordPayoutInput{
		ContractID:      contract.ID,
		AmountCents:     100_000,
		Method:          enums.PayoutMethod("paper_check"),
		ReferenceNumber: "TXN-1",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for method, got %v", err)
	}
}

func TestListForCreatorAccessControl(t *testing.T) {
	f := newPayoutFixture(t)
	creatorID := uuid.New()
	f.repo.records[uuid.New()] = &models.PayoutRecord{
		ID:        uuid.New(),
		CreatorID: creatorID,
	}

	self := auth.Actor{UserID: creatorID, Role: enums.MemberRoleCreator}
	records, err := f.svc.ListForCreator(context.Background(), self, creatorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(records))
	}

	stranger := auth.Actor{UserID: uuid.New(), Role: enums.MemberRoleCreator}
	_, err = f.svc.ListForCreator(context.Background(), stranger, creatorID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
