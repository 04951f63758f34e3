package funding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	dbpkg "github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
	"github.com/brandbeam/brandbeam-backend/pkg/pagination"
)

func setupFundingTestDB(t *testing.T) *dbpkg.Client {
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

type stubFundingRepo struct {
	contracts  map[uuid.UUID]*models.Contract
	escrow     []models.EscrowTransaction
	candidates map[string]*models.CampaignCandidate
}

func newStubFundingRepo() *stubFundingRepo {
	return &stubFundingRepo{
		contracts:  map[uuid.UUID]*models.Contract{},
		candidates: map[string]*models.CampaignCandidate{},
	}
}

func candidateKey(campaignID, creatorID uuid.UUID) string {
	return campaignID.String() + "/" + creatorID.String()
}

func (r *stubFundingRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubFundingRepo) GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	contract, ok := r.contracts[contractID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (r *stubFundingRepo) GetContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	return r.GetContract(ctx, contractID)
}

func (r *stubFundingRepo) CreateContract(ctx context.Context, contract *models.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	copied := *contract
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *stubFundingRepo) UpdateContract(ctx context.Context, contract *models.Contract) error {
	copied := *contract
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *stubFundingRepo) ListContractsByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Contract, error) {
	var out []models.Contract
	for _, contract := range r.contracts {
		if contract.BrandID == brandID {
			out = append(out, *contract)
		}
	}
	return out, nil
}

func (r *stubFundingRepo) CreateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	r.escrow = append(r.escrow, *txn)
	return nil
}

func (r *stubFundingRepo) UpdateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error {
	for i := range r.escrow {
		if r.escrow[i].ID == txn.ID {
			r.escrow[i] = *txn
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubFundingRepo) GetPendingEscrow(ctx context.Context, contractID uuid.UUID, escrowType enums.EscrowTransactionType) (*models.EscrowTransaction, error) {
	for i := range r.escrow {
		row := r.escrow[i]
		if row.ContractID == contractID && row.Type == escrowType && row.Status == enums.EscrowTransactionStatusPending {
			copied := row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFundingRepo) fundedEscrowTotal(contractID uuid.UUID) int64 {
	var total int64
	for _, row := range r.escrow {
		if row.ContractID != contractID {
			continue
		}
		if row.Status == enums.EscrowTransactionStatusFunded || row.Status == enums.EscrowTransactionStatusReleased {
			total += row.AmountCents
		}
	}
	return total
}

func (r *stubFundingRepo) ListEscrowByContract(ctx context.Context, contractID uuid.UUID) ([]models.EscrowTransaction, error) {
	var out []models.EscrowTransaction
	for _, row := range r.escrow {
		if row.ContractID == contractID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *stubFundingRepo) GetCandidate(ctx context.Context, campaignID, creatorID uuid.UUID) (*models.CampaignCandidate, error) {
	candidate, ok := r.candidates[candidateKey(campaignID, creatorID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *candidate
	return &copied, nil
}

func (r *stubFundingRepo) UpdateCandidate(ctx context.Context, candidate *models.CampaignCandidate) error {
	copied := *candidate
	r.candidates[candidateKey(candidate.CampaignID, candidate.CreatorID)] = &copied
	return nil
}

type fundingWalletRepo struct {
	wallets    map[uuid.UUID]*models.WalletAccount
	byBrand    map[uuid.UUID]uuid.UUID
	ledger     []models.WalletTransaction
	references map[string]bool
}

func newFundingWalletRepo() *fundingWalletRepo {
	return &fundingWalletRepo{
		wallets:    map[uuid.UUID]*models.WalletAccount{},
		byBrand:    map[uuid.UUID]uuid.UUID{},
		references: map[string]bool{},
	}
}

func (r *fundingWalletRepo) addWallet(brandID uuid.UUID, balanceCents int64) *models.WalletAccount {
	wal := &models.WalletAccount{ID: uuid.New(), BrandID: brandID, BalanceCents: balanceCents, Currency: "USD"}
	r.wallets[wal.ID] = wal
	r.byBrand[brandID] = wal.ID
	return wal
}

func (r *fundingWalletRepo) WithTx(tx *gorm.DB) wallet.Repository { return r }

func (r *fundingWalletRepo) GetByBrandID(ctx context.Context, brandID uuid.UUID) (*models.WalletAccount, error) {
	id, ok := r.byBrand[brandID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.wallets[id]
	return &copied, nil
}

func (r *fundingWalletRepo) GetByIDForUpdate(ctx context.Context, walletID uuid.UUID) (*models.WalletAccount, error) {
	wal, ok := r.wallets[walletID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *wal
	return &copied, nil
}

func (r *fundingWalletRepo) Create(ctx context.Context, wal *models.WalletAccount) error {
	if wal.ID == uuid.Nil {
		wal.ID = uuid.New()
	}
	copied := *wal
	r.wallets[wal.ID] = &copied
	r.byBrand[wal.BrandID] = wal.ID
	return nil
}

func (r *fundingWalletRepo) AddBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) error {
	wal, ok := r.wallets[walletID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	wal.BalanceCents += amountCents
	return nil
}

func (r *fundingWalletRepo) DeductBalanceGuarded(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	wal, ok := r.wallets[walletID]
	if !ok || wal.BalanceCents < amountCents {
		return false, nil
	}
	wal.BalanceCents -= amountCents
	return true, nil
}

func (r *fundingWalletRepo) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if r.references[txn.ReferenceID] {
		return errors.New("duplicate key value violates unique constraint \"uniq_wallet_transactions_reference\"")
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	r.references[txn.ReferenceID] = true
	r.ledger = append(r.ledger, *txn)
	return nil
}

func (r *fundingWalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (r *fundingWalletRepo) SumLockedByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var total int64
	for _, txn := range r.ledger {
		if txn.ContractID != nil && *txn.ContractID == contractID {
			total += -txn.AmountCents
		}
	}
	return total, nil
}

func (r *fundingWalletRepo) CreateDepositOrder(ctx context.Context, order *models.DepositOrder) error {
	return nil
}

func (r *fundingWalletRepo) GetDepositOrderByReferenceForUpdate(ctx context.Context, orderReference string) (*models.DepositOrder, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fundingWalletRepo) UpdateDepositOrder(ctx context.Context, order *models.DepositOrder) error {
	return nil
}

func (r *fundingWalletRepo) ExpirePendingOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type recordingAuditService struct {
	entries []audit.RecordEntryInput
}

func (s *recordingAuditService) WithTx(tx *gorm.DB) audit.Service { return s }

func (s *recordingAuditService) Record(ctx context.Context, input audit.RecordEntryInput) (*models.AuditLogEntry, error) {
	s.entries = append(s.entries, input)
	return &models.AuditLogEntry{ID: uuid.New()}, nil
}

func (s *recordingAuditService) ListForSubject(ctx context.Context, subjectID uuid.UUID) ([]models.AuditLogEntry, error) {
	return nil, nil
}

type fundingFixture struct {
	svc        Service
	repo       *stubFundingRepo
	walletRepo *fundingWalletRepo
	auditSvc   *recordingAuditService
}

func newFundingFixture(t *testing.T) *fundingFixture {
	t.Helper()

	client := setupFundingTestDB(t)
	repo := newStubFundingRepo()
	walletRepo := newFundingWalletRepo()
	auditSvc := &recordingAuditService{}
	outboxSvc := outbox.NewService(outbox.NewRepository(client.DB()), nil)

	svc, err := NewService(client, repo, walletRepo, auditSvc, outboxSvc, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fundingFixture{svc: svc, repo: repo, walletRepo: walletRepo, auditSvc: auditSvc}
}

func brandActorFor(brandID uuid.UUID) auth.Actor {
	return auth.Actor{UserID: uuid.New(), BrandID: &brandID, Role: enums.MemberRoleBrand}
}

func operatorActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Role: enums.MemberRoleManager}
}

func (f *fundingFixture) seedContract(t *testing.T, brandID uuid.UUID, total int64, advancePct int, status enums.ContractStatus) *models.Contract {
	t.Helper()

	contract := &models.Contract{
		BrandID:          brandID,
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		Status:           status,
		TotalAmountCents: total,
		AdvancePercent:   advancePct,
	}
	if err := f.repo.CreateContract(context.Background(), contract); err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return contract
}

func (f *fundingFixture) seedPendingAdvance(t *testing.T, contract *models.Contract, amountCents int64) *models.EscrowTransaction {
	t.Helper()

	row := models.EscrowTransaction{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Type:        enums.EscrowTransactionTypeEscrowFunding,
		Status:      enums.EscrowTransactionStatusPending,
		AmountCents: amountCents,
	}
	f.repo.escrow = append(f.repo.escrow, row)
	return &row
}

func (f *fundingFixture) seedLockedLedgerRow(contract *models.Contract, wal *models.WalletAccount, txnType enums.WalletTransactionType, amountCents int64, reference string) {
	f.walletRepo.references[reference] = true
	f.walletRepo.ledger = append(f.walletRepo.ledger, models.WalletTransaction{
		ID:          uuid.New(),
		WalletID:    wal.ID,
		Type:        txnType,
		Status:      enums.TransactionStatusSuccess,
		AmountCents: -amountCents,
		ReferenceID: reference,
		ContractID:  &contract.ID,
	})
}

func TestCreateContractValidatesInput(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()

	contract, err := f.svc.CreateContract(context.Background(), brandActorFor(brandID), CreateContractInput{
		BrandID:          brandID,
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		TotalAmountCents: 100_000,
		AdvancePercent:   30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contract.Status != enums.ContractStatusDraft {
		t.Fatalf("expected draft contract, got %s", contract.Status)
	}

	_, err = f.svc.CreateContract(context.Background(), brandActorFor(brandID), CreateContractInput{
		BrandID:          brandID,
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		TotalAmountCents: 100_000,
		AdvancePercent:   130,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad percent, got %v", err)
	}
}

func TestLockAdvanceConsumesPendingEscrowRow(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	wal := f.walletRepo.addWallet(brandID, 100_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusDraft)
	pending := f.seedPendingAdvance(t, contract, 30_000)
	f.repo.candidates[candidateKey(contract.CampaignID, contract.CreatorID)] = &models.CampaignCandidate{
		ID:         uuid.New(),
		CampaignID: contract.CampaignID,
		CreatorID:  contract.CreatorID,
		Status:     enums.CandidateStatusShortlisted,
	}

	result, err := f.svc.LockAdvance(context.Background(), brandActorFor(brandID), contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LockedAmountCents != 30_000 {
		t.Fatalf("expected advance 30000, got %d", result.LockedAmountCents)
	}
	if result.BalanceCents != 70_000 {
		t.Fatalf("expected balance 70000, got %d", result.BalanceCents)
	}
	if result.Contract.Status != enums.ContractStatusActive {
		t.Fatalf("expected active contract, got %s", result.Contract.Status)
	}
	if result.Contract.FundedAt == nil {
		t.Fatal("expected funded_at to be set")
	}
	if result.Escrow == nil || result.Escrow.ID != pending.ID {
		t.Fatal("expected the pending escrow row to be consumed, not a new one")
	}
	if result.Escrow.Status != enums.EscrowTransactionStatusFunded {
		t.Fatalf("expected funded escrow, got %s", result.Escrow.Status)
	}
	if result.Escrow.WalletID == nil || *result.Escrow.WalletID != wal.ID {
		t.Fatal("funded escrow row not tied to the wallet")
	}
	if len(f.repo.escrow) != 1 {
		t.Fatalf("expected exactly one escrow row, got %d", len(f.repo.escrow))
	}
	if f.walletRepo.wallets[wal.ID].BalanceCents != 70_000 {
		t.Fatalf("wallet balance not deducted: %d", f.walletRepo.wallets[wal.ID].BalanceCents)
	}
	if len(f.walletRepo.ledger) != 1 || f.walletRepo.ledger[0].AmountCents != -30_000 {
		t.Fatalf("unexpected ledger rows: %+v", f.walletRepo.ledger)
	}

	candidate := f.repo.candidates[candidateKey(contract.CampaignID, contract.CreatorID)]
	if candidate.Status != enums.CandidateStatusHired {
		t.Fatalf("expected hired candidate, got %s", candidate.Status)
	}
	if candidate.ContractID == nil || *candidate.ContractID != contract.ID {
		t.Fatal("candidate not linked to contract")
	}

	if len(f.auditSvc.entries) != 1 || f.auditSvc.entries[0].Action != enums.AuditActionAdvanceLocked {
		t.Fatalf("expected advance_locked audit entry, got %+v", f.auditSvc.entries)
	}
}

func TestLockAdvanceLocksFullTotalWithoutPreseed(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	wal := f.walletRepo.addWallet(brandID, 10_000)
	contract := f.seedContract(t, brandID, 10_000, 100, enums.ContractStatusDraft)

	result, err := f.svc.LockAdvance(context.Background(), brandActorFor(brandID), contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LockedAmountCents != 10_000 {
		t.Fatalf("expected full total 10000 locked, got %d", result.LockedAmountCents)
	}
	if f.walletRepo.wallets[wal.ID].BalanceCents != 0 {
		t.Fatalf("expected empty wallet, got %d", f.walletRepo.wallets[wal.ID].BalanceCents)
	}
	if result.Contract.Status != enums.ContractStatusActive {
		t.Fatalf("expected active contract, got %s", result.Contract.Status)
	}
	if len(f.walletRepo.ledger) != 1 || f.walletRepo.ledger[0].AmountCents != -10_000 {
		t.Fatalf("unexpected ledger rows: %+v", f.walletRepo.ledger)
	}
}

func TestLockAdvanceRejectsZeroAmount(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	f.walletRepo.addWallet(brandID, 100_000)
	contract := f.seedContract(t, brandID, 100_000, 0, enums.ContractStatusDraft)
	f.seedPendingAdvance(t, contract, 0)

	_, err := f.svc.LockAdvance(context.Background(), brandActorFor(brandID), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero advance, got %v", err)
	}
	if f.repo.contracts[contract.ID].Status != enums.ContractStatusDraft {
		t.Fatal("zero advance mutated the contract")
	}
	if len(f.walletRepo.ledger) != 0 {
		t.Fatalf("zero advance wrote ledger rows: %+v", f.walletRepo.ledger)
	}
}

func TestCreateContractPreseedsPartialAdvance(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()

	contract, err := f.svc.CreateContract(context.Background(), brandActorFor(brandID), CreateContractInput{
		BrandID:          brandID,
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		TotalAmountCents: 100_000,
		AdvancePercent:   30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, err := f.repo.GetPendingEscrow(context.Background(), contract.ID, enums.EscrowTransactionTypeEscrowFunding)
	if err != nil {
		t.Fatalf("expected a pending escrow row: %v", err)
	}
	if pending.AmountCents != 30_000 {
		t.Fatalf("expected pending advance 30000, got %d", pending.AmountCents)
	}

	full, err := f.svc.CreateContract(context.Background(), brandActorFor(brandID), CreateContractInput{
		BrandID:          brandID,
		CampaignID:       uuid.New(),
		CreatorID:        uuid.New(),
		TotalAmountCents: 100_000,
		AdvancePercent:   100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.repo.GetPendingEscrow(context.Background(), full.ID, enums.EscrowTransactionTypeEscrowFunding); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("full advance should not preseed escrow, got %v", err)
	}
}

func TestLockAdvanceInsufficientBalance(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	f.walletRepo.addWallet(brandID, 10_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusDraft)
	f.seedPendingAdvance(t, contract, 30_000)

	_, err := f.svc.LockAdvance(context.Background(), brandActorFor(brandID), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if f.repo.contracts[contract.ID].Status != enums.ContractStatusDraft {
		t.Fatal("failed lock mutated the contract")
	}
}

func TestLockAdvanceRejectsNonDraftContract(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	f.walletRepo.addWallet(brandID, 100_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusActive)

	_, err := f.svc.LockAdvance(context.Background(), brandActorFor(brandID), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyFunded {
		t.Fatalf("expected already funded error, got %v", err)
	}
}

func TestLockAdvanceForbiddenForOtherBrand(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	f.walletRepo.addWallet(brandID, 100_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusDraft)

	_, err := f.svc.LockAdvance(context.Background(), brandActorFor(uuid.New()), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestLockFinalLocksRemainder(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	wal := f.walletRepo.addWallet(brandID, 200_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusActive)
	f.repo.escrow = append(f.repo.escrow, models.EscrowTransaction{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		WalletID:    &wal.ID,
		Type:        enums.EscrowTransactionTypeEscrowFunding,
		Status:      enums.EscrowTransactionStatusFunded,
		AmountCents: 30_000,
	})
	f.seedLockedLedgerRow(contract, wal, enums.WalletTransactionTypeAdvanceLock, 30_000, "advance:"+contract.ID.String())

	result, err := f.svc.LockFinal(context.Background(), operatorActor(), contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LockedAmountCents != 70_000 {
		t.Fatalf("expected final 70000, got %d", result.LockedAmountCents)
	}
	if result.Contract.Status != enums.ContractStatusCompleted {
		t.Fatalf("expected completed contract, got %s", result.Contract.Status)
	}
	if result.Contract.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if f.walletRepo.wallets[wal.ID].BalanceCents != 130_000 {
		t.Fatalf("expected balance 130000, got %d", f.walletRepo.wallets[wal.ID].BalanceCents)
	}

	if total := f.repo.fundedEscrowTotal(contract.ID); total != 100_000 {
		t.Fatalf("expected escrow total 100000, got %d", total)
	}
}

func TestLockFinalRequiresOperator(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusActive)

	_, err := f.svc.LockFinal(context.Background(), brandActorFor(brandID), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestLockFinalForbiddenForDraftContract(t *testing.T) {
	f := newFundingFixture(t)
	contract := f.seedContract(t, uuid.New(), 100_000, 30, enums.ContractStatusDraft)

	_, err := f.svc.LockFinal(context.Background(), operatorActor(), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error for draft contract, got %v", err)
	}
}

func TestLockFinalCompletesFullyFundedContractWithoutDebit(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	wal := f.walletRepo.addWallet(brandID, 200_000)
	contract := f.seedContract(t, brandID, 100_000, 100, enums.ContractStatusActive)
	f.repo.escrow = append(f.repo.escrow, models.EscrowTransaction{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		WalletID:    &wal.ID,
		Type:        enums.EscrowTransactionTypeEscrowFunding,
		Status:      enums.EscrowTransactionStatusFunded,
		AmountCents: 100_000,
	})
	f.seedLockedLedgerRow(contract, wal, enums.WalletTransactionTypeAdvanceLock, 100_000, "advance:"+contract.ID.String())
	f.repo.candidates[candidateKey(contract.CampaignID, contract.CreatorID)] = &models.CampaignCandidate{
		ID:         uuid.New(),
		CampaignID: contract.CampaignID,
		CreatorID:  contract.CreatorID,
		Status:     enums.CandidateStatusHired,
	}

	result, err := f.svc.LockFinal(context.Background(), operatorActor(), contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LockedAmountCents != 0 {
		t.Fatalf("expected no new lock, got %d", result.LockedAmountCents)
	}
	if result.Contract.Status != enums.ContractStatusCompleted {
		t.Fatalf("expected completed contract, got %s", result.Contract.Status)
	}
	if result.Contract.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if result.Escrow != nil {
		t.Fatalf("expected no new escrow row, got %+v", result.Escrow)
	}
	if f.walletRepo.wallets[wal.ID].BalanceCents != 200_000 {
		t.Fatalf("completion debited the wallet: %d", f.walletRepo.wallets[wal.ID].BalanceCents)
	}
	if len(f.walletRepo.ledger) != 1 {
		t.Fatalf("completion wrote ledger rows: %+v", f.walletRepo.ledger)
	}

	candidate := f.repo.candidates[candidateKey(contract.CampaignID, contract.CreatorID)]
	if candidate.Status != enums.CandidateStatusCompleted {
		t.Fatalf("expected completed candidate, got %s", candidate.Status)
	}
}

func TestLockFinalRejectsCompletedContract(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	f.walletRepo.addWallet(brandID, 200_000)
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusCompleted)

	_, err := f.svc.LockFinal(context.Background(), operatorActor(), contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyFunded {
		t.Fatalf("expected already funded error, got %v", err)
	}
}

func TestGetContractAccessControl(t *testing.T) {
	f := newFundingFixture(t)
	brandID := uuid.New()
	contract := f.seedContract(t, brandID, 100_000, 30, enums.ContractStatusDraft)

	detail, err := f.svc.GetContract(context.Background(), brandActorFor(brandID), contract.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Contract.ID != contract.ID {
		t.Fatal("wrong contract returned")
	}

	creator := auth.Actor{UserID: contract.CreatorID, Role: enums.MemberRoleCreator}
	if _, err := f.svc.GetContract(context.Background(), creator, contract.ID); err != nil {
		t.Fatalf("creator should read own contract: %v", err)
	}

	stranger := auth.Actor{UserID: uuid.New(), Role: enums.MemberRoleCreator}
	_, err = f.svc.GetContract(context.Background(), stranger, contract.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
