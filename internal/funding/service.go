package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/internal/wallet"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	dbpkg "github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox/payloads"
)

// Service moves contract money from the brand wallet into escrow. The
// contract row lock serializes competing locks on the same contract; the
// wallet row lock serializes spends across a brand's contracts.
type Service interface {
	CreateContract(ctx context.Context, actor auth.Actor, input CreateContractInput) (*models.Contract, error)
	LockAdvance(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*FundingResult, error)
	LockFinal(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*FundingResult, error)
	GetContract(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*ContractDetail, error)
	ListContracts(ctx context.Context, actor auth.Actor, brandID uuid.UUID) ([]models.Contract, error)
}

// CreateContractInput captures a draft engagement between a brand and a creator.
type CreateContractInput struct {
	BrandID          uuid.UUID `json:"brand_id"`
	CampaignID       uuid.UUID `json:"campaign_id"`
	CreatorID        uuid.UUID `json:"creator_id"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	AdvancePercent   int       `json:"advance_percent"`
}

// FundingResult reports the outcome of a lock operation. Escrow is nil when
// a final lock completed without moving money.
type FundingResult struct {
	Contract          models.Contract           `json:"contract"`
	Escrow            *models.EscrowTransaction `json:"escrow,omitempty"`
	LockedAmountCents int64                     `json:"locked_amount_cents"`
	BalanceCents      int64                     `json:"balance_cents"`
}

// ContractDetail bundles a contract with its escrow history.
type ContractDetail struct {
	Contract models.Contract            `json:"contract"`
	Escrow   []models.EscrowTransaction `json:"escrow"`
}

type service struct {
	db         *dbpkg.Client
	repo       Repository
	walletRepo wallet.Repository
	auditSvc   audit.Service
	outbox     *outbox.Service
	logg       *logger.Logger
}

// NewService wires the funding service with its dependencies.
func NewService(
	client *dbpkg.Client,
	repo Repository,
	walletRepo wallet.Repository,
	auditSvc audit.Service,
	outboxSvc *outbox.Service,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("funding repository required")
	}
	if walletRepo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		db:         client,
		repo:       repo,
		walletRepo: walletRepo,
		auditSvc:   auditSvc,
		outbox:     outboxSvc,
		logg:       logg,
	}, nil
}

func (s *service) CreateContract(ctx context.Context, actor auth.Actor, input CreateContractInput) (*models.Contract, error) {
	if input.BrandID == uuid.Nil || input.CampaignID == uuid.Nil || input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand, campaign and creator ids are required")
	}
	if !actor.OwnsBrand(input.BrandID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contract belongs to another brand")
	}
	if input.TotalAmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}
	if input.AdvancePercent < 0 || input.AdvancePercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "advance percent must be between 0 and 100")
	}

	contract := &models.Contract{
		BrandID:          input.BrandID,
		CampaignID:       input.CampaignID,
		CreatorID:        input.CreatorID,
		Status:           enums.ContractStatusDraft,
		TotalAmountCents: input.TotalAmountCents,
		AdvancePercent:   input.AdvancePercent,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateContract(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating contract")
		}
		if input.AdvancePercent >= 100 {
			return nil
		}
		// A partial advance is pre-seeded as a pending escrow row; the
		// advance lock consumes it instead of locking the full total.
		pending := &models.EscrowTransaction{
			ContractID:  contract.ID,
			Type:        enums.EscrowTransactionTypeEscrowFunding,
			Status:      enums.EscrowTransactionStatusPending,
			AmountCents: contract.TotalAmountCents * int64(contract.AdvancePercent) / 100,
		}
		if err := repo.CreateEscrowTransaction(ctx, pending); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seeding advance escrow")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *service) LockAdvance(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*FundingResult, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}

	var result *FundingResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		contract, err := repo.GetContractForUpdate(ctx, contractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking contract")
		}
		if !actor.OwnsBrand(contract.BrandID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "contract belongs to another brand")
		}
		if contract.Status != enums.ContractStatusDraft {
			return pkgerrors.New(pkgerrors.CodeAlreadyFunded, "advance already locked").
				WithDetails(map[string]any{"status": contract.Status})
		}

		// A pending escrow row pins a partial advance; without one the
		// full contract total is locked up front.
		pendingEscrow, err := repo.GetPendingEscrow(ctx, contract.ID, enums.EscrowTransactionTypeEscrowFunding)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading pending escrow")
			}
			pendingEscrow = nil
		}
		advance := contract.TotalAmountCents
		if pendingEscrow != nil {
			advance = pendingEscrow.AmountCents
		}
		if advance <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "advance amount must be positive").
				WithDetails(map[string]any{"amount_cents": advance})
		}

		wal, err := walletRepo.GetByBrandID(ctx, contract.BrandID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet has no funds").
					WithDetails(map[string]any{"required_cents": advance, "available_cents": 0})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wallet")
		}
		wal, err = walletRepo.GetByIDForUpdate(ctx, wal.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking wallet")
		}
		if wal.BalanceCents < advance {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance below advance amount").
				WithDetails(map[string]any{
					"required_cents":  advance,
					"available_cents": wal.BalanceCents,
				})
		}

		escrow, balanceAfter, err := s.lockIntoEscrow(ctx, repo, walletRepo, contract, wal, lockSpec{
			amountCents:     advance,
			walletTxnType:   enums.WalletTransactionTypeAdvanceLock,
			escrowType:      enums.EscrowTransactionTypeEscrowFunding,
			referenceID:     "advance:" + contract.ID.String(),
			candidateStatus: enums.CandidateStatusHired,
			existingEscrow:  pendingEscrow,
		})
		if err != nil {
			return err
		}

		now := time.Now()
		contract.Status = enums.ContractStatusActive
		contract.FundedAt = &now
		if err := repo.UpdateContract(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating contract")
		}

		detail, _ := json.Marshal(map[string]any{
			"advance_cents":       advance,
			"balance_after_cents": balanceAfter,
		})
		if _, err := s.auditSvc.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			Action:      enums.AuditActionAdvanceLocked,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
			SubjectType: "contract",
			SubjectID:   contract.ID,
			BrandID:     &contract.BrandID,
			Detail:      detail,
		}); err != nil {
			return err
		}

		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractFunded,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actorRef(actor),
			Data: payloads.ContractFunded{
				ContractID:         contract.ID,
				BrandID:            contract.BrandID,
				CreatorID:          contract.CreatorID,
				AdvanceAmountCents: advance,
				TotalAmountCents:   contract.TotalAmountCents,
			},
		}); err != nil {
			return err
		}

		result = &FundingResult{
			Contract:          *contract,
			Escrow:            escrow,
			LockedAmountCents: advance,
			BalanceCents:      balanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithContractID(ctx, contractID.String())
		s.logg.Info(logCtx, "advance locked into escrow")
	}
	return result, nil
}

func (s *service) LockFinal(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*FundingResult, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	if !actor.Role.IsOperator() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "final lock requires an operator role")
	}

	var result *FundingResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		contract, err := repo.GetContractForUpdate(ctx, contractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking contract")
		}
		switch contract.Status {
		case enums.ContractStatusDraft:
			return pkgerrors.New(pkgerrors.CodeForbidden, "advance must be locked first")
		case enums.ContractStatusCompleted:
			return pkgerrors.New(pkgerrors.CodeAlreadyFunded, "contract already completed").
				WithDetails(map[string]any{"status": contract.Status})
		}

		// The remainder is recomputed from the ledger rows tied to this
		// contract, never from a cached column, so partial histories stay
		// consistent across retries.
		lockedSoFar, err := walletRepo.SumLockedByContract(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing locked amounts")
		}
		final := contract.TotalAmountCents - lockedSoFar

		var escrow *models.EscrowTransaction
		var balanceAfter int64
		if final > 0 {
			wal, err := walletRepo.GetByBrandID(ctx, contract.BrandID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wallet")
			}
			wal, err = walletRepo.GetByIDForUpdate(ctx, wal.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking wallet")
			}
			if wal.BalanceCents < final {
				return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance below final amount").
					WithDetails(map[string]any{
						"required_cents":  final,
						"available_cents": wal.BalanceCents,
					})
			}

			escrow, balanceAfter, err = s.lockIntoEscrow(ctx, repo, walletRepo, contract, wal, lockSpec{
				amountCents:     final,
				walletTxnType:   enums.WalletTransactionTypeFinalLock,
				escrowType:      enums.EscrowTransactionTypeFinalPayment,
				referenceID:     "final:" + contract.ID.String(),
				candidateStatus: enums.CandidateStatusCompleted,
			})
			if err != nil {
				return err
			}
		} else {
			// The total is already covered; completion proceeds without a
			// debit so retries and 100% advances converge on COMPLETED.
			final = 0
			wal, err := walletRepo.GetByBrandID(ctx, contract.BrandID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wallet")
			}
			balanceAfter = wal.BalanceCents
			if err := s.advanceCandidate(ctx, repo, contract, enums.CandidateStatusCompleted); err != nil {
				return err
			}
		}

		now := time.Now()
		contract.Status = enums.ContractStatusCompleted
		contract.CompletedAt = &now
		if err := repo.UpdateContract(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating contract")
		}

		detail, _ := json.Marshal(map[string]any{
			"final_cents":         final,
			"locked_so_far_cents": lockedSoFar,
			"balance_after_cents": balanceAfter,
		})
		if _, err := s.auditSvc.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			Action:      enums.AuditActionFinalLocked,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
			SubjectType: "contract",
			SubjectID:   contract.ID,
			BrandID:     &contract.BrandID,
			Detail:      detail,
		}); err != nil {
			return err
		}

		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractCompleted,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actorRef(actor),
			Data: payloads.ContractCompleted{
				ContractID:       contract.ID,
				BrandID:          contract.BrandID,
				CreatorID:        contract.CreatorID,
				FinalAmountCents: final,
				TotalAmountCents: contract.TotalAmountCents,
			},
		}); err != nil {
			return err
		}

		result = &FundingResult{
			Contract:          *contract,
			Escrow:            escrow,
			LockedAmountCents: final,
			BalanceCents:      balanceAfter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithContractID(ctx, contractID.String())
		s.logg.Info(logCtx, "final amount locked into escrow")
	}
	return result, nil
}

type lockSpec struct {
	amountCents     int64
	walletTxnType   enums.WalletTransactionType
	escrowType      enums.EscrowTransactionType
	referenceID     string
	candidateStatus enums.CandidateStatus
	existingEscrow  *models.EscrowTransaction
}

func (s *service) lockIntoEscrow(
	ctx context.Context,
	repo Repository,
	walletRepo wallet.Repository,
	contract *models.Contract,
	wal *models.WalletAccount,
	spec lockSpec,
) (*models.EscrowTransaction, int64, error) {
	ok, err := walletRepo.DeductBalanceGuarded(ctx, wal.ID, spec.amountCents)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debiting wallet")
	}
	if !ok {
		return nil, 0, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance changed during lock").
			WithDetails(map[string]any{"required_cents": spec.amountCents})
	}
	balanceAfter := wal.BalanceCents - spec.amountCents

	walletTxn := &models.WalletTransaction{
		WalletID:          wal.ID,
		Type:              spec.walletTxnType,
		Status:            enums.TransactionStatusSuccess,
		AmountCents:       -spec.amountCents,
		BalanceAfterCents: balanceAfter,
		ReferenceID:       spec.referenceID,
		ContractID:        &contract.ID,
	}
	if err := walletRepo.CreateTransaction(ctx, walletTxn); err != nil {
		if dbpkg.IsUniqueViolation(err, "uniq_wallet_transactions_reference") {
			return nil, 0, pkgerrors.New(pkgerrors.CodeAlreadyFunded, "lock already recorded").
				WithDetails(map[string]any{"reference_id": spec.referenceID})
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing wallet transaction")
	}

	escrow := spec.existingEscrow
	if escrow != nil {
		escrow.Status = enums.EscrowTransactionStatusFunded
		escrow.WalletID = &wal.ID
		if err := repo.UpdateEscrowTransaction(ctx, escrow); err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "funding escrow transaction")
		}
	} else {
		escrow = &models.EscrowTransaction{
			ContractID:  contract.ID,
			WalletID:    &wal.ID,
			Type:        spec.escrowType,
			Status:      enums.EscrowTransactionStatusFunded,
			AmountCents: spec.amountCents,
		}
		if err := repo.CreateEscrowTransaction(ctx, escrow); err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing escrow transaction")
		}
	}

	if err := s.advanceCandidate(ctx, repo, contract, spec.candidateStatus); err != nil {
		return nil, 0, err
	}

	return escrow, balanceAfter, nil
}

// advanceCandidate moves the campaign candidate along with the contract.
// A missing candidate row is tolerated; hiring may have happened elsewhere.
func (s *service) advanceCandidate(ctx context.Context, repo Repository, contract *models.Contract, status enums.CandidateStatus) error {
	candidate, err := repo.GetCandidate(ctx, contract.CampaignID, contract.CreatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading candidate")
	}
	candidate.Status = status
	candidate.ContractID = &contract.ID
	if err := repo.UpdateCandidate(ctx, candidate); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating candidate")
	}
	return nil
}

func (s *service) GetContract(ctx context.Context, actor auth.Actor, contractID uuid.UUID) (*ContractDetail, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	contract, err := s.repo.GetContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract")
	}
	if !actor.OwnsBrand(contract.BrandID) && actor.UserID != contract.CreatorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contract belongs to another brand")
	}

	escrow, err := s.repo.ListEscrowByContract(ctx, contract.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing escrow")
	}
	return &ContractDetail{Contract: *contract, Escrow: escrow}, nil
}

func (s *service) ListContracts(ctx context.Context, actor auth.Actor, brandID uuid.UUID) ([]models.Contract, error) {
	if brandID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	if !actor.OwnsBrand(brandID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "contracts belong to another brand")
	}
	return s.repo.ListContractsByBrand(ctx, brandID)
}

func actorRef(actor auth.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:  actor.UserID,
		BrandID: actor.BrandID,
		Role:    string(actor.Role),
	}
}
