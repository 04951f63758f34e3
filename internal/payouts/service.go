package payouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/internal/funding"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	dbpkg "github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox/payloads"
)

// Service documents the off-platform transfer to a creator once their
// contract has completed. It releases the escrow rows but moves no wallet
// money.
type Service interface {
	RecordPayout(ctx context.Context, actor auth.Actor, input RecordPayoutInput) (*models.PayoutRecord, error)
	ListForCreator(ctx context.Context, actor auth.Actor, creatorID uuid.UUID) ([]models.PayoutRecord, error)
}

// RecordPayoutInput captures the details of the completed transfer.
type RecordPayoutInput struct {
	ContractID      uuid.UUID          `json:"contract_id"`
	AmountCents     int64              `json:"amount_cents"`
	Method          enums.PayoutMethod `json:"method"`
	ReferenceNumber string             `json:"reference_number"`
	Note            *string            `json:"note,omitempty"`
}

type service struct {
	db          *dbpkg.Client
	repo        Repository
	fundingRepo funding.Repository
	auditSvc    audit.Service
	outbox      *outbox.Service
	logg        *logger.Logger
}

// NewService wires the payouts service with its dependencies.
func NewService(
	client *dbpkg.Client,
	repo Repository,
	fundingRepo funding.Repository,
	auditSvc audit.Service,
	outboxSvc *outbox.Service,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if fundingRepo == nil {
		return nil, fmt.Errorf("funding repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		db:          client,
		repo:        repo,
		fundingRepo: fundingRepo,
		auditSvc:    auditSvc,
		outbox:      outboxSvc,
		logg:        logg,
	}, nil
}

func (s *service) RecordPayout(ctx context.Context, actor auth.Actor, input RecordPayoutInput) (*models.PayoutRecord, error) {
	if input.ContractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	if !actor.Role.IsOperator() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "recording payouts requires an operator role")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout method")
	}
	if strings.TrimSpace(input.ReferenceNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference number is required")
	}

	var record *models.PayoutRecord
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fundingRepo := s.fundingRepo.WithTx(tx)

		contract, err := fundingRepo.GetContractForUpdate(ctx, input.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking contract")
		}
		if contract.Status != enums.ContractStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeValidation, "contract must be completed before payout").
				WithDetails(map[string]any{"status": contract.Status})
		}

		record = &models.PayoutRecord{
			ContractID:      contract.ID,
			CampaignID:      contract.CampaignID,
			CreatorID:       contract.CreatorID,
			AmountCents:     input.AmountCents,
			Method:          input.Method,
			ReferenceNumber: strings.TrimSpace(input.ReferenceNumber),
			Note:            input.Note,
			RecordedBy:      actor.UserID,
		}
		if err := repo.Create(ctx, record); err != nil {
			if dbpkg.IsUniqueViolation(err, "uniq_payout_records_contract") {
				return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "payout already recorded").
					WithDetails(map[string]any{"contract_id": contract.ID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payout record")
		}

		if _, err := repo.ReleaseEscrowForContract(ctx, contract.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "releasing escrow")
		}

		detail, _ := json.Marshal(map[string]any{
			"amount_cents":     input.AmountCents,
			"method":           input.Method,
			"reference_number": record.ReferenceNumber,
		})
		if _, err := s.auditSvc.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			Action:      enums.AuditActionPayoutRecorded,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
			SubjectType: "payout_record",
			SubjectID:   record.ID,
			BrandID:     &contract.BrandID,
			Detail:      detail,
		}); err != nil {
			return err
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutRecorded,
			AggregateType: enums.AggregatePayout,
			AggregateID:   record.ID,
			Version:       1,
			Data: payloads.PayoutRecorded{
				PayoutID:        record.ID,
				ContractID:      contract.ID,
				CampaignID:      contract.CampaignID,
				CreatorID:       contract.CreatorID,
				AmountCents:     input.AmountCents,
				Method:          string(input.Method),
				ReferenceNumber: record.ReferenceNumber,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithContractID(ctx, input.ContractID.String())
		s.logg.Info(logCtx, "payout recorded")
	}
	return record, nil
}

func (s *service) ListForCreator(ctx context.Context, actor auth.Actor, creatorID uuid.UUID) ([]models.PayoutRecord, error) {
	if creatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id is required")
	}
	if !actor.Role.IsOperator() && actor.UserID != creatorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payouts belong to another creator")
	}
	return s.repo.ListByCreatorID(ctx, creatorID)
}
