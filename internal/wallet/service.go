package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/internal/audit"
	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	"github.com/brandbeam/brandbeam-backend/pkg/config"
	dbpkg "github.com/brandbeam/brandbeam-backend/pkg/db"
	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	pkgerrors "github.com/brandbeam/brandbeam-backend/pkg/errors"
	"github.com/brandbeam/brandbeam-backend/pkg/gateway"
	"github.com/brandbeam/brandbeam-backend/pkg/logger"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox"
	"github.com/brandbeam/brandbeam-backend/pkg/outbox/payloads"
	"github.com/brandbeam/brandbeam-backend/pkg/pagination"
)

// Service owns wallet balances and the deposit lifecycle. Every balance
// movement writes a ledger row in the same transaction.
type Service interface {
	CreateDepositOrder(ctx context.Context, actor auth.Actor, input CreateDepositOrderInput) (*models.DepositOrder, error)
	ConfirmDeposit(ctx context.Context, proof DepositProof) (*models.DepositOrder, error)
	GetSummary(ctx context.Context, actor auth.Actor, brandID uuid.UUID, page pagination.Params) (*Summary, error)
	EnsureWallet(ctx context.Context, brandID uuid.UUID) (*models.WalletAccount, error)
}

// CreateDepositOrderInput captures a brand's recharge request.
type CreateDepositOrderInput struct {
	BrandID     uuid.UUID `json:"brand_id"`
	AmountCents int64     `json:"amount_cents"`
}

// DepositProof is the signed payment confirmation the gateway posts back.
type DepositProof struct {
	OrderReference string `json:"order_reference"`
	PaymentID      string `json:"payment_id"`
	AmountCents    int64  `json:"amount_cents"`
	Signature      string `json:"signature"`
}

// Summary bundles the wallet with a page of its ledger.
type Summary struct {
	Wallet       models.WalletAccount       `json:"wallet"`
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

type service struct {
	db       *dbpkg.Client
	repo     Repository
	auditSvc audit.Service
	outbox   *outbox.Service
	signer   *gateway.Signer
	wcfg     config.WalletConfig
	gcfg     config.GatewayConfig
	logg     *logger.Logger
}

// NewService wires the wallet service with its dependencies.
func NewService(
	client *dbpkg.Client,
	repo Repository,
	auditSvc audit.Service,
	outboxSvc *outbox.Service,
	signer *gateway.Signer,
	wcfg config.WalletConfig,
	gcfg config.GatewayConfig,
	logg *logger.Logger,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if signer == nil {
		return nil, fmt.Errorf("gateway signer required")
	}
	return &service{
		db:       client,
		repo:     repo,
		auditSvc: auditSvc,
		outbox:   outboxSvc,
		signer:   signer,
		wcfg:     wcfg,
		gcfg:     gcfg,
		logg:     logg,
	}, nil
}

func (s *service) CreateDepositOrder(ctx context.Context, actor auth.Actor, input CreateDepositOrderInput) (*models.DepositOrder, error) {
	if input.BrandID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	if !actor.OwnsBrand(input.BrandID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wallet belongs to another brand")
	}
	if input.AmountCents < s.wcfg.MinDepositCents || input.AmountCents > s.wcfg.MaxDepositCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount outside allowed range").
			WithDetails(map[string]any{
				"min_cents": s.wcfg.MinDepositCents,
				"max_cents": s.wcfg.MaxDepositCents,
			})
	}

	reference := newOrderReference()
	expiry := s.gcfg.OrderExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	var order *models.DepositOrder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		wallet, err := s.ensureWallet(ctx, repo, input.BrandID)
		if err != nil {
			return err
		}

		order = &models.DepositOrder{
			WalletID:       wallet.ID,
			BrandID:        input.BrandID,
			OrderReference: reference,
			AmountCents:    input.AmountCents,
			Status:         enums.DepositOrderStatusPending,
			CheckoutURL:    s.signer.CheckoutURL(reference, input.AmountCents),
			ExpiresAt:      time.Now().Add(expiry),
		}
		if err := repo.CreateDepositOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating deposit order")
		}

		detail, _ := json.Marshal(map[string]any{
			"order_reference": reference,
			"amount_cents":    input.AmountCents,
		})
		_, err = s.auditSvc.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			Action:      enums.AuditActionDepositOrderCreated,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
			SubjectType: "deposit_order",
			SubjectID:   order.ID,
			BrandID:     &input.BrandID,
			Detail:      detail,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithBrandID(ctx, input.BrandID.String())
		s.logg.Info(logCtx, "deposit order created")
	}
	return order, nil
}

func (s *service) ConfirmDeposit(ctx context.Context, proof DepositProof) (*models.DepositOrder, error) {
	if strings.TrimSpace(proof.OrderReference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	if strings.TrimSpace(proof.PaymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	// Reject forged proofs before touching any state.
	if !s.signer.VerifyProof(proof.OrderReference, proof.PaymentID, proof.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSignature, "deposit proof signature mismatch")
	}

	var order *models.DepositOrder
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.GetDepositOrderByReferenceForUpdate(ctx, proof.OrderReference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deposit order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading deposit order")
		}
		order = found

		switch order.Status {
		case enums.DepositOrderStatusSuccess:
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "deposit already applied").
				WithDetails(map[string]any{"order_reference": order.OrderReference})
		case enums.DepositOrderStatusExpired, enums.DepositOrderStatusFailed:
			return pkgerrors.New(pkgerrors.CodeValidation, "deposit order is no longer payable").
				WithDetails(map[string]any{"status": order.Status})
		}
		if order.AmountCents != proof.AmountCents {
			return pkgerrors.New(pkgerrors.CodeValidation, "deposit amount mismatch").
				WithDetails(map[string]any{
					"expected_cents": order.AmountCents,
					"received_cents": proof.AmountCents,
				})
		}

		wallet, err := repo.GetByIDForUpdate(ctx, order.WalletID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking wallet")
		}

		if err := repo.AddBalance(ctx, wallet.ID, order.AmountCents); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crediting wallet")
		}
		balanceAfter := wallet.BalanceCents + order.AmountCents

		txn := &models.WalletTransaction{
			WalletID:          wallet.ID,
			Type:              enums.WalletTransactionTypeRechargeApproved,
			Status:            enums.TransactionStatusSuccess,
			AmountCents:       order.AmountCents,
			BalanceAfterCents: balanceAfter,
			ReferenceID:       depositReference(order.OrderReference),
			DepositOrderID:    &order.ID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			if dbpkg.IsUniqueViolation(err, "uniq_wallet_transactions_reference") {
				return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "deposit already applied").
					WithDetails(map[string]any{"order_reference": order.OrderReference})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing wallet transaction")
		}

		now := time.Now()
		paymentID := proof.PaymentID
		order.Status = enums.DepositOrderStatusSuccess
		order.PaymentID = &paymentID
		order.ConfirmedAt = &now
		if err := repo.UpdateDepositOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating deposit order")
		}

		detail, _ := json.Marshal(map[string]any{
			"order_reference":     order.OrderReference,
			"payment_id":          proof.PaymentID,
			"amount_cents":        order.AmountCents,
			"balance_after_cents": balanceAfter,
		})
		if _, err := s.auditSvc.WithTx(tx).Record(ctx, audit.RecordEntryInput{
			Action:      enums.AuditActionWalletRecharged,
			ActorUserID: audit.SystemActorID,
			ActorRole:   enums.MemberRoleSystem,
			SubjectType: "wallet_account",
			SubjectID:   wallet.ID,
			BrandID:     &order.BrandID,
			Detail:      detail,
		}); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletRecharged,
			AggregateType: enums.AggregateWallet,
			AggregateID:   wallet.ID,
			Version:       1,
			Data: payloads.WalletRecharged{
				WalletID:       wallet.ID,
				BrandID:        order.BrandID,
				OrderReference: order.OrderReference,
				PaymentID:      proof.PaymentID,
				AmountCents:    order.AmountCents,
				BalanceCents:   balanceAfter,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithBrandID(ctx, order.BrandID.String())
		s.logg.Info(logCtx, "wallet recharged")
	}
	return order, nil
}

func (s *service) GetSummary(ctx context.Context, actor auth.Actor, brandID uuid.UUID, page pagination.Params) (*Summary, error) {
	if brandID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	if !actor.OwnsBrand(brandID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wallet belongs to another brand")
	}

	wallet, err := s.repo.GetByBrandID(ctx, brandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wallet")
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(page.Limit)

	rows, err := s.repo.ListTransactions(ctx, wallet.ID, cursor, pagination.LimitWithBuffer(page.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing wallet transactions")
	}

	summary := &Summary{Wallet: *wallet}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		summary.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	summary.Transactions = rows
	return summary, nil
}

func (s *service) EnsureWallet(ctx context.Context, brandID uuid.UUID) (*models.WalletAccount, error) {
	if brandID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	var wallet *models.WalletAccount
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		wallet, err = s.ensureWallet(ctx, s.repo.WithTx(tx), brandID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) ensureWallet(ctx context.Context, repo Repository, brandID uuid.UUID) (*models.WalletAccount, error) {
	wallet, err := repo.GetByBrandID(ctx, brandID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wallet")
	}

	wallet = &models.WalletAccount{BrandID: brandID, Currency: "USD"}
	if err := repo.Create(ctx, wallet); err != nil {
		if dbpkg.IsUniqueViolation(err, "uniq_wallet_accounts_brand") {
			return repo.GetByBrandID(ctx, brandID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating wallet")
	}
	return wallet, nil
}

func newOrderReference() string {
	return "BB-DEP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func depositReference(orderReference string) string {
	return "deposit:" + orderReference
}
