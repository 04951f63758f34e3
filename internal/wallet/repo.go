package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
	"github.com/brandbeam/brandbeam-backend/pkg/pagination"
)

// Repository manages persistence for wallet accounts, their ledger rows and
// deposit orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetByBrandID(ctx context.Context, brandID uuid.UUID) (*models.WalletAccount, error)
	GetByIDForUpdate(ctx context.Context, walletID uuid.UUID) (*models.WalletAccount, error)
	Create(ctx context.Context, wallet *models.WalletAccount) error
	AddBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) error
	DeductBalanceGuarded(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error)

	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
	SumLockedByContract(ctx context.Context, contractID uuid.UUID) (int64, error)

	CreateDepositOrder(ctx context.Context, order *models.DepositOrder) error
	GetDepositOrderByReferenceForUpdate(ctx context.Context, orderReference string) (*models.DepositOrder, error)
	UpdateDepositOrder(ctx context.Context, order *models.DepositOrder) error
	ExpirePendingOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByBrandID(ctx context.Context, brandID uuid.UUID) (*models.WalletAccount, error) {
	var wallet models.WalletAccount
	if err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, walletID uuid.UUID) (*models.WalletAccount, error) {
	var wallet models.WalletAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", walletID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) Create(ctx context.Context, wallet *models.WalletAccount) error {
	return r.db.WithContext(ctx).Create(wallet).Error
}

func (r *repository) AddBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", walletID).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

// DeductBalanceGuarded decrements the balance only when it covers the
// amount. The caller must already hold the row lock; the guard is the final
// word on overdraw.
func (r *repository) DeductBalanceGuarded(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ? AND balance_cents >= ?", walletID, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WalletTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumLockedByContract totals the ledger rows tied to one contract. Lock
// rows carry negative amounts, so the sum is negated back to cents locked.
func (r *repository) SumLockedByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("contract_id = ? AND status = ?", contractID, enums.TransactionStatusSuccess).
		Select("COALESCE(SUM(-amount_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) CreateDepositOrder(ctx context.Context, order *models.DepositOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetDepositOrderByReferenceForUpdate(ctx context.Context, orderReference string) (*models.DepositOrder, error) {
	var order models.DepositOrder
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_reference = ?", orderReference).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateDepositOrder(ctx context.Context, order *models.DepositOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) ExpirePendingOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DepositOrder{}).
		Where("status = ? AND expires_at < ?", enums.DepositOrderStatusPending, cutoff).
		Update("status", enums.DepositOrderStatusExpired)
	return res.RowsAffected, res.Error
}
