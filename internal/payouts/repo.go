package payouts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// Repository manages persistence for payout records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.PayoutRecord) error
	GetByContractID(ctx context.Context, contractID uuid.UUID) (*models.PayoutRecord, error)
	ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]models.PayoutRecord, error)
	ReleaseEscrowForContract(ctx context.Context, contractID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payouts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.PayoutRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByContractID(ctx context.Context, contractID uuid.UUID) (*models.PayoutRecord, error) {
	var record models.PayoutRecord
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]models.PayoutRecord, error) {
	var records []models.PayoutRecord
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ReleaseEscrowForContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EscrowTransaction{}).
		Where("contract_id = ? AND status = ?", contractID, enums.EscrowTransactionStatusFunded).
		Update("status", enums.EscrowTransactionStatusReleased)
	return res.RowsAffected, res.Error
}
