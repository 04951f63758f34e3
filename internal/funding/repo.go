package funding

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brandbeam/brandbeam-backend/pkg/db/models"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// Repository manages persistence for contracts, their escrow rows and the
// campaign candidates the funding engine advances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	GetContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	CreateContract(ctx context.Context, contract *models.Contract) error
	UpdateContract(ctx context.Context, contract *models.Contract) error
	ListContractsByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Contract, error)

	CreateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error
	UpdateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error
	GetPendingEscrow(ctx context.Context, contractID uuid.UUID, escrowType enums.EscrowTransactionType) (*models.EscrowTransaction, error)
	ListEscrowByContract(ctx context.Context, contractID uuid.UUID) ([]models.EscrowTransaction, error)

	GetCandidate(ctx context.Context, campaignID, creatorID uuid.UUID) (*models.CampaignCandidate, error)
	UpdateCandidate(ctx context.Context, candidate *models.CampaignCandidate) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a funding repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).
		Where("id = ?", contractID).
		First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetContractForUpdate takes the row lock that serializes all funding
// operations on one contract. Lock order is contract first, wallet second.
func (r *repository) GetContractForUpdate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", contractID).
		First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) UpdateContract(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *repository) ListContractsByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repository) CreateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) UpdateEscrowTransaction(ctx context.Context, txn *models.EscrowTransaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

func (r *repository) GetPendingEscrow(ctx context.Context, contractID uuid.UUID, escrowType enums.EscrowTransactionType) (*models.EscrowTransaction, error) {
	var txn models.EscrowTransaction
	if err := r.db.WithContext(ctx).
		Where("contract_id = ? AND type = ? AND status = ?",
			contractID, escrowType, enums.EscrowTransactionStatusPending).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListEscrowByContract(ctx context.Context, contractID uuid.UUID) ([]models.EscrowTransaction, error) {
	var rows []models.EscrowTransaction
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) GetCandidate(ctx context.Context, campaignID, creatorID uuid.UUID) (*models.CampaignCandidate, error) {
	var candidate models.CampaignCandidate
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND creator_id = ?", campaignID, creatorID).
		First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *repository) UpdateCandidate(ctx context.Context, candidate *models.CampaignCandidate) error {
	return r.db.WithContext(ctx).Save(candidate).Error
}
