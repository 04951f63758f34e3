package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// EscrowTransaction records money held against a contract. The sum of a
// contract's funded rows never exceeds the contract total. WalletID stays
// empty on pending rows seeded before any money moved.
type EscrowTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID  uuid.UUID                     `gorm:"column:contract_id;type:uuid;not null;index"`
	WalletID    *uuid.UUID                    `gorm:"column:wallet_id;type:uuid"`
	Type        enums.EscrowTransactionType   `gorm:"column:type;type:escrow_transaction_type_enum;not null"`
	Status      enums.EscrowTransactionStatus `gorm:"column:status;type:escrow_transaction_status_enum;not null;default:'pending'"`
	AmountCents int64                         `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
