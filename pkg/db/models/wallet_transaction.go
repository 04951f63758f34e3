package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// WalletTransaction is the immutable ledger row behind every balance
// movement. ReferenceID carries the operation's natural key so a replay
// of the same operation trips the unique index instead of double writing.
type WalletTransaction struct {
	ID                uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID          uuid.UUID                   `gorm:"column:wallet_id;type:uuid;not null;index"`
	Type              enums.WalletTransactionType `gorm:"column:type;type:wallet_transaction_type_enum;not null"`
	Status            enums.TransactionStatus     `gorm:"column:status;type:transaction_status_enum;not null;default:'success'"`
	AmountCents       int64                       `gorm:"column:amount_cents;not null"`
	BalanceAfterCents int64                       `gorm:"column:balance_after_cents;not null"`
	ReferenceID       string                      `gorm:"column:reference_id;not null;uniqueIndex:uniq_wallet_transactions_reference"`
	ContractID        *uuid.UUID                  `gorm:"column:contract_id;type:uuid;index"`
	DepositOrderID    *uuid.UUID                  `gorm:"column:deposit_order_id;type:uuid"`
	Note              *string                     `gorm:"column:note"`
	CreatedAt         time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
