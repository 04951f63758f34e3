package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletAccount holds a brand's prepaid balance in integer minor units.
// All mutations go through guarded updates inside a transaction, never
// through direct Save calls.
type WalletAccount struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID      uuid.UUID `gorm:"column:brand_id;type:uuid;not null;uniqueIndex:uniq_wallet_accounts_brand"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	Currency     string    `gorm:"column:currency;type:char(3);not null;default:'USD'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
