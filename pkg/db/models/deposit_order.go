package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

// DepositOrder tracks a gateway checkout from creation until the payment
// proof lands. OrderReference is the merchant-side key echoed back by the
// gateway callback.
type DepositOrder struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID       uuid.UUID                `gorm:"column:wallet_id;type:uuid;not null;index"`
	BrandID        uuid.UUID                `gorm:"column:brand_id;type:uuid;not null;index"`
	OrderReference string                   `gorm:"column:order_reference;not null;uniqueIndex:uniq_deposit_orders_reference"`
	AmountCents    int64                    `gorm:"column:amount_cents;not null"`
	Status         enums.DepositOrderStatus `gorm:"column:status;type:deposit_order_status_enum;not null;default:'pending'"`
	PaymentID      *string                  `gorm:"column:payment_id"`
	CheckoutURL    string                   `gorm:"column:checkout_url;not null"`
	ExpiresAt      time.Time                `gorm:"column:expires_at;not null"`
	ConfirmedAt    *time.Time               `gorm:"column:confirmed_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
