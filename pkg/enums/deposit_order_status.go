package enums

import "fmt"

// DepositOrderStatus maps to the deposit_order_status_enum enum in Postgres.
type DepositOrderStatus string

const (
	DepositOrderStatusPending DepositOrderStatus = "pending"
	DepositOrderStatusSuccess DepositOrderStatus = "success"
	DepositOrderStatusFailed  DepositOrderStatus = "failed"
	DepositOrderStatusExpired DepositOrderStatus = "expired"
)

var validDepositOrderStatuses = []DepositOrderStatus{
	DepositOrderStatusPending,
	DepositOrderStatusSuccess,
	DepositOrderStatusFailed,
	DepositOrderStatusExpired,
}

// IsValid reports whether the value matches the canonical enum.
func (s DepositOrderStatus) IsValid() bool {
	for _, candidate := range validDepositOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDepositOrderStatus converts raw input into DepositOrderStatus.
func ParseDepositOrderStatus(value string) (DepositOrderStatus, error) {
	for _, candidate := range validDepositOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit order status %q", value)
}
