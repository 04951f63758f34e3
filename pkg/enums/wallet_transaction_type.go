package enums

import "fmt"

// WalletTransactionType maps to the wallet_transaction_type_enum enum in Postgres.
type WalletTransactionType string

const (
	WalletTransactionTypeRechargeApproved WalletTransactionType = "recharge_approved"
	WalletTransactionTypeAdvanceLock      WalletTransactionType = "advance_lock"
	WalletTransactionTypeFinalLock        WalletTransactionType = "final_lock"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTypeRechargeApproved,
	WalletTransactionTypeAdvanceLock,
	WalletTransactionTypeFinalLock,
}

// IsValid reports whether the value matches the canonical enum.
func (t WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsLock reports whether the type moves funds out of the spendable balance.
func (t WalletTransactionType) IsLock() bool {
	return t == WalletTransactionTypeAdvanceLock || t == WalletTransactionTypeFinalLock
}

// ParseWalletTransactionType converts raw input into WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
