package enums

import "fmt"

// EscrowTransactionStatus maps to the escrow_transaction_status_enum enum in Postgres.
type EscrowTransactionStatus string

const (
	EscrowTransactionStatusPending  EscrowTransactionStatus = "pending"
	EscrowTransactionStatusFunded   EscrowTransactionStatus = "funded"
	EscrowTransactionStatusReleased EscrowTransactionStatus = "released"
)

var validEscrowTransactionStatuses = []EscrowTransactionStatus{
	EscrowTransactionStatusPending,
	EscrowTransactionStatusFunded,
	EscrowTransactionStatusReleased,
}

// IsValid reports whether the value matches the canonical enum.
func (s EscrowTransactionStatus) IsValid() bool {
	for _, candidate := range validEscrowTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEscrowTransactionStatus converts raw input into EscrowTransactionStatus.
func ParseEscrowTransactionStatus(value string) (EscrowTransactionStatus, error) {
	for _, candidate := range validEscrowTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid escrow transaction status %q", value)
}
