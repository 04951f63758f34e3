package enums

import "fmt"

// EscrowTransactionType maps to the escrow_transaction_type_enum enum in Postgres.
type EscrowTransactionType string

const (
	EscrowTransactionTypeEscrowFunding EscrowTransactionType = "escrow_funding"
	EscrowTransactionTypeFinalPayment  EscrowTransactionType = "final_payment"
)

var validEscrowTransactionTypes = []EscrowTransactionType{
	EscrowTransactionTypeEscrowFunding,
	EscrowTransactionTypeFinalPayment,
}

// IsValid reports whether the value matches the canonical enum.
func (t EscrowTransactionType) IsValid() bool {
	for _, candidate := range validEscrowTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEscrowTransactionType converts raw input into EscrowTransactionType.
func ParseEscrowTransactionType(value string) (EscrowTransactionType, error) {
	for _, candidate := range validEscrowTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid escrow transaction type %q", value)
}
