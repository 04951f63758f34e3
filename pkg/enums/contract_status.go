package enums

import "fmt"

// ContractStatus maps to the contract_status_enum enum in Postgres.
//
// The state machine is strictly forward: draft -> active -> completed.
// A failed funding attempt never advances the status.
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
)

var validContractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusActive,
	ContractStatusCompleted,
}

// IsValid reports whether the value matches the canonical enum.
func (s ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted
}

// ParseContractStatus converts raw input into ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
