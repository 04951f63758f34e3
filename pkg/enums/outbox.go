package enums

import "fmt"

// OutboxEventType maps to the event_type_enum enum in Postgres.
type OutboxEventType string

const (
	EventWalletRecharged   OutboxEventType = "wallet.recharged"
	EventContractFunded    OutboxEventType = "contract.funded"
	EventContractCompleted OutboxEventType = "contract.completed"
	EventPayoutRecorded    OutboxEventType = "payout.recorded"
)

var validOutboxEventTypes = []OutboxEventType{
	EventWalletRecharged,
	EventContractFunded,
	EventContractCompleted,
	EventPayoutRecorded,
}

// IsValid reports whether the value matches the canonical enum.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType maps to the aggregate_type_enum enum in Postgres.
type OutboxAggregateType string

const (
	AggregateWallet   OutboxAggregateType = "wallet"
	AggregateContract OutboxAggregateType = "contract"
	AggregatePayout   OutboxAggregateType = "payout"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateWallet,
	AggregateContract,
	AggregatePayout,
}

// IsValid reports whether the value matches the canonical enum.
func (t OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}
