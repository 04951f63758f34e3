package enums

// AuditAction names a state-changing operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionDepositOrderCreated AuditAction = "deposit_order.created"
	AuditActionWalletRecharged     AuditAction = "wallet.recharged"
	AuditActionAdvanceLocked       AuditAction = "contract.advance_locked"
	AuditActionFinalLocked         AuditAction = "contract.final_locked"
	AuditActionPayoutRecorded      AuditAction = "payout.recorded"
)
