package payloads

import "github.com/google/uuid"

// WalletRecharged is emitted after a deposit proof is applied to a wallet.
type WalletRecharged struct {
	WalletID       uuid.UUID `json:"walletId"`
	BrandID        uuid.UUID `json:"brandId"`
	OrderReference string    `json:"orderReference"`
	PaymentID      string    `json:"paymentId"`
	AmountCents    int64     `json:"amountCents"`
	BalanceCents   int64     `json:"balanceCents"`
}

// ContractFunded is emitted when the advance slice lands in escrow and the
// contract goes active.
type ContractFunded struct {
	ContractID         uuid.UUID `json:"contractId"`
	BrandID            uuid.UUID `json:"brandId"`
	CreatorID          uuid.UUID `json:"creatorId"`
	AdvanceAmountCents int64     `json:"advanceAmountCents"`
	TotalAmountCents   int64     `json:"totalAmountCents"`
}

// ContractCompleted is emitted when the final slice lands in escrow and the
// contract closes out.
type ContractCompleted struct {
	ContractID       uuid.UUID `json:"contractId"`
	BrandID          uuid.UUID `json:"brandId"`
	CreatorID        uuid.UUID `json:"creatorId"`
	FinalAmountCents int64     `json:"finalAmountCents"`
	TotalAmountCents int64     `json:"totalAmountCents"`
}

// PayoutRecorded is emitted when an operator documents the off-platform
// transfer to the creator.
type PayoutRecorded struct {
	PayoutID        uuid.UUID `json:"payoutId"`
	ContractID      uuid.UUID `json:"contractId"`
	CampaignID      uuid.UUID `json:"campaignId"`
	CreatorID       uuid.UUID `json:"creatorId"`
	AmountCents     int64     `json:"amountCents"`
	Method          string    `json:"method"`
	ReferenceNumber string    `json:"referenceNumber"`
}
