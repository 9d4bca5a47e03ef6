package domain

// Notice types
const (
	NoticeTypeDisbursementCompleted = "disbursement.completed"
	NoticeTypeDisbursementFailed    = "disbursement.failed"
)

// DisbursementCompletedNotice is sent after a disbursement reaches completed.
type DisbursementCompletedNotice struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	DisbursementID   string `json:"disbursement_id"`
	AmountCents      int64  `json:"amount_cents"`
	ItemCount        int    `json:"item_count"`
	TransferID       string `json:"transfer_id"`
	IdempotencyKey   string `json:"idempotency_key"`
}

// DisbursementFailedNotice is sent after a disbursement is marked failed.
// It carries enough detail for an operator to finish the transfer by hand.
type DisbursementFailedNotice struct {
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	DisbursementID   string `json:"disbursement_id"`
	AmountCents      int64  `json:"amount_cents"`
	ItemCount        int    `json:"item_count"`
	Reason           string `json:"reason"`
	IdempotencyKey   string `json:"idempotency_key"`
}
