package domain

import (
	"errors"
	"fmt"
)

// GatewayOutcome is the closed set of results a transfer attempt can have.
// The reconciler branches on this, never on raw error values.
type GatewayOutcome string

const (
	GatewayOutcomeSuccess   GatewayOutcome = "success"
	GatewayOutcomeTransient GatewayOutcome = "transient"
	GatewayOutcomePermanent GatewayOutcome = "permanent"
)

// GatewayError is a typed failure from the payment platform. StatusCode is
// zero when no HTTP status was received (timeout, connection failure,
// unreadable response).
type GatewayError struct {
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: %s", e.Message)
	}
	return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
}

// Permanent reports whether retrying the identical request could never
// succeed. Bad request, unauthorized and unknown account are permanent;
// everything else, including errors with no status at all, is worth
// retrying on a later pass.
func (e *GatewayError) Permanent() bool {
	switch e.StatusCode {
	case 400, 403, 404:
		return true
	default:
		return false
	}
}

// ClassifyGateway maps the error from a transfer attempt onto the outcome
// set. A nil error is success; a non-gateway error (context cancellation,
// transport failure surfaced untyped) counts as transient.
func ClassifyGateway(err error) GatewayOutcome {
	if err == nil {
		return GatewayOutcomeSuccess
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Permanent() {
		return GatewayOutcomePermanent
	}
	return GatewayOutcomeTransient
}

// TransferReceipt is the gateway acknowledgement of a created transfer.
type TransferReceipt struct {
	TransferID string
}

// TransferRecord is one transfer listed from the gateway, used by manual
// reconciliation lookups that match on memo substring and exact amount.
type TransferRecord struct {
	TransferID  string
	Memo        string
	AmountCents int64
}
