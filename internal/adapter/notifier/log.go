package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hackclub/hermes/internal/domain"
)

// Log writes billing notices to the service log. It is the sink used when
// no Slack webhook is configured.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a Log notifier.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) NotifySuccess(ctx context.Context, notice domain.DisbursementCompletedNotice) error {
	l.logger.Info().
		Str("notice", domain.NoticeTypeDisbursementCompleted).
		Str("organization_id", notice.OrganizationID).
		Str("organization_name", notice.OrganizationName).
		Str("disbursement_id", notice.DisbursementID).
		Int64("amount_cents", notice.AmountCents).
		Int("item_count", notice.ItemCount).
		Str("transfer_id", notice.TransferID).
		Str("idempotency_key", notice.IdempotencyKey).
		Msg("disbursement completed")

	return nil
}

func (l *Log) NotifyFailure(ctx context.Context, notice domain.DisbursementFailedNotice) error {
	l.logger.Warn().
		Str("notice", domain.NoticeTypeDisbursementFailed).
		Str("organization_id", notice.OrganizationID).
		Str("organization_name", notice.OrganizationName).
		Str("disbursement_id", notice.DisbursementID).
		Int64("amount_cents", notice.AmountCents).
		Int("item_count", notice.ItemCount).
		Str("reason", notice.Reason).
		Str("idempotency_key", notice.IdempotencyKey).
		Msg("disbursement failed")

	return nil
}
