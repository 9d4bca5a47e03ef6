package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackclub/hermes/internal/domain"
)

const slackTimeout = 10 * time.Second

// Slack delivers billing notices to a Slack incoming webhook. Delivery is
// best-effort; the caller decides what a failed send means.
type Slack struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlack creates a Slack notifier for the given webhook URL.
func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: slackTimeout}
	}

	return &Slack{
		webhookURL: webhookURL,
		httpClient: client,
	}
}

// NotifySuccess posts a completed-disbursement notice.
func (s *Slack) NotifySuccess(ctx context.Context, notice domain.DisbursementCompletedNotice) error {
	text := fmt.Sprintf("Disbursement %s completed: %s charged $%s for %d items (transfer %s)",
		notice.DisbursementID,
		orgLabel(notice.OrganizationName, notice.OrganizationID),
		dollars(notice.AmountCents),
		notice.ItemCount,
		notice.TransferID)

	return s.post(ctx, text)
}

// NotifyFailure posts a failed-disbursement notice with the detail an
// operator needs to settle the transfer by hand.
func (s *Slack) NotifyFailure(ctx context.Context, notice domain.DisbursementFailedNotice) error {
	text := fmt.Sprintf("Disbursement %s FAILED: %s owes $%s for %d items. Reason: %s. Idempotency key: %s",
		notice.DisbursementID,
		orgLabel(notice.OrganizationName, notice.OrganizationID),
		dollars(notice.AmountCents),
		notice.ItemCount,
		notice.Reason,
		notice.IdempotencyKey)

	return s.post(ctx, text)
}

func (s *Slack) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting slack notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// dollars renders cents as a fixed two-decimal dollar amount.
func dollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func orgLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
