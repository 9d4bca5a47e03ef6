package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
	"github.com/hackclub/hermes/internal/usecase/mocks"
)

const testFulfillmentAccount = "hermes-fulfillment"

type billingMocks struct {
	txManager *mocks.MockTransactionManager
	orgRepo   *mocks.MockOrganizationRepository
	itemRepo  *mocks.MockItemRepository
	disbRepo  *mocks.MockDisbursementRepository
	runRepo   *mocks.MockRunRepository
	gateway   *mocks.MockPaymentGateway
	notifier  *mocks.MockNotifier
	idGen     *mocks.MockIDGenerator
	keyGen    *mocks.MockKeyGenerator
}

func newBillingMocks() *billingMocks {
	return &billingMocks{
		txManager: mocks.NewMockTransactionManager(),
		orgRepo:   mocks.NewMockOrganizationRepository(),
		itemRepo:  mocks.NewMockItemRepository(),
		disbRepo:  mocks.NewMockDisbursementRepository(),
		runRepo:   mocks.NewMockRunRepository(),
		gateway:   mocks.NewMockPaymentGateway(),
		notifier:  mocks.NewMockNotifier(),
		idGen:     mocks.NewMockIDGenerator(),
		keyGen:    mocks.NewMockKeyGenerator(),
	}
}

func (m *billingMocks) usecase() *usecase.BillingUseCase {
	return usecase.NewBillingUseCase(
		m.txManager,
		m.orgRepo,
		m.itemRepo,
		m.disbRepo,
		m.runRepo,
		m.gateway,
		m.notifier,
		m.idGen,
		m.keyGen,
		testFulfillmentAccount,
		nil,
	)
}

func slugPtr(s string) *string { return &s }

func billableOrg(id, name, slug string) *domain.Organization {
	return &domain.Organization{
		ID:          id,
		Name:        name,
		AccountSlug: slugPtr(slug),
		CreatedAt:   time.Now().UTC(),
	}
}

func unbilledItem(id, orgID string, costCents int64) *domain.BillableItem {
	return &domain.BillableItem{
		ID:             id,
		OrganizationID: orgID,
		CostCents:      costCents,
		CreatedAt:      time.Now().UTC(),
	}
}

func pendingDisbursement(id, key, orgID string, amountCents int64, itemCount int) *domain.Disbursement {
	created := time.Now().UTC().Add(-time.Hour)
	return &domain.Disbursement{
		ID:             id,
		IdempotencyKey: key,
		OrganizationID: orgID,
		AmountCents:    amountCents,
		ItemCount:      itemCount,
		Status:         domain.DisbursementStatusPending,
		CreatedAt:      created,
		LastAttemptAt:  created,
	}
}

type transferCall struct {
	source      string
	destination string
	amountCents int64
	memo        string
}

// recordTransfers replaces the gateway's create func with one that records
// every call and answers with sequential transfer ids.
func recordTransfers(m *billingMocks, calls *[]transferCall, fail func(call transferCall) error) {
	ids := []string{"tx_1", "tx_2", "tx_3", "tx_4", "tx_5"}
	m.gateway.CreateTransferFunc = func(ctx context.Context, sourceSlug, destination string, amountCents int64, memo string) (*domain.TransferReceipt, error) {
		c := transferCall{source: sourceSlug, destination: destination, amountCents: amountCents, memo: memo}
		*calls = append(*calls, c)
		if fail != nil {
			if err := fail(c); err != nil {
				return nil, err
			}
		}
		return &domain.TransferReceipt{TransferID: ids[(len(*calls)-1)%len(ids)]}, nil
	}
}

func TestBillingUseCase_ProcessNewBillables(t *testing.T) {
	ctx := context.Background()

	t.Run("bills one organization end to end", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(
			unbilledItem("item_1", "org_acme", 500),
			unbilledItem("item_2", "org_acme", 700),
			unbilledItem("item_3", "org_acme", 300),
		)

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.OrganizationsProcessed != 1 {
			t.Errorf("expected 1 organization processed, got %d", result.OrganizationsProcessed)
		}
		if result.ItemsBilled != 3 {
			t.Errorf("expected 3 items billed, got %d", result.ItemsBilled)
		}
		if result.TotalAmountCents != 1500 {
			t.Errorf("expected total 1500, got %d", result.TotalAmountCents)
		}
		if len(result.Errors) != 0 {
			t.Errorf("expected no errors, got %+v", result.Errors)
		}

		if len(calls) != 1 {
			t.Fatalf("expected 1 gateway call, got %d", len(calls))
		}
		if calls[0].source != "acme" {
			t.Errorf("expected source acme, got %s", calls[0].source)
		}
		if calls[0].destination != testFulfillmentAccount {
			t.Errorf("expected destination %s, got %s", testFulfillmentAccount, calls[0].destination)
		}
		if calls[0].amountCents != 1500 {
			t.Errorf("expected transfer amount 1500, got %d", calls[0].amountCents)
		}

		d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
		if err != nil {
			t.Fatalf("disbursement not persisted: %v", err)
		}
		if d.Status != domain.DisbursementStatusCompleted {
			t.Errorf("expected status completed, got %s", d.Status)
		}
		if d.TransferID == nil || *d.TransferID != "tx_1" {
			t.Errorf("expected transfer id tx_1, got %v", d.TransferID)
		}
		if d.AmountCents != 1500 || d.ItemCount != 3 {
			t.Errorf("expected amount 1500 over 3 items, got %d over %d", d.AmountCents, d.ItemCount)
		}
		if !strings.Contains(calls[0].memo, d.IdempotencyKey) {
			t.Errorf("memo %q does not carry the idempotency key %q", calls[0].memo, d.IdempotencyKey)
		}

		for _, id := range []string{"item_1", "item_2", "item_3"} {
			item, err := m.itemRepo.GetByID(ctx, id)
			if err != nil {
				t.Fatalf("item %s: %v", id, err)
			}
			if !item.Billed {
				t.Errorf("item %s was not flagged billed", id)
			}
		}

		if len(m.notifier.Successes) != 1 {
			t.Fatalf("expected 1 success notice, got %d", len(m.notifier.Successes))
		}
		notice := m.notifier.Successes[0]
		if notice.OrganizationName != "Acme Robotics" {
			t.Errorf("expected organization name Acme Robotics, got %s", notice.OrganizationName)
		}
		if notice.TransferID != "tx_1" || notice.AmountCents != 1500 || notice.ItemCount != 3 {
			t.Errorf("unexpected notice %+v", notice)
		}
		if notice.IdempotencyKey != d.IdempotencyKey {
			t.Errorf("notice carries key %q, disbursement has %q", notice.IdempotencyKey, d.IdempotencyKey)
		}
	})

	t.Run("does nothing when no items are unbilled", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.OrganizationsProcessed != 0 || result.ItemsBilled != 0 || result.TotalAmountCents != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
		if len(calls) != 0 {
			t.Errorf("expected no gateway calls, got %d", len(calls))
		}
	})

	t.Run("commits state before calling the gateway", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))

		var rolledBack bool
		m.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
			return &mocks.MockTransaction{
				CommitFunc:   func(ctx context.Context) error { return errors.New("connection reset") },
				RollbackFunc: func(ctx context.Context) error { rolledBack = true; return nil },
			}, nil
		}
		// Writes inside the failed transaction never become visible, so the
		// overrides leave the backing maps untouched.
		m.disbRepo.CreateFunc = func(ctx context.Context, tx usecase.Transaction, d *domain.Disbursement) error {
			return nil
		}
		m.itemRepo.MarkBilledFunc = func(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error) {
			return int64(len(ids)), nil
		}

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 0 {
			t.Fatalf("gateway called %d times although nothing was committed", len(calls))
		}
		if !rolledBack {
			t.Errorf("expected the transaction to be rolled back")
		}
		if result.OrganizationsProcessed != 0 || result.ItemsBilled != 0 {
			t.Errorf("expected zero counters, got %+v", result)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error entry, got %d", len(result.Errors))
		}
		if !result.Errors[0].Retryable {
			t.Errorf("commit failures must be retryable")
		}

		item, err := m.itemRepo.GetByID(ctx, "item_1")
		if err != nil {
			t.Fatalf("item_1: %v", err)
		}
		if item.Billed {
			t.Errorf("item flagged billed although the transaction failed")
		}
		if len(m.notifier.Successes)+len(m.notifier.Failures) != 0 {
			t.Errorf("no notices expected on a failed commit")
		}
	})

	t.Run("abandons the group when part of the snapshot was already billed", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(
			unbilledItem("item_1", "org_acme", 500),
			unbilledItem("item_2", "org_acme", 700),
		)
		m.itemRepo.MarkBilledFunc = func(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error) {
			return int64(len(ids)) - 1, nil
		}

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(calls) != 0 {
			t.Fatalf("gateway must not be called for an abandoned group")
		}
		if len(result.Errors) != 1 || !result.Errors[0].Retryable {
			t.Fatalf("expected 1 retryable error, got %+v", result.Errors)
		}
		if !strings.Contains(result.Errors[0].Error, "snapshot") {
			t.Errorf("error %q does not explain the raced snapshot", result.Errors[0].Error)
		}
	})

	t.Run("skips organizations without an account slug", func(t *testing.T) {
		noSlug := &domain.Organization{ID: "org_a", Name: "No Slug Yet", CreatedAt: time.Now().UTC()}
		emptySlug := &domain.Organization{ID: "org_b", Name: "Empty Slug", AccountSlug: slugPtr(""), CreatedAt: time.Now().UTC()}

		m := newBillingMocks()
		m.orgRepo.Seed(noSlug, emptySlug)
		m.itemRepo.Seed(
			unbilledItem("item_a", "org_a", 100),
			unbilledItem("item_b", "org_b", 200),
		)

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 0 {
			t.Fatalf("expected no gateway calls, got %d", len(calls))
		}
		if result.OrganizationsProcessed != 0 || result.ItemsBilled != 0 {
			t.Errorf("expected zero counters, got %+v", result)
		}
		if len(result.Errors) != 2 {
			t.Fatalf("expected 2 error entries, got %+v", result.Errors)
		}
		for _, e := range result.Errors {
			if e.Retryable {
				t.Errorf("missing slug for %s must not be retryable", e.OrganizationID)
			}
			if !strings.Contains(e.Error, "account slug") {
				t.Errorf("error %q does not name the missing slug", e.Error)
			}
		}

		pending, err := m.disbRepo.ListByStatus(ctx, domain.DisbursementStatusPending, 10, 0)
		if err != nil {
			t.Fatalf("listing pending: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("expected no disbursements for slugless organizations, got %d", len(pending))
		}

		for _, id := range []string{"item_a", "item_b"} {
			item, err := m.itemRepo.GetByID(ctx, id)
			if err != nil {
				t.Fatalf("item %s: %v", id, err)
			}
			if item.Billed {
				t.Errorf("item %s must stay unbilled", id)
			}
		}
	})

	t.Run("permanent gateway failure fails the disbursement", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))

		var calls []transferCall
		recordTransfers(m, &calls, func(transferCall) error {
			return &domain.GatewayError{Message: "no such organization", StatusCode: 404}
		})

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.OrganizationsProcessed != 0 {
			t.Errorf("failed disbursements must not be counted, got %d", result.OrganizationsProcessed)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error entry, got %+v", result.Errors)
		}
		if result.Errors[0].Retryable {
			t.Errorf("a 404 must not be retryable")
		}

		d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
		if err != nil {
			t.Fatalf("disbursement not persisted: %v", err)
		}
		if d.Status != domain.DisbursementStatusFailed {
			t.Errorf("expected status failed, got %s", d.Status)
		}
		if d.ErrorDetail == nil || !strings.Contains(*d.ErrorDetail, "status 404") {
			t.Errorf("expected error detail with the gateway status, got %v", d.ErrorDetail)
		}

		// The items stay covered by the failed disbursement so they cannot
		// be billed a second time while an operator resolves it.
		item, err := m.itemRepo.GetByID(ctx, "item_1")
		if err != nil {
			t.Fatalf("item_1: %v", err)
		}
		if !item.Billed {
			t.Errorf("items must stay flagged under a failed disbursement")
		}

		if len(m.notifier.Failures) != 1 {
			t.Fatalf("expected 1 failure notice, got %d", len(m.notifier.Failures))
		}
		failure := m.notifier.Failures[0]
		if failure.IdempotencyKey != d.IdempotencyKey {
			t.Errorf("notice carries key %q, disbursement has %q", failure.IdempotencyKey, d.IdempotencyKey)
		}
		if !strings.Contains(failure.Reason, "no such organization") {
			t.Errorf("failure reason %q does not carry the gateway message", failure.Reason)
		}
	})

	t.Run("transient gateway failure leaves the disbursement pending", func(t *testing.T) {
		tests := []struct {
			name       string
			gatewayErr error
		}{
			{name: "server error", gatewayErr: &domain.GatewayError{Message: "internal error", StatusCode: 500}},
			{name: "no status at all", gatewayErr: errors.New("connect timeout")},
		}

		for _, tt := range tests {
			gatewayErr := tt.gatewayErr
			t.Run(tt.name, func(t *testing.T) {
				m := newBillingMocks()
				m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
				m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))

				var calls []transferCall
				recordTransfers(m, &calls, func(transferCall) error { return gatewayErr })

				result, err := m.usecase().ProcessNewBillables(ctx)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				if len(result.Errors) != 1 || !result.Errors[0].Retryable {
					t.Fatalf("expected 1 retryable error, got %+v", result.Errors)
				}

				d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
				if err != nil {
					t.Fatalf("disbursement not persisted: %v", err)
				}
				if d.Status != domain.DisbursementStatusPending {
					t.Errorf("expected status pending, got %s", d.Status)
				}

				item, err := m.itemRepo.GetByID(ctx, "item_1")
				if err != nil {
					t.Fatalf("item_1: %v", err)
				}
				if !item.Billed {
					t.Errorf("items stay flagged while the pending row waits for recovery")
				}
				if len(m.notifier.Successes)+len(m.notifier.Failures) != 0 {
					t.Errorf("routine retries must not notify anyone")
				}
			})
		}
	})

	t.Run("one failing organization does not block the others", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(
			billableOrg("org_a", "Alpha", "alpha"),
			billableOrg("org_b", "Bravo", "bravo"),
			billableOrg("org_c", "Carol", "carol"),
		)
		m.itemRepo.Seed(
			unbilledItem("item_a1", "org_a", 100),
			unbilledItem("item_a2", "org_a", 200),
			unbilledItem("item_b1", "org_b", 400),
			unbilledItem("item_c1", "org_c", 800),
		)

		var calls []transferCall
		recordTransfers(m, &calls, func(c transferCall) error {
			if c.source == "bravo" {
				return &domain.GatewayError{Message: "internal error", StatusCode: 500}
			}
			return nil
		})

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 3 {
			t.Fatalf("expected 3 gateway calls, got %d", len(calls))
		}
		for i, want := range []string{"alpha", "bravo", "carol"} {
			if calls[i].source != want {
				t.Errorf("call %d went to %s, expected %s", i, calls[i].source, want)
			}
		}

		if result.OrganizationsProcessed != 2 {
			t.Errorf("expected 2 organizations processed, got %d", result.OrganizationsProcessed)
		}
		if result.ItemsBilled != 3 {
			t.Errorf("expected 3 items billed, got %d", result.ItemsBilled)
		}
		if result.TotalAmountCents != 1100 {
			t.Errorf("expected total 1100, got %d", result.TotalAmountCents)
		}
		if len(result.Errors) != 1 || result.Errors[0].OrganizationID != "org_b" || !result.Errors[0].Retryable {
			t.Fatalf("expected a single retryable error for org_b, got %+v", result.Errors)
		}

		statuses := map[string]domain.DisbursementStatus{}
		for _, key := range []string{"mock-key-1", "mock-key-2", "mock-key-3"} {
			d, err := m.disbRepo.GetByIdempotencyKey(ctx, key)
			if err != nil {
				t.Fatalf("disbursement %s: %v", key, err)
			}
			statuses[d.OrganizationID] = d.Status
		}
		if statuses["org_a"] != domain.DisbursementStatusCompleted {
			t.Errorf("org_a should have completed, got %s", statuses["org_a"])
		}
		if statuses["org_b"] != domain.DisbursementStatusPending {
			t.Errorf("org_b should stay pending, got %s", statuses["org_b"])
		}
		if statuses["org_c"] != domain.DisbursementStatusCompleted {
			t.Errorf("org_c should have completed, got %s", statuses["org_c"])
		}
	})

	t.Run("completion write failure stays retryable", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))
		m.disbRepo.MarkCompletedFunc = func(ctx context.Context, id, transferID string, completedAt time.Time) error {
			return errors.New("connection reset")
		}

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.OrganizationsProcessed != 0 {
			t.Errorf("an unrecorded completion must not be counted")
		}
		if len(result.Errors) != 1 || !result.Errors[0].Retryable {
			t.Fatalf("expected 1 retryable error, got %+v", result.Errors)
		}

		// The transfer went through but the row still says pending, so the
		// next recovery pass resubmits with the same key and the gateway
		// resolves it to the existing transfer.
		d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
		if err != nil {
			t.Fatalf("disbursement not persisted: %v", err)
		}
		if d.Status != domain.DisbursementStatusPending {
			t.Errorf("expected status pending, got %s", d.Status)
		}
		if len(m.notifier.Successes) != 0 {
			t.Errorf("no success notice without a recorded completion")
		}
	})

	t.Run("notifier failure does not unwind billing state", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))
		m.notifier.NotifySuccessFunc = func(ctx context.Context, notice domain.DisbursementCompletedNotice) error {
			return errors.New("webhook returned 502")
		}

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.OrganizationsProcessed != 1 || result.ItemsBilled != 1 || result.TotalAmountCents != 500 {
			t.Errorf("counters must not change on notifier failure, got %+v", result)
		}
		if len(result.Errors) != 0 {
			t.Errorf("notifier failures must not appear as billing errors, got %+v", result.Errors)
		}

		d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
		if err != nil {
			t.Fatalf("disbursement not persisted: %v", err)
		}
		if d.Status != domain.DisbursementStatusCompleted {
			t.Errorf("expected status completed, got %s", d.Status)
		}
	})

	t.Run("aborts when the item store is unreachable", func(t *testing.T) {
		m := newBillingMocks()
		m.itemRepo.ListUnbilledFunc = func(ctx context.Context) ([]*domain.BillableItem, error) {
			return nil, errors.New("dial tcp: connection refused")
		}

		result, err := m.usecase().ProcessNewBillables(ctx)
		if err == nil {
			t.Fatalf("expected an error when the store is unreachable")
		}
		if result != nil {
			t.Errorf("expected no result on an aborted pass, got %+v", result)
		}
	})
}

func TestBillingUseCase_ReconcilePending(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a disbursement left pending", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		seeded := pendingDisbursement("disb_1", "key-stuck-1", "org_acme", 1500, 3)
		seededAttempt := seeded.LastAttemptAt
		m.disbRepo.Seed(seeded)

		var markBilledCalls, keyGenCalls int
		m.itemRepo.MarkBilledFunc = func(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error) {
			markBilledCalls++
			return int64(len(ids)), nil
		}
		m.keyGen.NewKeyFunc = func() string {
			keyGenCalls++
			return "never-expected"
		}

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ReconcilePending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 1 {
			t.Fatalf("expected 1 gateway call, got %d", len(calls))
		}
		if calls[0].amountCents != 1500 {
			t.Errorf("retry must use the stored amount, got %d", calls[0].amountCents)
		}
		if !strings.Contains(calls[0].memo, "key-stuck-1") {
			t.Errorf("retry memo %q must carry the stored key", calls[0].memo)
		}
		if keyGenCalls != 0 {
			t.Errorf("recovery must never mint a new idempotency key")
		}
		if markBilledCalls != 0 {
			t.Errorf("recovery must not flag items again")
		}

		d, err := m.disbRepo.GetByID(ctx, "disb_1")
		if err != nil {
			t.Fatalf("disb_1: %v", err)
		}
		if d.Status != domain.DisbursementStatusCompleted {
			t.Errorf("expected status completed, got %s", d.Status)
		}
		if d.TransferID == nil || *d.TransferID != "tx_1" {
			t.Errorf("expected transfer id tx_1, got %v", d.TransferID)
		}
		if !d.LastAttemptAt.After(seededAttempt) {
			t.Errorf("expected the attempt timestamp to advance")
		}

		if result.OrganizationsProcessed != 1 || result.ItemsBilled != 3 || result.TotalAmountCents != 1500 {
			t.Errorf("unexpected counters %+v", result)
		}
		if len(m.notifier.Successes) != 1 || m.notifier.Successes[0].IdempotencyKey != "key-stuck-1" {
			t.Errorf("expected a success notice with the stored key, got %+v", m.notifier.Successes)
		}
	})

	t.Run("every retry reuses the stored idempotency key", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.disbRepo.Seed(pendingDisbursement("disb_1", "key-stable", "org_acme", 900, 2))

		var keyGenCalls int
		m.keyGen.NewKeyFunc = func() string {
			keyGenCalls++
			return "never-expected"
		}

		var calls []transferCall
		recordTransfers(m, &calls, func(transferCall) error {
			return &domain.GatewayError{Message: "internal error", StatusCode: 500}
		})

		uc := m.usecase()
		for i := 0; i < 2; i++ {
			result, err := uc.ReconcilePending(ctx)
			if err != nil {
				t.Fatalf("run %d: unexpected error: %v", i, err)
			}
			if len(result.Errors) != 1 || !result.Errors[0].Retryable {
				t.Fatalf("run %d: expected 1 retryable error, got %+v", i, result.Errors)
			}
		}

		if len(calls) != 2 {
			t.Fatalf("expected 2 gateway calls, got %d", len(calls))
		}
		for i, c := range calls {
			if !strings.Contains(c.memo, "key-stable") {
				t.Errorf("call %d memo %q lost the stored key", i, c.memo)
			}
		}
		if keyGenCalls != 0 {
			t.Errorf("retries must never mint a new idempotency key")
		}

		d, err := m.disbRepo.GetByID(ctx, "disb_1")
		if err != nil {
			t.Fatalf("disb_1: %v", err)
		}
		if d.Status != domain.DisbursementStatusPending {
			t.Errorf("expected status pending after transient failures, got %s", d.Status)
		}
	})

	t.Run("fails the disbursement when the organization is gone", func(t *testing.T) {
		m := newBillingMocks()
		m.disbRepo.Seed(pendingDisbursement("disb_1", "key-orphan", "org_ghost", 700, 1))

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ReconcilePending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 0 {
			t.Errorf("no gateway call possible without an organization")
		}
		if len(result.Errors) != 1 || result.Errors[0].Retryable {
			t.Fatalf("expected a single terminal error, got %+v", result.Errors)
		}

		d, err := m.disbRepo.GetByID(ctx, "disb_1")
		if err != nil {
			t.Fatalf("disb_1: %v", err)
		}
		if d.Status != domain.DisbursementStatusFailed {
			t.Errorf("expected status failed, got %s", d.Status)
		}
		if d.ErrorDetail == nil || !strings.Contains(*d.ErrorDetail, "org_ghost") {
			t.Errorf("error detail should name the missing organization, got %v", d.ErrorDetail)
		}
		if len(m.notifier.Failures) != 1 {
			t.Errorf("expected a failure notice, got %d", len(m.notifier.Failures))
		}
	})

	t.Run("missing slug leaves the row pending", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(&domain.Organization{ID: "org_acme", Name: "Acme Robotics", CreatedAt: time.Now().UTC()})
		m.disbRepo.Seed(pendingDisbursement("disb_1", "key-waiting", "org_acme", 700, 1))

		var calls []transferCall
		recordTransfers(m, &calls, nil)

		result, err := m.usecase().ReconcilePending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(calls) != 0 {
			t.Errorf("expected no gateway calls, got %d", len(calls))
		}
		if len(result.Errors) != 1 || result.Errors[0].Retryable {
			t.Fatalf("expected a single non-retryable entry, got %+v", result.Errors)
		}

		// A backfilled slug lets a later pass finish the row, so it must
		// not be failed here.
		d, err := m.disbRepo.GetByID(ctx, "disb_1")
		if err != nil {
			t.Fatalf("disb_1: %v", err)
		}
		if d.Status != domain.DisbursementStatusPending {
			t.Errorf("expected status pending, got %s", d.Status)
		}
		if len(m.notifier.Failures) != 0 {
			t.Errorf("no notice while the row merely waits for a slug")
		}
	})

	t.Run("permanent gateway failure goes terminal", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.disbRepo.Seed(pendingDisbursement("disb_1", "key-denied", "org_acme", 700, 1))

		var calls []transferCall
		recordTransfers(m, &calls, func(transferCall) error {
			return &domain.GatewayError{Message: "forbidden", StatusCode: 403}
		})

		result, err := m.usecase().ReconcilePending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Errors) != 1 || result.Errors[0].Retryable {
			t.Fatalf("expected a single terminal error, got %+v", result.Errors)
		}
		d, err := m.disbRepo.GetByID(ctx, "disb_1")
		if err != nil {
			t.Fatalf("disb_1: %v", err)
		}
		if d.Status != domain.DisbursementStatusFailed {
			t.Errorf("expected status failed, got %s", d.Status)
		}
		if len(m.notifier.Failures) != 1 {
			t.Errorf("expected a failure notice, got %d", len(m.notifier.Failures))
		}
	})

	t.Run("aborts when the disbursement store is unreachable", func(t *testing.T) {
		m := newBillingMocks()
		m.disbRepo.ListByStatusFunc = func(ctx context.Context, status domain.DisbursementStatus, limit, offset int) ([]*domain.Disbursement, error) {
			return nil, errors.New("dial tcp: connection refused")
		}

		result, err := m.usecase().ReconcilePending(ctx)
		if err == nil {
			t.Fatalf("expected an error when the store is unreachable")
		}
		if result != nil {
			t.Errorf("expected no result on an aborted pass, got %+v", result)
		}
	})
}

// TestBillingUseCase_AtMostOnce walks the interrupted-run sequence: a
// transient failure leaves a pending row, later passes finish it with the
// same key, and nothing is ever charged twice.
func TestBillingUseCase_AtMostOnce(t *testing.T) {
	ctx := context.Background()

	m := newBillingMocks()
	m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
	m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))

	gatewayDown := true
	var calls []transferCall
	recordTransfers(m, &calls, func(transferCall) error {
		if gatewayDown {
			return &domain.GatewayError{Message: "internal error", StatusCode: 500}
		}
		return nil
	})

	uc := m.usecase()

	// First run: the commit lands, the gateway call does not.
	if _, err := uc.ProcessNewBillables(ctx); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 gateway call after the first pass, got %d", len(calls))
	}

	// A second new-work pass sees no unbilled items and must not touch the
	// gateway again.
	if _, err := uc.ProcessNewBillables(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("the covered item was billed again, %d gateway calls", len(calls))
	}

	// Recovery finishes the stuck row once the gateway is back.
	gatewayDown = false
	result, err := uc.ReconcilePending(ctx)
	if err != nil {
		t.Fatalf("recovery pass: %v", err)
	}
	if result.OrganizationsProcessed != 1 || result.ItemsBilled != 1 || result.TotalAmountCents != 500 {
		t.Errorf("unexpected recovery counters %+v", result)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 gateway calls in total, got %d", len(calls))
	}
	if calls[0].memo != calls[1].memo {
		t.Errorf("retry changed the memo: %q vs %q", calls[0].memo, calls[1].memo)
	}
	if !strings.Contains(calls[1].memo, "mock-key-1") {
		t.Errorf("retry memo %q lost the original key", calls[1].memo)
	}

	// Nothing left to do afterwards.
	if _, err := uc.ReconcilePending(ctx); err != nil {
		t.Fatalf("final recovery pass: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("a completed disbursement was submitted again, %d gateway calls", len(calls))
	}

	d, err := m.disbRepo.GetByIdempotencyKey(ctx, "mock-key-1")
	if err != nil {
		t.Fatalf("disbursement: %v", err)
	}
	if d.Status != domain.DisbursementStatusCompleted {
		t.Errorf("expected status completed, got %s", d.Status)
	}
}

func TestBillingUseCase_RunReports(t *testing.T) {
	ctx := context.Background()

	t.Run("records one report per pass", func(t *testing.T) {
		m := newBillingMocks()
		m.orgRepo.Seed(billableOrg("org_acme", "Acme Robotics", "acme"))
		m.itemRepo.Seed(unbilledItem("item_1", "org_acme", 500))

		uc := m.usecase()
		if _, err := uc.ReconcilePending(ctx); err != nil {
			t.Fatalf("recovery pass: %v", err)
		}
		if _, err := uc.ProcessNewBillables(ctx); err != nil {
			t.Fatalf("new-work pass: %v", err)
		}

		runs := m.runRepo.Runs()
		if len(runs) != 2 {
			t.Fatalf("expected 2 run reports, got %d", len(runs))
		}
		if runs[0].Pass != domain.PassReconcilePending {
			t.Errorf("first report should be %s, got %s", domain.PassReconcilePending, runs[0].Pass)
		}
		if runs[1].Pass != domain.PassProcessNewBillables {
			t.Errorf("second report should be %s, got %s", domain.PassProcessNewBillables, runs[1].Pass)
		}
		if runs[1].Result.OrganizationsProcessed != 1 || runs[1].Result.TotalAmountCents != 500 {
			t.Errorf("report does not carry the pass result: %+v", runs[1].Result)
		}
		for _, run := range runs {
			if run.ID == "" {
				t.Errorf("report without an id")
			}
			if run.FinishedAt.Before(run.StartedAt) {
				t.Errorf("report finished before it started")
			}
		}
	})

	t.Run("run history is optional", func(t *testing.T) {
		m := newBillingMocks()
		uc := usecase.NewBillingUseCase(
			m.txManager, m.orgRepo, m.itemRepo, m.disbRepo, nil,
			m.gateway, m.notifier, m.idGen, m.keyGen,
			testFulfillmentAccount, nil,
		)
		if _, err := uc.ProcessNewBillables(ctx); err != nil {
			t.Fatalf("unexpected error without a run repository: %v", err)
		}
	})
}

func TestBillingUseCase_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("reports backlog and stuck rows", func(t *testing.T) {
		m := newBillingMocks()
		billed := unbilledItem("item_3", "org_acme", 300)
		billed.Billed = true
		m.itemRepo.Seed(
			unbilledItem("item_1", "org_acme", 500),
			unbilledItem("item_2", "org_acme", 700),
			billed,
		)
		completed := pendingDisbursement("disb_2", "key-done", "org_acme", 300, 1)
		completed.Status = domain.DisbursementStatusCompleted
		m.disbRepo.Seed(
			pendingDisbursement("disb_1", "key-stuck", "org_acme", 900, 2),
			completed,
		)
		if err := m.runRepo.Create(ctx, &domain.BillingRun{ID: "run_1", Pass: domain.PassProcessNewBillables}); err != nil {
			t.Fatalf("seeding run: %v", err)
		}

		summary, err := m.usecase().Summary(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.UnbilledItems != 2 {
			t.Errorf("expected 2 unbilled items, got %d", summary.UnbilledItems)
		}
		if summary.PendingDisbursements != 1 {
			t.Errorf("expected 1 pending disbursement, got %d", summary.PendingDisbursements)
		}
		if len(summary.RecentRuns) != 1 {
			t.Errorf("expected 1 recent run, got %d", len(summary.RecentRuns))
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		m := newBillingMocks()
		m.itemRepo.CountUnbilledFunc = func(ctx context.Context) (int64, error) {
			return 0, errors.New("dial tcp: connection refused")
		}
		if _, err := m.usecase().Summary(ctx); err == nil {
			t.Fatalf("expected an error when the store is unreachable")
		}
	})
}
