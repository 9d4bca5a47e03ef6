package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/infrastructure/metrics"
)

// BillingUseCase owns the two billing passes: recovering disbursements an
// earlier run left in pending, then billing new work. Both entry points are
// idempotent and independently callable; scheduling belongs to the caller.
//
// The safety contract running through both passes: the pending disbursement
// row and the billed flags on its items are committed together, before the
// gateway is ever called. A crash at any later point leaves a pending row
// that ReconcilePending finishes with the same stored idempotency key, so
// no item set can ever be charged twice.
type BillingUseCase struct {
	txManager TransactionManager
	orgRepo   OrganizationRepository
	itemRepo  ItemRepository
	disbRepo  DisbursementRepository
	runRepo   RunRepository
	gateway   PaymentGateway
	notifier  Notifier
	idGen     IDGenerator
	keyGen    KeyGenerator
	metrics   *metrics.Metrics

	// fulfillmentAccount receives every disbursement. Organization id or slug.
	fulfillmentAccount string
}

// NewBillingUseCase creates a new BillingUseCase. runRepo and metrics may be
// nil; run history and metrics are then skipped.
func NewBillingUseCase(
	txManager TransactionManager,
	orgRepo OrganizationRepository,
	itemRepo ItemRepository,
	disbRepo DisbursementRepository,
	runRepo RunRepository,
	gateway PaymentGateway,
	notifier Notifier,
	idGen IDGenerator,
	keyGen KeyGenerator,
	fulfillmentAccount string,
	metrics *metrics.Metrics,
) *BillingUseCase {
	return &BillingUseCase{
		txManager:          txManager,
		orgRepo:            orgRepo,
		itemRepo:           itemRepo,
		disbRepo:           disbRepo,
		runRepo:            runRepo,
		gateway:            gateway,
		notifier:           notifier,
		idGen:              idGen,
		keyGen:             keyGen,
		fulfillmentAccount: fulfillmentAccount,
		metrics:            metrics,
	}
}

// ReconcilePending re-attempts every disbursement stuck in pending. It runs
// before new work is billed so interrupted attempts resolve first. Each
// retry reuses the stored amount, memo and idempotency key; the gateway
// resolves a duplicate submission to the original transfer.
//
// Only a failure to reach the store at all aborts the pass. Everything else
// is recorded per organization on the returned result.
func (uc *BillingUseCase) ReconcilePending(ctx context.Context) (*domain.RunResult, error) {
	started := time.Now().UTC()

	pending, err := uc.disbRepo.ListByStatus(ctx, domain.DisbursementStatusPending, PendingBatchSize, 0)
	if err != nil {
		return nil, fmt.Errorf("loading pending disbursements: %w", err)
	}

	result := &domain.RunResult{}
	for _, d := range pending {
		uc.reconcileOne(ctx, d, result)
	}

	uc.finishPass(ctx, domain.PassReconcilePending, started, result)
	return result, nil
}

// reconcileOne retries a single pending disbursement. Failures land on
// result; nothing propagates, so one stuck row never blocks the rest.
func (uc *BillingUseCase) reconcileOne(ctx context.Context, d *domain.Disbursement, result *domain.RunResult) {
	org, err := uc.orgRepo.GetByID(ctx, d.OrganizationID)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			// The organization is gone, so the transfer can never be made.
			uc.markFailed(ctx, d, nil, fmt.Errorf("%w: %s", domain.ErrOrganizationNotFound, d.OrganizationID), result)
			return
		}
		result.AddError(d.OrganizationID, err, true)
		return
	}

	// Left pending on purpose: a backfilled slug lets a later pass finish
	// this row without operator involvement.
	if !org.Billable() {
		result.AddError(org.ID, domain.ErrMissingAccountSlug, false)
		return
	}

	if err := uc.disbRepo.MarkAttempted(ctx, d.ID, time.Now().UTC()); err != nil {
		result.AddError(org.ID, err, true)
		return
	}

	// Same amount, same memo, same key as every earlier attempt.
	receipt, err := uc.gateway.CreateTransfer(ctx, org.Slug(), uc.fulfillmentAccount, d.AmountCents, d.Memo())
	uc.recordGateway(err)

	switch domain.ClassifyGateway(err) {
	case domain.GatewayOutcomeSuccess:
		uc.complete(ctx, d, org, receipt.TransferID, result)
	case domain.GatewayOutcomePermanent:
		uc.markFailed(ctx, d, org, err, result)
	default:
		// Transient: stays pending for the next run. No notification,
		// routine retries should not page anyone.
		result.AddError(org.ID, err, true)
	}
}

// ProcessNewBillables groups unbilled items by organization and creates one
// disbursement per group. The item set is snapshotted once at the start;
// items appearing mid-pass wait for the next one.
func (uc *BillingUseCase) ProcessNewBillables(ctx context.Context) (*domain.RunResult, error) {
	started := time.Now().UTC()

	items, err := uc.itemRepo.ListUnbilled(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unbilled items: %w", err)
	}

	groups := domain.GroupBillables(items)

	result := &domain.RunResult{}
	for _, group := range groups {
		uc.billGroup(ctx, group, result)
	}

	uc.finishPass(ctx, domain.PassProcessNewBillables, started, result)
	return result, nil
}

// billGroup bills one organization's captured items. All failure handling is
// local to the group.
func (uc *BillingUseCase) billGroup(ctx context.Context, group *domain.BillingGroup, result *domain.RunResult) {
	org, err := uc.orgRepo.GetByID(ctx, group.OrganizationID)
	if err != nil {
		result.AddError(group.OrganizationID, err, !errors.Is(err, domain.ErrOrganizationNotFound))
		return
	}

	// No slug means no account to bill. Creating the disbursement would
	// only manufacture a guaranteed-failing call, so the group is skipped
	// whole and its items stay unbilled until the slug is backfilled.
	if !org.Billable() {
		result.AddError(org.ID, domain.ErrMissingAccountSlug, false)
		return
	}

	d := &domain.Disbursement{
		ID:             uc.idGen.Generate(),
		IdempotencyKey: uc.keyGen.NewKey(),
		OrganizationID: org.ID,
		AmountCents:    group.TotalCents(),
		ItemCount:      len(group.Items),
		Status:         domain.DisbursementStatusPending,
	}

	if err := d.Validate(); err != nil {
		result.AddError(org.ID, err, false)
		return
	}

	if err := uc.persistPending(ctx, d, group); err != nil {
		// Neither the disbursement nor the billed flags were committed;
		// the items are picked up again next pass.
		result.AddError(org.ID, err, true)
		return
	}

	if uc.metrics != nil {
		uc.metrics.DisbursementsCreated.Inc()
	}

	// Flags and pending row are durable; only now may the gateway be
	// called. A crash from here on leaves the row for ReconcilePending.
	receipt, err := uc.gateway.CreateTransfer(ctx, org.Slug(), uc.fulfillmentAccount, d.AmountCents, d.Memo())
	uc.recordGateway(err)

	switch domain.ClassifyGateway(err) {
	case domain.GatewayOutcomeSuccess:
		uc.complete(ctx, d, org, receipt.TransferID, result)
	case domain.GatewayOutcomePermanent:
		// Terminal. The items stay billed under this disbursement; the
		// failure notice carries what an operator needs to finish the
		// transfer by hand.
		uc.markFailed(ctx, d, org, err, result)
	default:
		// Transient: the pending row retries with the same key next run.
		result.AddError(org.ID, err, true)
	}
}

// persistPending writes the pending disbursement and flags its items billed
// in one transaction. This commit must land before any gateway call: if it
// fails nothing is charged, and if the process dies right after, recovery
// finds the pending row and finishes the job with the stored key.
func (uc *BillingUseCase) persistPending(ctx context.Context, d *domain.Disbursement, group *domain.BillingGroup) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	d.CreatedAt = now
	d.LastAttemptAt = now

	if err := uc.disbRepo.Create(txCtx, tx, d); err != nil {
		return err
	}

	ids := group.ItemIDs()
	updated, err := uc.itemRepo.MarkBilled(txCtx, tx, ids, now)
	if err != nil {
		return err
	}

	// Fewer rows than captured means another writer billed part of the
	// snapshot. Abandon the whole group rather than double-cover items.
	if updated != int64(len(ids)) {
		return fmt.Errorf("flagged %d of %d captured items, snapshot raced another writer", updated, len(ids))
	}

	return tx.Commit(txCtx)
}

// complete moves a disbursement to completed and sends the success notice.
func (uc *BillingUseCase) complete(ctx context.Context, d *domain.Disbursement, org *domain.Organization, transferID string, result *domain.RunResult) {
	now := time.Now().UTC()
	if err := uc.disbRepo.MarkCompleted(ctx, d.ID, transferID, now); err != nil {
		// The transfer exists but the row still says pending. The next
		// recovery attempt resubmits with the same key and the gateway
		// resolves it to this transfer, not a second one.
		result.AddError(d.OrganizationID, fmt.Errorf("recording completion of %s: %w", d.ID, err), true)
		return
	}

	result.RecordCompleted(d)

	if uc.metrics != nil {
		uc.metrics.DisbursementsCompleted.Inc()
		uc.metrics.ItemsBilled.Add(float64(d.ItemCount))
		uc.metrics.AmountCents.Add(float64(d.AmountCents))
	}

	notice := domain.DisbursementCompletedNotice{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		DisbursementID:   d.ID,
		AmountCents:      d.AmountCents,
		ItemCount:        d.ItemCount,
		TransferID:       transferID,
		IdempotencyKey:   d.IdempotencyKey,
	}
	if err := uc.notifier.NotifySuccess(ctx, notice); err != nil {
		// Billing state is committed; delivery problems never unwind it.
		if uc.metrics != nil {
			uc.metrics.NotifyFailures.Inc()
		}
	}
}

// markFailed moves a disbursement to failed and sends the failure notice.
// org may be nil when the organization itself is gone.
func (uc *BillingUseCase) markFailed(ctx context.Context, d *domain.Disbursement, org *domain.Organization, cause error, result *domain.RunResult) {
	now := time.Now().UTC()
	if err := uc.disbRepo.MarkFailed(ctx, d.ID, cause.Error(), now); err != nil {
		result.AddError(d.OrganizationID, fmt.Errorf("marking disbursement %s failed: %w", d.ID, err), true)
		return
	}

	result.AddError(d.OrganizationID, cause, false)

	if uc.metrics != nil {
		uc.metrics.DisbursementsFailed.Inc()
	}

	notice := domain.DisbursementFailedNotice{
		OrganizationID: d.OrganizationID,
		DisbursementID: d.ID,
		AmountCents:    d.AmountCents,
		ItemCount:      d.ItemCount,
		Reason:         cause.Error(),
		IdempotencyKey: d.IdempotencyKey,
	}
	if org != nil {
		notice.OrganizationName = org.Name
	}
	if err := uc.notifier.NotifyFailure(ctx, notice); err != nil {
		if uc.metrics != nil {
			uc.metrics.NotifyFailures.Inc()
		}
	}
}

// finishPass records metrics and the run report. Report persistence is best
// effort; a pass never fails because history could not be written.
func (uc *BillingUseCase) finishPass(ctx context.Context, pass string, started time.Time, result *domain.RunResult) {
	finished := time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.BillingRuns.WithLabelValues(pass).Inc()
		uc.metrics.BillingRunDuration.WithLabelValues(pass).Observe(finished.Sub(started).Seconds())
	}

	if uc.runRepo == nil {
		return
	}

	run := &domain.BillingRun{
		ID:         uc.idGen.Generate(),
		Pass:       pass,
		StartedAt:  started,
		FinishedAt: finished,
		Result:     *result,
	}
	_ = uc.runRepo.Create(ctx, run)
}

func (uc *BillingUseCase) recordGateway(err error) {
	if uc.metrics != nil {
		uc.metrics.GatewayRequests.WithLabelValues(string(domain.ClassifyGateway(err))).Inc()
	}
}

// BillingSummary is a point-in-time view of billing state.
type BillingSummary struct {
	UnbilledItems        int64
	PendingDisbursements int
	RecentRuns           []*domain.BillingRun
}

// Summary reports unbilled backlog, stuck disbursements and recent runs.
func (uc *BillingUseCase) Summary(ctx context.Context) (*BillingSummary, error) {
	unbilled, err := uc.itemRepo.CountUnbilled(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := uc.disbRepo.ListByStatus(ctx, domain.DisbursementStatusPending, PendingBatchSize, 0)
	if err != nil {
		return nil, err
	}

	summary := &BillingSummary{
		UnbilledItems:        unbilled,
		PendingDisbursements: len(pending),
	}

	if uc.runRepo != nil {
		runs, err := uc.runRepo.ListRecent(ctx, 20)
		if err != nil {
			return nil, err
		}
		summary.RecentRuns = runs
	}

	return summary, nil
}
