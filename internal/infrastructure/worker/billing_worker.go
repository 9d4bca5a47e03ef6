package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/infrastructure/metrics"
)

// BillingService runs the two billing passes.
type BillingService interface {
	ReconcilePending(ctx context.Context) (*domain.RunResult, error)
	ProcessNewBillables(ctx context.Context) (*domain.RunResult, error)
}

// RunLock serializes billing ticks across instances. Acquire returns false
// when another holder has the lock.
type RunLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Retrier re-runs an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// BillingWorker drives billing on a fixed interval. Each tick takes the run
// lock, reconciles pending disbursements, then bills new work.
type BillingWorker struct {
	billing  BillingService
	lock     RunLock
	retrier  Retrier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	lockTTL  time.Duration
}

// Config for BillingWorker.
type Config struct {
	Billing  BillingService
	Lock     RunLock // Optional; nil runs without cross-instance locking
	Retrier  Retrier // Optional; nil runs each pass once
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration // Time between billing ticks
	LockTTL  time.Duration // Run lock expiry, must outlast a full tick
}

// NewBillingWorker creates a new BillingWorker.
func NewBillingWorker(cfg Config) *BillingWorker {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &BillingWorker{
		billing:  cfg.Billing,
		lock:     cfg.Lock,
		retrier:  cfg.Retrier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		interval: cfg.Interval,
		lockTTL:  cfg.LockTTL,
	}
}

// Start begins the billing worker.
// It runs continuously until the context is cancelled.
func (w *BillingWorker) Start(ctx context.Context) error {
	w.logger.Info("billing worker started",
		slog.Duration("interval", w.interval),
		slog.Duration("lock_ttl", w.lockTTL))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run immediately on start
	if err := w.runPasses(ctx); err != nil {
		w.logger.Error("error running billing passes on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("billing worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.runPasses(ctx); err != nil {
				w.logger.Error("error running billing passes", slog.String("error", err.Error()))
			}
		}
	}
}

// runPasses executes one billing tick under the run lock. A tick that
// cannot get the lock is skipped; the holder is already doing the work.
func (w *BillingWorker) runPasses(ctx context.Context) error {
	if w.lock != nil {
		acquired, err := w.lock.Acquire(ctx, w.lockTTL)
		if err != nil {
			return err
		}
		if !acquired {
			w.logger.Info("skipping billing tick, run lock held elsewhere")
			if w.metrics != nil {
				w.metrics.RunLockBusy.Inc()
			}
			return nil
		}

		defer func() {
			if err := w.lock.Release(ctx); err != nil {
				w.logger.Error("failed to release run lock", slog.String("error", err.Error()))
			}
		}()
	}

	// Stuck disbursements resolve before any new ones are minted. When the
	// store is unreachable the second pass would fail the same way, so skip it.
	reconcile, err := w.runPass(ctx, domain.PassReconcilePending, w.billing.ReconcilePending)
	if err != nil {
		return err
	}
	w.logResult(domain.PassReconcilePending, reconcile)

	fresh, err := w.runPass(ctx, domain.PassProcessNewBillables, w.billing.ProcessNewBillables)
	if err != nil {
		return err
	}
	w.logResult(domain.PassProcessNewBillables, fresh)

	return nil
}

func (w *BillingWorker) runPass(
	ctx context.Context,
	pass string,
	run func(context.Context) (*domain.RunResult, error),
) (*domain.RunResult, error) {
	var result *domain.RunResult

	op := func() error {
		var err error
		result, err = run(ctx)
		return err
	}

	if w.retrier == nil {
		if err := op(); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := w.retrier.Retry(ctx, op); err != nil {
		w.logger.Error("billing pass aborted",
			slog.String("pass", pass),
			slog.String("error", err.Error()))
		return nil, err
	}

	return result, nil
}

func (w *BillingWorker) logResult(pass string, result *domain.RunResult) {
	w.logger.Info("billing pass finished",
		slog.String("pass", pass),
		slog.Int("organizations", result.OrganizationsProcessed),
		slog.Int("items_billed", result.ItemsBilled),
		slog.Int64("amount_cents", result.TotalAmountCents),
		slog.Int("errors", len(result.Errors)))

	for _, entry := range result.Errors {
		w.logger.Warn("billing pass error",
			slog.String("pass", pass),
			slog.String("organization_id", entry.OrganizationID),
			slog.Bool("retryable", entry.Retryable),
			slog.String("error", entry.Error))
	}
}
