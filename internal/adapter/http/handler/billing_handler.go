package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hackclub/hermes/internal/adapter/http/dto"
	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

// BillingService defines the behavior needed by BillingHandler.
type BillingService interface {
	ReconcilePending(ctx context.Context) (*domain.RunResult, error)
	ProcessNewBillables(ctx context.Context) (*domain.RunResult, error)
	Summary(ctx context.Context) (*usecase.BillingSummary, error)
}

// BillingHandler triggers billing runs and reports billing state.
type BillingHandler struct {
	billingUC BillingService
	lock      usecase.RunLock
	lockTTL   time.Duration
}

// NewBillingHandler creates a new BillingHandler. The lock is the same one
// the background worker takes, so a manual run and a scheduled run never
// overlap; pass nil to run unlocked.
func NewBillingHandler(billingUC BillingService, lock usecase.RunLock, lockTTL time.Duration) *BillingHandler {
	if lockTTL == 0 {
		lockTTL = 15 * time.Minute
	}
	return &BillingHandler{billingUC: billingUC, lock: lock, lockTTL: lockTTL}
}

// Run executes one full billing cycle: reconcile stuck disbursements, then
// bill new items. Reconciliation failing means the store is unreachable, so
// the new-billables pass is not attempted.
func (h *BillingHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.lock != nil {
		acquired, err := h.lock.Acquire(ctx, h.lockTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to acquire run lock", err.Error())
			return
		}
		if !acquired {
			writeError(w, http.StatusConflict, "billing run already in progress", domain.ErrRunInProgress.Error())
			return
		}
		defer h.lock.Release(ctx)
	}

	reconciled, err := h.billingUC.ReconcilePending(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "reconcile pass failed", err.Error())
		return
	}

	fresh, err := h.billingUC.ProcessNewBillables(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "billing pass failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunReportResponse{
		ReconcilePending: *reconciled,
		NewBillables:     *fresh,
	})
}

// Summary reports the unbilled backlog, pending disbursements and recent
// run history.
func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.billingUC.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load billing summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(summary))
}
