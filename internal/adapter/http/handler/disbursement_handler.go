package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackclub/hermes/internal/adapter/http/dto"
	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

// DisbursementService defines the behavior needed by DisbursementHandler.
type DisbursementService interface {
	GetDisbursement(ctx context.Context, id string) (*domain.Disbursement, error)
	ListDisbursements(ctx context.Context, input usecase.ListDisbursementsInput) ([]*domain.Disbursement, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error)
	VerifyDisbursement(ctx context.Context, id string) (*usecase.VerifyResult, error)
}

// DisbursementHandler handles disbursement HTTP requests.
type DisbursementHandler struct {
	disbUC DisbursementService
}

// NewDisbursementHandler creates a new DisbursementHandler.
func NewDisbursementHandler(disbUC DisbursementService) *DisbursementHandler {
	return &DisbursementHandler{disbUC: disbUC}
}

// Get retrieves a disbursement by ID.
func (h *DisbursementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing disbursement ID", "")
		return
	}

	d, err := h.disbUC.GetDisbursement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get disbursement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DisbursementFromDomain(d))
}

// List lists disbursements in one status, oldest first. Status defaults to
// pending so the bare endpoint answers "what is stuck right now".
func (h *DisbursementHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.DisbursementStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.DisbursementStatusPending
	}

	switch status {
	case domain.DisbursementStatusPending, domain.DisbursementStatusCompleted, domain.DisbursementStatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "invalid status", "status must be pending, completed or failed")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	ds, err := h.disbUC.ListDisbursements(r.Context(), usecase.ListDisbursementsInput{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list disbursements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListDisbursementsResponse{
		Disbursements: dto.DisbursementsFromDomain(ds),
		Total:         int64(len(ds)),
	})
}

// ListByOrganization lists an organization's disbursements, newest first.
func (h *DisbursementHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "missing organization ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	ds, err := h.disbUC.ListByOrganization(r.Context(), orgID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list disbursements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListDisbursementsResponse{
		Disbursements: dto.DisbursementsFromDomain(ds),
		Total:         int64(len(ds)),
	})
}

// Verify checks the disbursement's transfer against the ledger by memo and
// amount. Failures reaching the ledger surface as 502 so operators can tell
// a gateway outage apart from a genuine mismatch.
func (h *DisbursementHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing disbursement ID", "")
		return
	}

	result, err := h.disbUC.VerifyDisbursement(r.Context(), id)
	if err != nil {
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			writeError(w, http.StatusBadGateway, "ledger lookup failed", err.Error())
			return
		}
		writeError(w, mapDomainError(err), "failed to verify disbursement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyFromUseCase(result))
}
