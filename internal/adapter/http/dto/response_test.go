package dto

import (
	"testing"
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

func TestOrganizationFromDomain(t *testing.T) {
	now := time.Now()
	slug := "acme-club"
	org := &domain.Organization{
		ID:          "org_1",
		Name:        "Acme Club",
		AccountSlug: &slug,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	resp := OrganizationFromDomain(org)
	if resp.ID != org.ID || resp.AccountSlug == nil || *resp.AccountSlug != slug || !resp.Billable {
		t.Fatalf("unexpected organization response: %+v", resp)
	}

	org.AccountSlug = nil
	if OrganizationFromDomain(org).Billable {
		t.Fatal("organization without slug should not be billable")
	}

	list := OrganizationsFromDomain([]*domain.Organization{org})
	if len(list) != 1 || list[0].ID != org.ID {
		t.Fatalf("OrganizationsFromDomain returned %+v", list)
	}
}

func TestItemFromDomain(t *testing.T) {
	now := time.Now()
	item := &domain.BillableItem{
		ID:             "itm_1",
		OrganizationID: "org_1",
		CostCents:      700,
		Billed:         true,
		CreatedAt:      now,
		BilledAt:       &now,
	}

	resp := ItemFromDomain(item)
	if resp.ID != item.ID || resp.CostCents != 700 || !resp.Billed || resp.BilledAt == nil {
		t.Fatalf("unexpected item response: %+v", resp)
	}

	list := ItemsFromDomain([]*domain.BillableItem{item})
	if len(list) != 1 || list[0].ID != item.ID {
		t.Fatalf("ItemsFromDomain returned %+v", list)
	}
}

func TestDisbursementFromDomain(t *testing.T) {
	now := time.Now()
	transferID := "txn_9"
	d := &domain.Disbursement{
		ID:             "dsb_1",
		IdempotencyKey: "key-1",
		OrganizationID: "org_1",
		AmountCents:    1500,
		ItemCount:      3,
		Status:         domain.DisbursementStatusCompleted,
		TransferID:     &transferID,
		CreatedAt:      now,
		LastAttemptAt:  now,
		CompletedAt:    &now,
	}

	resp := DisbursementFromDomain(d)
	if resp.Status != "completed" || resp.TransferID == nil || *resp.TransferID != transferID {
		t.Fatalf("unexpected disbursement response: %+v", resp)
	}

	list := DisbursementsFromDomain([]*domain.Disbursement{d})
	if len(list) != 1 || list[0].ID != d.ID {
		t.Fatalf("DisbursementsFromDomain returned %+v", list)
	}
}

func TestVerifyFromUseCase(t *testing.T) {
	now := time.Now()
	result := &usecase.VerifyResult{
		Disbursement: &domain.Disbursement{ID: "dsb_1", Status: domain.DisbursementStatusCompleted},
		Matched:      true,
		Transfer: &domain.TransferRecord{
			TransferID:  "txn_9",
			Memo:        "Hermes Fulfillment // 3 items // key-1",
			AmountCents: 1500,
		},
		CheckedAt: now,
	}

	resp := VerifyFromUseCase(result)
	if !resp.Matched || resp.Transfer == nil || resp.Transfer.TransferID != "txn_9" {
		t.Fatalf("unexpected verify response: %+v", resp)
	}

	result.Transfer = nil
	result.Matched = false
	resp = VerifyFromUseCase(result)
	if resp.Matched || resp.Transfer != nil {
		t.Fatalf("unmatched verify should omit transfer: %+v", resp)
	}
}

func TestSummaryFromUseCase(t *testing.T) {
	run := &domain.BillingRun{
		ID:         "run_1",
		Pass:       domain.PassProcessNewBillables,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Result:     domain.RunResult{OrganizationsProcessed: 2, ItemsBilled: 5, TotalAmountCents: 2500},
	}

	summary := &usecase.BillingSummary{
		UnbilledItems:        7,
		PendingDisbursements: 1,
		RecentRuns:           []*domain.BillingRun{run},
	}

	resp := SummaryFromUseCase(summary)
	if resp.UnbilledItems != 7 || resp.PendingDisbursements != 1 {
		t.Fatalf("unexpected summary response: %+v", resp)
	}
	if len(resp.RecentRuns) != 1 || resp.RecentRuns[0].Pass != domain.PassProcessNewBillables {
		t.Fatalf("unexpected recent runs: %+v", resp.RecentRuns)
	}
	if resp.RecentRuns[0].Result.ItemsBilled != 5 {
		t.Fatalf("run result not carried through: %+v", resp.RecentRuns[0].Result)
	}
}
