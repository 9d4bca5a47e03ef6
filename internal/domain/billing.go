package domain

import (
	"sort"
	"time"
)

// Billing pass names, used in run reports and metrics labels.
const (
	PassReconcilePending    = "reconcile_pending"
	PassProcessNewBillables = "process_new_billables"
)

// BillingGroup is the set of unbilled items belonging to one organization,
// captured as a snapshot at the start of a billing pass. One group produces
// at most one Disbursement per pass.
type BillingGroup struct {
	OrganizationID string
	Items          []*BillableItem
}

// TotalCents sums the cost of all items in the group.
func (g *BillingGroup) TotalCents() int64 {
	var total int64
	for _, item := range g.Items {
		total += item.CostCents
	}
	return total
}

// ItemIDs returns the identifiers of the captured items. The billed flag is
// set for exactly this set, never re-queried, so items that show up after
// the snapshot wait for the next pass.
func (g *BillingGroup) ItemIDs() []string {
	ids := make([]string, len(g.Items))
	for i, item := range g.Items {
		ids[i] = item.ID
	}
	return ids
}

// GroupBillables buckets items by owning organization. Groups come back in
// ascending organization-ID order so a pass always processes organizations
// in a deterministic sequence.
func GroupBillables(items []*BillableItem) []*BillingGroup {
	byOrg := make(map[string]*BillingGroup)

	var orgIDs []string
	for _, item := range items {
		group, ok := byOrg[item.OrganizationID]
		if !ok {
			group = &BillingGroup{OrganizationID: item.OrganizationID}
			byOrg[item.OrganizationID] = group
			orgIDs = append(orgIDs, item.OrganizationID)
		}
		group.Items = append(group.Items, item)
	}

	sort.Strings(orgIDs)

	groups := make([]*BillingGroup, 0, len(orgIDs))
	for _, id := range orgIDs {
		groups = append(groups, byOrg[id])
	}
	return groups
}

// RunError records one organization's failure during a billing pass.
// Retryable means the next pass will pick the work up again without
// operator intervention.
type RunError struct {
	OrganizationID string `json:"organization_id"`
	Error          string `json:"error"`
	Retryable      bool   `json:"retryable"`
}

// RunResult summarizes one billing pass. Counters cover completed
// disbursements only; every other outcome appears in Errors.
type RunResult struct {
	OrganizationsProcessed int        `json:"organizations_processed"`
	ItemsBilled            int        `json:"items_billed"`
	TotalAmountCents       int64      `json:"total_amount_cents"`
	Errors                 []RunError `json:"errors"`
}

// AddError appends a failure entry for an organization.
func (r *RunResult) AddError(orgID string, err error, retryable bool) {
	r.Errors = append(r.Errors, RunError{
		OrganizationID: orgID,
		Error:          err.Error(),
		Retryable:      retryable,
	})
}

// RecordCompleted counts a disbursement that reached completed this pass.
func (r *RunResult) RecordCompleted(d *Disbursement) {
	r.OrganizationsProcessed++
	r.ItemsBilled += d.ItemCount
	r.TotalAmountCents += d.AmountCents
}

// BillingRun is the persisted report of one billing pass, kept for
// operational history.
type BillingRun struct {
	ID         string
	Pass       string
	StartedAt  time.Time
	FinishedAt time.Time
	Result     RunResult
}
