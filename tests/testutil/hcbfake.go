package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// FakeTransfer is one transfer recorded by the fake platform.
type FakeTransfer struct {
	ID          string
	Memo        string
	AmountCents int64
	Destination string
}

// FakeHCB serves just enough of the HCB V4 API for the gateway client. It
// reproduces the platform behavior billing relies on: resubmitting a
// transfer whose memo was already seen on the source account returns the
// original transfer instead of minting a second one.
type FakeHCB struct {
	mu          sync.Mutex
	transfers   map[string][]FakeTransfer
	createCalls int

	failStatus int
	failBody   string
	failSlugs  map[string]fakeFailure
}

type fakeFailure struct {
	status int
	body   string
}

// NewFakeHCB creates an empty fake platform.
func NewFakeHCB() *FakeHCB {
	return &FakeHCB{
		transfers: make(map[string][]FakeTransfer),
		failSlugs: make(map[string]fakeFailure),
	}
}

// Server starts an HTTP server for the fake. Point the gateway client's
// BaseURL at its URL and close it when the test finishes.
func (f *FakeHCB) Server() *httptest.Server {
	r := chi.NewRouter()
	r.Post("/organizations/{slug}/transfers", f.handleCreateTransfer)
	r.Get("/organizations/{slug}/transfers", f.handleListTransfers)
	r.Get("/organizations/{slug}", f.handleGetOrganization)

	return httptest.NewServer(r)
}

// FailWith makes every transfer creation respond with the given status until
// ClearFail is called.
func (f *FakeHCB) FailWith(status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
	f.failBody = message
}

// FailSlugWith makes transfer creation fail for one source account only,
// leaving every other account healthy.
func (f *FakeHCB) FailSlugWith(slug string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSlugs[slug] = fakeFailure{status: status, body: message}
}

// ClearFail restores normal transfer creation for all accounts.
func (f *FakeHCB) ClearFail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = 0
	f.failBody = ""
	f.failSlugs = make(map[string]fakeFailure)
}

// Reset clears all recorded transfers and failure injection.
func (f *FakeHCB) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = make(map[string][]FakeTransfer)
	f.failSlugs = make(map[string]fakeFailure)
	f.failStatus = 0
	f.failBody = ""
	f.createCalls = 0
}

// CreateCalls reports how many transfer creations the platform has seen,
// including rejected ones.
func (f *FakeHCB) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

// Transfers returns a copy of the transfers recorded for one source account.
func (f *FakeHCB) Transfers(slug string) []FakeTransfer {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]FakeTransfer, len(f.transfers[slug]))
	copy(out, f.transfers[slug])
	return out
}

// AddTransfer plants a transfer on an account, as if an earlier run had made
// it before crashing.
func (f *FakeHCB) AddTransfer(slug, memo string, amountCents int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := FakeTransfer{
		ID:          fmt.Sprintf("txn_%d", f.countLocked()+1),
		Memo:        memo,
		AmountCents: amountCents,
	}
	f.transfers[slug] = append(f.transfers[slug], t)
	return t.ID
}

func (f *FakeHCB) countLocked() int {
	n := 0
	for _, ts := range f.transfers {
		n += len(ts)
	}
	return n
}

type fakeTransferBody struct {
	ID          string `json:"id"`
	Memo        string `json:"memo"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

func (f *FakeHCB) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req struct {
		ToOrganizationID string `json:"to_organization_id"`
		AmountCents      int64  `json:"amount_cents"`
		Name             string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++

	if failure, ok := f.failSlugs[slug]; ok {
		writeFakeJSON(w, failure.status, map[string]string{"error": failure.body})
		return
	}
	if f.failStatus != 0 {
		writeFakeJSON(w, f.failStatus, map[string]string{"error": f.failBody})
		return
	}

	// Memo dedup: a resubmission resolves to the original transfer.
	for _, t := range f.transfers[slug] {
		if t.Memo == req.Name {
			writeFakeJSON(w, http.StatusOK, fakeTransferBody{
				ID:          t.ID,
				Memo:        t.Memo,
				AmountCents: t.AmountCents,
			})
			return
		}
	}

	t := FakeTransfer{
		ID:          fmt.Sprintf("txn_%d", f.countLocked()+1),
		Memo:        req.Name,
		AmountCents: req.AmountCents,
		Destination: req.ToOrganizationID,
	}
	f.transfers[slug] = append(f.transfers[slug], t)

	writeFakeJSON(w, http.StatusCreated, fakeTransferBody{
		ID:          t.ID,
		Memo:        t.Memo,
		AmountCents: t.AmountCents,
	})
}

func (f *FakeHCB) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	f.mu.Lock()
	defer f.mu.Unlock()

	ts := f.transfers[slug]
	out := make([]fakeTransferBody, 0, len(ts))
	for i := len(ts) - 1; i >= 0; i-- {
		out = append(out, fakeTransferBody{
			ID:          ts[i].ID,
			Memo:        ts[i].Memo,
			AmountCents: ts[i].AmountCents,
		})
	}

	writeFakeJSON(w, http.StatusOK, out)
}

func (f *FakeHCB) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	writeFakeJSON(w, http.StatusOK, map[string]string{
		"id":   "org_" + slug,
		"slug": slug,
		"name": slug,
	})
}

func writeFakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
