package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

// MockOrganizationRepository is a mock implementation of OrganizationRepository.
type MockOrganizationRepository struct {
	mu   sync.RWMutex
	orgs map[string]*domain.Organization

	CreateFunc            func(ctx context.Context, org *domain.Organization) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Organization, error)
	GetByIDsFunc          func(ctx context.Context, ids []string) ([]*domain.Organization, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Organization, error)
	UpdateAccountSlugFunc func(ctx context.Context, id string, slug *string, updatedAt time.Time) error
}

func NewMockOrganizationRepository() *MockOrganizationRepository {
	return &MockOrganizationRepository{
		orgs: make(map[string]*domain.Organization),
	}
}

// Seed stores an organization directly, bypassing any CreateFunc override.
func (m *MockOrganizationRepository) Seed(orgs ...*domain.Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, org := range orgs {
		m.orgs[org.ID] = org
	}
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, org)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[org.ID]; ok {
		return domain.ErrDuplicateOrganization
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if org, ok := m.orgs[id]; ok {
		return org, nil
	}
	return nil, domain.ErrOrganizationNotFound
}

func (m *MockOrganizationRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orgs []*domain.Organization
	for _, id := range ids {
		if org, ok := m.orgs[id]; ok {
			orgs = append(orgs, org)
		}
	}
	return orgs, nil
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Organization, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orgs []*domain.Organization
	for _, org := range m.orgs {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

func (m *MockOrganizationRepository) UpdateAccountSlug(ctx context.Context, id string, slug *string, updatedAt time.Time) error {
	if m.UpdateAccountSlugFunc != nil {
		return m.UpdateAccountSlugFunc(ctx, id, slug, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return domain.ErrOrganizationNotFound
	}
	org.AccountSlug = slug
	org.UpdatedAt = updatedAt
	return nil
}

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.BillableItem

	CreateFunc             func(ctx context.Context, item *domain.BillableItem) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.BillableItem, error)
	ListUnbilledFunc       func(ctx context.Context) ([]*domain.BillableItem, error)
	MarkBilledFunc         func(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error)
	ListByOrganizationFunc func(ctx context.Context, orgID string, limit, offset int) ([]*domain.BillableItem, error)
	CountUnbilledFunc      func(ctx context.Context) (int64, error)
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]*domain.BillableItem),
	}
}

// Seed stores items directly, bypassing any CreateFunc override.
func (m *MockItemRepository) Seed(items ...*domain.BillableItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.ID] = item
	}
}

func (m *MockItemRepository) Create(ctx context.Context, item *domain.BillableItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*domain.BillableItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, domain.ErrItemNotFound
}

func (m *MockItemRepository) ListUnbilled(ctx context.Context) ([]*domain.BillableItem, error) {
	if m.ListUnbilledFunc != nil {
		return m.ListUnbilledFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.BillableItem
	for _, item := range m.items {
		if !item.Billed {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].OrganizationID != items[j].OrganizationID {
			return items[i].OrganizationID < items[j].OrganizationID
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (m *MockItemRepository) MarkBilled(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error) {
	if m.MarkBilledFunc != nil {
		return m.MarkBilledFunc(ctx, tx, ids, billedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, id := range ids {
		if item, ok := m.items[id]; ok && !item.Billed {
			item.Billed = true
			at := billedAt
			item.BilledAt = &at
			updated++
		}
	}
	return updated, nil
}

func (m *MockItemRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.BillableItem, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, orgID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.BillableItem
	for _, item := range m.items {
		if item.OrganizationID == orgID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MockItemRepository) CountUnbilled(ctx context.Context) (int64, error) {
	if m.CountUnbilledFunc != nil {
		return m.CountUnbilledFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, item := range m.items {
		if !item.Billed {
			count++
		}
	}
	return count, nil
}

// MockDisbursementRepository is a mock implementation of DisbursementRepository.
type MockDisbursementRepository struct {
	mu    sync.RWMutex
	disbs map[string]*domain.Disbursement

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, d *domain.Disbursement) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Disbursement, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, key string) (*domain.Disbursement, error)
	ListByStatusFunc        func(ctx context.Context, status domain.DisbursementStatus, limit, offset int) ([]*domain.Disbursement, error)
	MarkCompletedFunc       func(ctx context.Context, id string, transferID string, completedAt time.Time) error
	MarkFailedFunc          func(ctx context.Context, id string, errorDetail string, failedAt time.Time) error
	MarkAttemptedFunc       func(ctx context.Context, id string, attemptedAt time.Time) error
	ListByOrganizationFunc  func(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error)
}

func NewMockDisbursementRepository() *MockDisbursementRepository {
	return &MockDisbursementRepository{
		disbs: make(map[string]*domain.Disbursement),
	}
}

// Seed stores disbursements directly, bypassing any CreateFunc override.
func (m *MockDisbursementRepository) Seed(disbs ...*domain.Disbursement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range disbs {
		m.disbs[d.ID] = d
	}
}

func (m *MockDisbursementRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.Disbursement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.disbs {
		if existing.IdempotencyKey == d.IdempotencyKey {
			return domain.ErrDuplicateDisbursement
		}
	}
	m.disbs[d.ID] = d
	return nil
}

func (m *MockDisbursementRepository) GetByID(ctx context.Context, id string) (*domain.Disbursement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.disbs[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDisbursementNotFound
}

func (m *MockDisbursementRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Disbursement, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.disbs {
		if d.IdempotencyKey == key {
			return d, nil
		}
	}
	return nil, domain.ErrDisbursementNotFound
}

func (m *MockDisbursementRepository) ListByStatus(ctx context.Context, status domain.DisbursementStatus, limit, offset int) ([]*domain.Disbursement, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var disbs []*domain.Disbursement
	for _, d := range m.disbs {
		if d.Status == status {
			disbs = append(disbs, d)
		}
	}
	sort.Slice(disbs, func(i, j int) bool {
		if !disbs[i].CreatedAt.Equal(disbs[j].CreatedAt) {
			return disbs[i].CreatedAt.Before(disbs[j].CreatedAt)
		}
		return disbs[i].ID < disbs[j].ID
	})
	return disbs, nil
}

func (m *MockDisbursementRepository) MarkCompleted(ctx context.Context, id string, transferID string, completedAt time.Time) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, id, transferID, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.disbs[id]
	if !ok {
		return domain.ErrDisbursementNotFound
	}
	d.Status = domain.DisbursementStatusCompleted
	d.TransferID = &transferID
	at := completedAt
	d.CompletedAt = &at
	return nil
}

func (m *MockDisbursementRepository) MarkFailed(ctx context.Context, id string, errorDetail string, failedAt time.Time) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, errorDetail, failedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.disbs[id]
	if !ok {
		return domain.ErrDisbursementNotFound
	}
	d.Status = domain.DisbursementStatusFailed
	d.ErrorDetail = &errorDetail
	d.LastAttemptAt = failedAt
	return nil
}

func (m *MockDisbursementRepository) MarkAttempted(ctx context.Context, id string, attemptedAt time.Time) error {
	if m.MarkAttemptedFunc != nil {
		return m.MarkAttemptedFunc(ctx, id, attemptedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.disbs[id]
	if !ok {
		return domain.ErrDisbursementNotFound
	}
	d.LastAttemptAt = attemptedAt
	return nil
}

func (m *MockDisbursementRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, orgID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var disbs []*domain.Disbursement
	for _, d := range m.disbs {
		if d.OrganizationID == orgID {
			disbs = append(disbs, d)
		}
	}
	sort.Slice(disbs, func(i, j int) bool { return disbs[i].CreatedAt.After(disbs[j].CreatedAt) })
	return disbs, nil
}

// MockRunRepository is a mock implementation of RunRepository.
type MockRunRepository struct {
	mu   sync.RWMutex
	runs []*domain.BillingRun

	CreateFunc     func(ctx context.Context, run *domain.BillingRun) error
	ListRecentFunc func(ctx context.Context, limit int) ([]*domain.BillingRun, error)
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{}
}

func (m *MockRunRepository) Create(ctx context.Context, run *domain.BillingRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *MockRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.BillingRun, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var runs []*domain.BillingRun
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, m.runs[i])
	}
	return runs, nil
}

// Runs returns everything recorded so far, oldest first.
func (m *MockRunRepository) Runs() []*domain.BillingRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.BillingRun(nil), m.runs...)
}

// MockPaymentGateway is a mock implementation of PaymentGateway.
type MockPaymentGateway struct {
	mu      sync.Mutex
	counter int

	CreateTransferFunc func(ctx context.Context, sourceSlug, destination string, amountCents int64, memo string) (*domain.TransferReceipt, error)
	ListTransfersFunc  func(ctx context.Context, accountSlug string, limit int) ([]*domain.TransferRecord, error)
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) CreateTransfer(ctx context.Context, sourceSlug, destination string, amountCents int64, memo string) (*domain.TransferReceipt, error) {
	if m.CreateTransferFunc != nil {
		return m.CreateTransferFunc(ctx, sourceSlug, destination, amountCents, memo)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return &domain.TransferReceipt{TransferID: fmt.Sprintf("mock-transfer-%d", m.counter)}, nil
}

func (m *MockPaymentGateway) ListTransfers(ctx context.Context, accountSlug string, limit int) ([]*domain.TransferRecord, error) {
	if m.ListTransfersFunc != nil {
		return m.ListTransfersFunc(ctx, accountSlug, limit)
	}
	return nil, nil
}

// MockNotifier is a mock implementation of Notifier. By default it records
// every notice it receives.
type MockNotifier struct {
	mu        sync.Mutex
	Successes []domain.DisbursementCompletedNotice
	Failures  []domain.DisbursementFailedNotice

	NotifySuccessFunc func(ctx context.Context, notice domain.DisbursementCompletedNotice) error
	NotifyFailureFunc func(ctx context.Context, notice domain.DisbursementFailedNotice) error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifySuccess(ctx context.Context, notice domain.DisbursementCompletedNotice) error {
	if m.NotifySuccessFunc != nil {
		return m.NotifySuccessFunc(ctx, notice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, notice)
	return nil
}

func (m *MockNotifier) NotifyFailure(ctx context.Context, notice domain.DisbursementFailedNotice) error {
	if m.NotifyFailureFunc != nil {
		return m.NotifyFailureFunc(ctx, notice)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, notice)
	return nil
}

// MockRunLock is a mock implementation of RunLock.
type MockRunLock struct {
	mu   sync.Mutex
	held bool

	AcquireFunc func(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseFunc func(ctx context.Context) error
}

func NewMockRunLock() *MockRunLock {
	return &MockRunLock{}
}

func (m *MockRunLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *MockRunLock) Release(ctx context.Context) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockKeyGenerator is a mock implementation of KeyGenerator.
type MockKeyGenerator struct {
	NewKeyFunc func() string
	counter    int
	mu         sync.Mutex
}

func NewMockKeyGenerator() *MockKeyGenerator {
	return &MockKeyGenerator{}
}

func (m *MockKeyGenerator) NewKey() string {
	if m.NewKeyFunc != nil {
		return m.NewKeyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-key-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
