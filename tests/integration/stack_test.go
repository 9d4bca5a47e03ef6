package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackclub/hermes/internal/adapter/gateway/hcb"
	adaptershttp "github.com/hackclub/hermes/internal/adapter/http"
	"github.com/hackclub/hermes/internal/adapter/http/dto"
	"github.com/hackclub/hermes/internal/adapter/http/handler"
	"github.com/hackclub/hermes/internal/adapter/notifier"
	"github.com/hackclub/hermes/internal/adapter/repository/postgres"
	redisrepo "github.com/hackclub/hermes/internal/adapter/repository/redis"
	infraredis "github.com/hackclub/hermes/internal/infrastructure/redis"
	"github.com/hackclub/hermes/internal/usecase"
	"github.com/hackclub/hermes/tests/testutil"
)

// fulfillmentSlug is the platform account every test disbursement targets.
const fulfillmentSlug = "hermes-fulfillment"

// stack wires the full service against a test database, a real redis and a
// fake payment platform. The HTTP surface is exercised through the router,
// the same way production traffic reaches it.
type stack struct {
	db       *testutil.TestDB
	fake     *testutil.FakeHCB
	router   http.Handler
	billing  *usecase.BillingUseCase
	runLock  *redisrepo.RunLock
	orgRepo  *postgres.OrganizationRepository
	itemRepo *postgres.ItemRepository
	disbRepo *postgres.DisbursementRepository
}

func newStack(t *testing.T) *stack {
	t.Helper()

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	fake := testutil.NewFakeHCB()
	srv := fake.Server()
	t.Cleanup(srv.Close)

	gateway := hcb.NewClient(hcb.Config{
		BaseURL:     srv.URL,
		AccessToken: "test-token",
		Timeout:     5 * time.Second,
	})

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	disbRepo := postgres.NewDisbursementRepository(pool)
	runRepo := postgres.NewRunRepository(pool)
	idGen := postgres.NewULIDGenerator()
	keyGen := postgres.NewUUIDKeyGenerator()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)
	runLock := redisrepo.NewRunLock(redisClient)

	billingUC := usecase.NewBillingUseCase(
		txManager,
		orgRepo,
		itemRepo,
		disbRepo,
		runRepo,
		gateway,
		notifier.NewLog(zerolog.Nop()),
		idGen,
		keyGen,
		fulfillmentSlug,
		nil,
	)
	orgUC := usecase.NewOrganizationUseCase(orgRepo, idGen)
	itemUC := usecase.NewItemUseCase(itemRepo, orgRepo, idGen)
	disbUC := usecase.NewDisbursementUseCase(disbRepo, orgRepo, gateway)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		OrganizationHandler: handler.NewOrganizationHandler(orgUC),
		ItemHandler:         handler.NewItemHandler(itemUC),
		DisbursementHandler: handler.NewDisbursementHandler(disbUC),
		BillingHandler:      handler.NewBillingHandler(billingUC, runLock, time.Minute),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		Logger:              zerolog.Nop(),
		IdempotencyStore:    idempotencyStore,
	})

	return &stack{
		db:       testDB,
		fake:     fake,
		router:   router,
		billing:  billingUC,
		runLock:  runLock,
		orgRepo:  orgRepo,
		itemRepo: itemRepo,
		disbRepo: disbRepo,
	}
}

// reset returns the database, the fake platform and the run lock to a clean
// slate, so subtests never see each other's state.
func (s *stack) reset(ctx context.Context, t *testing.T) {
	t.Helper()
	s.db.TruncateAll(ctx)
	s.fake.Reset()
	_ = s.runLock.Release(ctx)
}

// doJSON runs one request through the router. A non-nil out receives the
// decoded body of a 2xx response.
func (s *stack) doJSON(t *testing.T, method, path string, payload, out any) int {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, body)
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)

	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "response: %s", w.Body.String())
	}

	return w.Code
}

// runBilling drives both passes through the manual run endpoint.
func (s *stack) runBilling(t *testing.T) dto.RunReportResponse {
	t.Helper()

	var report dto.RunReportResponse
	code := s.doJSON(t, http.MethodPost, "/api/v1/billing/run", nil, &report)
	require.Equal(t, http.StatusOK, code)
	return report
}
