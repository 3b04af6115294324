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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/fintra/payledger/internal/adapter/http"
	"github.com/fintra/payledger/internal/adapter/http/handler"
	"github.com/fintra/payledger/internal/adapter/repository/postgres"
	redisrepo "github.com/fintra/payledger/internal/adapter/repository/redis"
	infraredis "github.com/fintra/payledger/internal/infrastructure/redis"
	"github.com/fintra/payledger/internal/usecase"
	"github.com/fintra/payledger/tests/testutil"
)

const testApprovalThreshold = 50000

type testEnv struct {
	DB     *testutil.TestDB
	Router http.Handler
	Redis  *redis.Client

	TransferUC *usecase.TransferUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()

	dedup := redisrepo.NewDedupGuard(redisClient)
	cache := redisrepo.NewCache(redisClient)

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, transferRepo, auditRepo, idGen, nil)
	transferUC := usecase.NewTransferUseCase(
		txManager, accountRepo, transferRepo, auditRepo, dedup, idGen, nil,
		decimal.NewFromInt(testApprovalThreshold), time.Minute,
	)
	riskUC := usecase.NewRiskUseCase(accountRepo, auditRepo, nil, cache, nil, zerolog.Nop())
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, auditRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		AuditHandler:    handler.NewAuditHandler(reconciliationUC),
		RiskHandler:     handler.NewRiskHandler(riskUC),
		LedgerHandler:   handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          zerolog.Nop(),
	})

	return &testEnv{
		DB:         testDB,
		Router:     router,
		Redis:      redisClient,
		TransferUC: transferUC,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, body)
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, r)
	return w
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}
