package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/usecase"
	"github.com/fintra/payledger/internal/usecase/mocks"
)

func TestRiskUseCase_AssessAccount(t *testing.T) {
	t.Run("no history scores zero", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()
		accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, nil, nil, nil, zerolog.Nop())

		assessment, err := uc.AssessAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assessment.RiskScore != 0 {
			t.Errorf("expected score 0, got %d", assessment.RiskScore)
		}
		if assessment.RiskLevel != domain.RiskLevelLow {
			t.Errorf("expected LOW, got %s", assessment.RiskLevel)
		}
		if len(assessment.Factors) != 1 || assessment.Factors[0] != "No transaction history" {
			t.Errorf("unexpected factors: %v", assessment.Factors)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, nil, nil, nil, zerolog.Nop())

		_, err := uc.AssessAccount(context.Background(), "nope")
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("algorithmic factors accumulate", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()

		// Balance below 100 (+10), a transaction above 1000 (+20) and three
		// debits against one credit (+30) gives 60, HIGH.
		accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(50)})
		seedAudit(auditRepo, "acc-1",
			entry(domain.AuditOperationCredit, 2000),
			entry(domain.AuditOperationDebit, -800),
			entry(domain.AuditOperationDebit, -700),
			entry(domain.AuditOperationDebit, -450),
		)

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, nil, nil, nil, zerolog.Nop())

		assessment, err := uc.AssessAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assessment.RiskScore != 60 {
			t.Errorf("expected score 60, got %d", assessment.RiskScore)
		}
		if assessment.RiskLevel != domain.RiskLevelHigh {
			t.Errorf("expected HIGH, got %s", assessment.RiskLevel)
		}
		if len(assessment.Factors) != 3 {
			t.Errorf("expected 3 factors, got %v", assessment.Factors)
		}
	})

	t.Run("advisory refines the score", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()
		advisory := mocks.NewMockAdvisoryClient(ctrl)

		accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(50)})
		seedAudit(auditRepo, "acc-1", entry(domain.AuditOperationCredit, 500))

		// Algorithmic score is 10 (low balance); advisory says 31; the
		// average rounds half up to 21.
		advisory.EXPECT().Assess(gomock.Any(), gomock.Any()).
			Return(&usecase.AdvisoryResult{Score: 31, Analysis: "moderate volatility"}, nil)

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, advisory, nil, nil, zerolog.Nop())

		assessment, err := uc.AssessAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assessment.RiskScore != 21 {
			t.Errorf("expected score 21, got %d", assessment.RiskScore)
		}
		if assessment.Analysis != "moderate volatility" {
			t.Errorf("unexpected analysis: %q", assessment.Analysis)
		}
	})

	t.Run("advisory failure falls back to algorithmic score", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()
		advisory := mocks.NewMockAdvisoryClient(ctrl)

		accRepo.Put(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(50)})
		seedAudit(auditRepo, "acc-1", entry(domain.AuditOperationCredit, 500))

		advisory.EXPECT().Assess(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, advisory, nil, nil, zerolog.Nop())

		assessment, err := uc.AssessAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("advisory failure must not fail the assessment: %v", err)
		}
		if assessment.RiskScore != 10 {
			t.Errorf("expected algorithmic score 10, got %d", assessment.RiskScore)
		}
		if assessment.Analysis != "" {
			t.Errorf("expected no analysis, got %q", assessment.Analysis)
		}
	})

	t.Run("cache hit skips recomputation", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accRepo := mocks.NewMockAccountRepository()
		auditRepo := mocks.NewMockAuditRepository()
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), "risk:acc-1").
			Return(`{"account_id":"acc-1","risk_score":42,"risk_level":"MEDIUM","factors":["cached"],"recommendations":[]}`, nil)

		uc := usecase.NewRiskUseCase(accRepo, auditRepo, nil, cache, nil, zerolog.Nop())

		assessment, err := uc.AssessAccount(context.Background(), "acc-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assessment.RiskScore != 42 {
			t.Errorf("expected cached score 42, got %d", assessment.RiskScore)
		}
	})
}

func seedAudit(repo *mocks.MockAuditRepository, accountID string, entries ...*domain.AuditEntry) {
	for _, e := range entries {
		e.AccountID = accountID
		_ = repo.Create(context.Background(), nil, e)
	}
}

func entry(op domain.AuditOperation, amount int64) *domain.AuditEntry {
	return &domain.AuditEntry{
		Operation: op,
		Amount:    decimal.NewFromInt(amount),
	}
}
