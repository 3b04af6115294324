package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/infrastructure/metrics"
)

// RiskUseCase scores an account's recent activity. The algorithmic score is
// authoritative; the external advisory refines it when reachable and is
// skipped on any failure.
type RiskUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	advisory    AdvisoryClient
	cache       Cache
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewRiskUseCase creates a new RiskUseCase.
func NewRiskUseCase(
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	advisory AdvisoryClient,
	cache Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RiskUseCase {
	return &RiskUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		advisory:    advisory,
		cache:       cache,
		metrics:     m,
		logger:      logger,
	}
}

type riskMetrics struct {
	totalTransactions int
	creditCount       int
	debitCount        int
	maxAmount         decimal.Decimal
	totalCredits      decimal.Decimal
	totalDebits       decimal.Decimal
}

// AssessAccount computes the risk assessment for an account from its most
// recent audit history.
func (uc *RiskUseCase) AssessAccount(ctx context.Context, accountID string) (*domain.RiskAssessment, error) {
	if cached := uc.cachedAssessment(ctx, accountID); cached != nil {
		return cached, nil
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.auditRepo.ListByAccount(ctx, accountID, riskHistoryLimit)
	if err != nil {
		return nil, err
	}

	assessment := &domain.RiskAssessment{AccountID: accountID}

	if len(entries) == 0 {
		assessment.RiskScore = 0
		assessment.RiskLevel = domain.RiskLevelLow
		assessment.Factors = []string{"No transaction history"}
		assessment.Recommendations = recommendationsForLevel(assessment.RiskLevel)
		uc.cacheAssessment(ctx, assessment)
		return assessment, nil
	}

	rm := buildRiskMetrics(entries)
	score, factors := algorithmicScore(account.Balance, rm)

	assessment.RiskScore = score
	assessment.Factors = factors

	if uc.advisory != nil {
		result, err := uc.advisory.Assess(ctx, AdvisoryRequest{
			Balance:           account.Balance,
			TotalTransactions: rm.totalTransactions,
			CreditCount:       rm.creditCount,
			DebitCount:        rm.debitCount,
			MaxAmount:         rm.maxAmount,
			TotalCredits:      rm.totalCredits,
			TotalDebits:       rm.totalDebits,
		})
		if err != nil {
			uc.logger.Warn().Err(err).Str("account_id", accountID).
				Msg("risk advisory unavailable, using algorithmic score only")

			if uc.metrics != nil {
				uc.metrics.AdvisoryFallbacks.Inc()
			}
		} else {
			// Round-half-up average of the two scores.
			assessment.RiskScore = (score + result.Score + 1) / 2
			assessment.Analysis = result.Analysis
		}
	}

	assessment.RiskScore = clampScore(assessment.RiskScore)
	assessment.RiskLevel = domain.RiskLevelForScore(assessment.RiskScore)
	assessment.Recommendations = recommendationsForLevel(assessment.RiskLevel)

	if uc.metrics != nil {
		uc.metrics.RiskAssessments.Inc()
	}

	uc.cacheAssessment(ctx, assessment)

	return assessment, nil
}

func (uc *RiskUseCase) cachedAssessment(ctx context.Context, accountID string) *domain.RiskAssessment {
	if uc.cache == nil {
		return nil
	}

	raw, err := uc.cache.Get(ctx, riskCacheKey(accountID))
	if err != nil || raw == "" {
		return nil
	}

	var assessment domain.RiskAssessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		return nil
	}

	return &assessment
}

func (uc *RiskUseCase) cacheAssessment(ctx context.Context, assessment *domain.RiskAssessment) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(assessment)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, riskCacheKey(assessment.AccountID), string(raw), riskCacheTTL); err != nil {
		uc.logger.Debug().Err(err).Str("account_id", assessment.AccountID).
			Msg("failed to cache risk assessment")
	}
}

func riskCacheKey(accountID string) string {
	return "risk:" + accountID
}

func buildRiskMetrics(entries []*domain.AuditEntry) riskMetrics {
	rm := riskMetrics{
		totalTransactions: len(entries),
		maxAmount:         decimal.Zero,
		totalCredits:      decimal.Zero,
		totalDebits:       decimal.Zero,
	}

	for _, entry := range entries {
		abs := entry.Amount.Abs()
		if abs.GreaterThan(rm.maxAmount) {
			rm.maxAmount = abs
		}

		switch entry.Operation {
		case domain.AuditOperationDebit:
			rm.debitCount++
			rm.totalDebits = rm.totalDebits.Add(abs)
		case domain.AuditOperationCredit, domain.AuditOperationInitialBalance:
			rm.creditCount++
			rm.totalCredits = rm.totalCredits.Add(abs)
		}
	}

	return rm
}

func algorithmicScore(balance decimal.Decimal, rm riskMetrics) (int, []string) {
	score := 0
	var factors []string

	if rm.maxAmount.GreaterThan(decimal.NewFromInt(1000)) {
		score += 20
		factors = append(factors, fmt.Sprintf("Large transaction detected: %s", rm.maxAmount.String()))
	}

	if rm.debitCount > rm.creditCount*2 {
		score += 30
		factors = append(factors, "High ratio of outgoing transactions")
	}

	if balance.IsNegative() {
		score += 40
		factors = append(factors, "Negative balance")
	} else if balance.LessThan(decimal.NewFromInt(100)) {
		score += 10
		factors = append(factors, "Low balance")
	}

	if len(factors) == 0 {
		factors = append(factors, "Normal activity pattern")
	}

	return clampScore(score), factors
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}

	if score > 100 {
		return 100
	}

	return score
}

func recommendationsForLevel(level domain.RiskLevel) []string {
	switch level {
	case domain.RiskLevelCritical:
		return []string{
			"Freeze outgoing transfers pending manual review",
			"Verify account ownership through a secondary channel",
		}
	case domain.RiskLevelHigh:
		return []string{
			"Require manual approval for all outgoing transfers",
			"Review recent transaction history",
		}
	case domain.RiskLevelMedium:
		return []string{
			"Monitor account activity closely",
		}
	default:
		return []string{
			"No action required",
		}
	}
}
