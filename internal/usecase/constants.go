package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultApprovalThreshold is the amount above which a transfer requires
	// explicit approval before funds move.
	DefaultApprovalThreshold = "50000"

	// DefaultDedupTTL is how long a transfer request fingerprint suppresses
	// identical requests.
	DefaultDedupTTL = 5 * time.Minute

	// riskHistoryLimit is how many recent audit entries feed a risk assessment.
	riskHistoryLimit = 100

	// riskCacheTTL is how long an assessment is served from cache.
	riskCacheTTL = time.Minute
)
