package domain

// RiskLevel buckets a numeric risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskLevelForScore maps a 0-100 score to a level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelCritical
	case score >= 60:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskAssessment is the advisory output for one account. It never affects
// ledger correctness.
type RiskAssessment struct {
	AccountID       string    `json:"account_id"`
	RiskScore       int       `json:"risk_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Factors         []string  `json:"factors"`
	Analysis        string    `json:"analysis,omitempty"`
	Recommendations []string  `json:"recommendations"`
}
