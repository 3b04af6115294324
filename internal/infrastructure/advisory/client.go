package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/fintra/payledger/internal/usecase"
)

const defaultScore = 50

var (
	scorePattern    = regexp.MustCompile(`SCORE:\s*(\d+)`)
	analysisPattern = regexp.MustCompile(`ANALYSIS:\s*(.+)`)
)

// Client implements usecase.AdvisoryClient against the external risk
// advisory's prompt endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new advisory client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Result string `json:"result"`
}

// Assess sends the account metrics to the advisory and parses its free-text
// answer. The advisory replies in prose; the SCORE and ANALYSIS markers are
// extracted by pattern, and a missing score falls back to a neutral 50.
func (c *Client) Assess(ctx context.Context, req usecase.AdvisoryRequest) (*usecase.AdvisoryResult, error) {
	prompt := fmt.Sprintf(
		"Analyze this account for financial risk. Balance: %s. "+
			"Transactions: %d total, %d credits, %d debits. "+
			"Largest transaction: %s. Total credits: %s. Total debits: %s. "+
			"Respond with SCORE: <0-100> and ANALYSIS: <one sentence>.",
		req.Balance.String(),
		req.TotalTransactions,
		req.CreditCount,
		req.DebitCount,
		req.MaxAmount.String(),
		req.TotalCredits.String(),
		req.TotalDebits.String(),
	)

	body, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/prompt", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisory returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var pr promptResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("advisory returned malformed response: %w", err)
	}

	return parseResult(pr.Result), nil
}

func parseResult(text string) *usecase.AdvisoryResult {
	result := &usecase.AdvisoryResult{Score: defaultScore}

	if m := scorePattern.FindStringSubmatch(text); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			result.Score = clamp(score)
		}
	}

	if m := analysisPattern.FindStringSubmatch(text); m != nil {
		result.Analysis = m[1]
	}

	return result
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}

	if score > 100 {
		return 100
	}

	return score
}
