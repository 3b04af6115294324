package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payledger-cli",
		Short: "PayLedger CLI tool",
		Long:  `A command line interface for interacting with the PayLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PayLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(accountCreateCmd(), accountGetCmd())

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}
	transferCmd.AddCommand(transferCreateCmd(), transferGetCmd(), transferApproveCmd(), transferRejectCmd(), transferListCmd())

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())

	rootCmd.AddCommand(accountCmd, transferCmd, ledgerCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCreateCmd() *cobra.Command {
	var name, email, balance string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"name":            name,
				"email":           email,
				"initial_balance": balance,
			}
			body, status, err := doRequest(http.MethodPost, "/api/v1/accounts", payload)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("account creation failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Account holder name")
	cmd.Flags().StringVar(&email, "email", "", "Account holder email")
	cmd.Flags().StringVar(&balance, "balance", "0", "Initial balance")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func accountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Get account details with available balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("account lookup failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}
}

func transferCreateCmd() *cobra.Command {
	var from, to, amount string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a transfer between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"origin_account_id":      from,
				"destination_account_id": to,
				"amount":                 amount,
			}
			body, status, err := doRequest(http.MethodPost, "/api/v1/transfers", payload)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return fmt.Errorf("transfer failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Origin account ID")
	cmd.Flags().StringVar(&to, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func transferGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <transfer-id>",
		Short: "Get transfer details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodGet, "/api/v1/transfers/"+args[0], nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("transfer lookup failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}
}

func transferApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <transfer-id>",
		Short: "Approve a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodPatch, "/api/v1/transfers/"+args[0]+"/approve", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("approval failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}
}

func transferRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <transfer-id>",
		Short: "Reject a pending transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodPatch, "/api/v1/transfers/"+args[0]+"/reject", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("rejection failed (status %d): %s", status, body)
			}
			printJSON(json.RawMessage(body))
			return nil
		},
	}
}

func transferListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <account-id>",
		Short: "List transfers involving an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/transfers", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("listing failed (status %d): %s", status, body)
			}

			var result struct {
				Transfers []struct {
					ID                   string `json:"id"`
					OriginAccountID      string `json:"origin_account_id"`
					DestinationAccountID string `json:"destination_account_id"`
					Amount               string `json:"amount"`
					State                string `json:"state"`
				} `json:"transfers"`
				Total int `json:"total"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("%-28s %-28s %-28s %12s %-10s\n", "ID", "FROM", "TO", "AMOUNT", "STATE")
			for _, tr := range result.Transfers {
				fmt.Printf("%-28s %-28s %-28s %12s %-10s\n",
					truncate(tr.ID, 28), truncate(tr.OriginAccountID, 28), truncate(tr.DestinationAccountID, 28),
					tr.Amount, tr.State)
			}
			fmt.Printf("Total: %d\n", result.Total)
			return nil
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that stored balances match the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, status, err := doRequest(http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("consistency check failed (status %d): %s", status, body)
			}

			var report struct {
				Consistent      bool            `json:"consistent"`
				AccountsChecked int             `json:"accounts_checked"`
				Drift           json.RawMessage `json:"drift"`
			}
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if report.Consistent {
				fmt.Printf("Consistency check PASSED (%d accounts)\n", report.AccountsChecked)
				return nil
			}

			fmt.Printf("Consistency check FAILED (%d accounts)\n", report.AccountsChecked)
			printJSON(report.Drift)
			os.Exit(1)
			return nil
		},
	}
}

func doRequest(method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
