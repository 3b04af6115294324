package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/fintra/payledger/internal/adapter/http/dto"
)

func TestAccount_Create(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Name:           "Alice",
		Email:          "alice@example.com",
		InitialBalance: dec("1000"),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	resp := decodeBody[dto.AccountResponse](t, w)
	if resp.ID == "" {
		t.Fatal("expected generated account id")
	}
	if !resp.Balance.Equal(dec("1000")) {
		t.Fatalf("expected balance 1000, got %s", resp.Balance)
	}
	if !resp.AvailableBalance.Equal(dec("1000")) {
		t.Fatalf("expected available balance 1000, got %s", resp.AvailableBalance)
	}

	// Opening balance leaves a reconstructable trail.
	if got := env.DB.CountAuditEntries(context.Background(), resp.ID); got != 1 {
		t.Fatalf("expected 1 audit entry for initial balance, got %d", got)
	}
}

func TestAccount_CreateZeroBalanceHasNoAuditEntry(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Name:  "Bob",
		Email: "bob@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	resp := decodeBody[dto.AccountResponse](t, w)
	if got := env.DB.CountAuditEntries(context.Background(), resp.ID); got != 0 {
		t.Fatalf("expected no audit entries, got %d", got)
	}
}

func TestAccount_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	req := dto.CreateAccountRequest{Name: "Alice", Email: "alice@example.com"}

	if w := env.do(t, http.MethodPost, "/api/v1/accounts", req); w.Code != http.StatusCreated {
		t.Fatalf("first creation failed: %d %s", w.Code, w.Body.String())
	}

	req.Name = "Alice Again"
	w := env.do(t, http.MethodPost, "/api/v1/accounts", req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
	}
}

func TestAccount_GetReportsAvailableBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	origin := env.DB.CreateTestAccount(ctx, "Origin", "origin@example.com", dec("100000"))
	dest := env.DB.CreateTestAccount(ctx, "Dest", "dest@example.com", dec("0"))

	// Above the approval threshold: stays pending and reserves funds.
	w := env.do(t, http.MethodPost, "/api/v1/transfers", dto.CreateTransferRequest{
		OriginAccountID:      origin.ID,
		DestinationAccountID: dest.ID,
		Amount:               dec("60000"),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("transfer creation failed: %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/accounts/"+origin.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	resp := decodeBody[dto.AccountResponse](t, w)
	if !resp.Balance.Equal(dec("100000")) {
		t.Fatalf("expected stored balance 100000, got %s", resp.Balance)
	}
	if !resp.AvailableBalance.Equal(dec("40000")) {
		t.Fatalf("expected available balance 40000, got %s", resp.AvailableBalance)
	}
}

func TestAccount_GetNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/accounts/no-such-account", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, w.Code, w.Body.String())
	}
}
