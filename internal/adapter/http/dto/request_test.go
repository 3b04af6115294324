package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/usecase"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Name:           "Alice",
		Email:          "alice@example.com",
		InitialBalance: decimal.NewFromInt(1000),
	}

	got := req.ToUseCaseInput()

	if got.Name != "Alice" || got.Email != "alice@example.com" || !got.InitialBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("ToUseCaseInput() = %+v", got)
	}
}

func TestCreateTransferRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateTransferRequest{
		OriginAccountID:      "acc-1",
		DestinationAccountID: "acc-2",
		Amount:               decimal.RequireFromString("12.34"),
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateTransferInput{
		OriginAccountID:      "acc-1",
		DestinationAccountID: "acc-2",
		Amount:               decimal.RequireFromString("12.34"),
	}

	if got.OriginAccountID != want.OriginAccountID || got.DestinationAccountID != want.DestinationAccountID || !got.Amount.Equal(want.Amount) {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateTransferRequest_DecodesDecimalString(t *testing.T) {
	var req CreateTransferRequest
	raw := `{"origin_account_id":"acc-1","destination_account_id":"acc-2","amount":"99.99"}`

	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Amount.Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("expected 99.99, got %s", req.Amount)
	}
}
