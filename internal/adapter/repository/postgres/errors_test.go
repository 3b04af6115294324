package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"unique violation passes through", &pgconn.PgError{Code: "23505"}, false},
		{"plain error passes through", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if errors.Is(got, domain.ErrRetryable) != tt.retryable {
				t.Errorf("translateError(%v) retryable = %v, want %v", tt.err, !tt.retryable, tt.retryable)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}

	if !isUniqueViolation(err, "accounts_email_key") {
		t.Error("expected match on constraint name")
	}
	if !isUniqueViolation(err, "") {
		t.Error("expected match with no constraint filter")
	}
	if isUniqueViolation(err, "other_key") {
		t.Error("expected no match for different constraint")
	}
	if isUniqueViolation(errors.New("boom"), "") {
		t.Error("plain errors are not unique violations")
	}
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	values := []string{"0", "100", "-42.5", "123456789.0001", "0.01"}

	for _, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", v, err)
		}

		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip of %s gave %s", d, got)
		}
	}
}
