package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/adapter/http/dto"
	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/usecase"
)

type transferServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	getFn     func(ctx context.Context, id string) (*domain.Transfer, error)
	approveFn func(ctx context.Context, id string) (*domain.Transfer, error)
	rejectFn  func(ctx context.Context, id string) (*domain.Transfer, error)
	listFn    func(ctx context.Context, accountID string) ([]*domain.Transfer, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.getFn(ctx, id)
}

func (s *transferServiceStub) ApproveTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.approveFn(ctx, id)
}

func (s *transferServiceStub) RejectTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.rejectFn(ctx, id)
}

func (s *transferServiceStub) ListTransfersByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
	return s.listFn(ctx, accountID)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestTransferHandler_Create_Success(t *testing.T) {
	transfer := &domain.Transfer{ID: "tr-1", Amount: decimal.NewFromInt(100), State: domain.TransferStateConfirmed}
	var captured usecase.CreateTransferInput

	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			captured = input
			return transfer, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		OriginAccountID:      "acc-1",
		DestinationAccountID: "acc-2",
		Amount:               decimal.NewFromInt(100),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(body))
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OriginAccountID != "acc-1" || captured.DestinationAccountID != "acc-2" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ID != "tr-1" || resp.State != "confirmed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader([]byte("{not json")))
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"duplicate", domain.ErrDuplicateTransfer, http.StatusConflict},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"missing account", domain.ErrAccountNotFound, http.StatusNotFound},
		{"contention", domain.ErrRetryable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.CreateTransferRequest{
				OriginAccountID:      "acc-1",
				DestinationAccountID: "acc-2",
				Amount:               decimal.NewFromInt(100),
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(body))
			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestTransferHandler_Approve(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewTransferHandler(&transferServiceStub{
			approveFn: func(ctx context.Context, id string) (*domain.Transfer, error) {
				return &domain.Transfer{ID: id, State: domain.TransferStateConfirmed}, nil
			},
		})

		rec := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/transfers/tr-1/approve", nil), "id", "tr-1")
		h.Approve(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("not pending", func(t *testing.T) {
		h := NewTransferHandler(&transferServiceStub{
			approveFn: func(ctx context.Context, id string) (*domain.Transfer, error) {
				return nil, domain.ErrTransferNotPending
			},
		})

		rec := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/transfers/tr-1/approve", nil), "id", "tr-1")
		h.Approve(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestTransferHandler_Reject(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		rejectFn: func(ctx context.Context, id string) (*domain.Transfer, error) {
			return &domain.Transfer{ID: id, State: domain.TransferStateRejected}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/transfers/tr-1/reject", nil), "id", "tr-1")
	h.Reject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.State != "rejected" {
		t.Fatalf("expected rejected, got %s", resp.State)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transfer, error) {
			return nil, domain.ErrTransferNotFound
		},
	})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/transfers/nope", nil), "id", "nope")
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferHandler_ListByAccount(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		listFn: func(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
			return []*domain.Transfer{
				{ID: "tr-1", OriginAccountID: accountID},
				{ID: "tr-2", DestinationAccountID: accountID},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acc-1/transfers", nil), "id", "acc-1")
	h.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransfersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected total 2, got %d", resp.Total)
	}
}
