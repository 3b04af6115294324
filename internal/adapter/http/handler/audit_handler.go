package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintra/payledger/internal/adapter/http/dto"
	"github.com/fintra/payledger/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	ListAuditByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditEntry, error)
}

// AuditHandler serves the immutable audit trail.
type AuditHandler struct {
	auditUC AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC AuditService) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// ListByAccount lists the most recent audit entries for an account.
func (h *AuditHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 50)

	entries, err := h.auditUC.ListAuditByAccount(r.Context(), id, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list audit entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditResponse{
		Entries: dto.AuditEntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
