package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintra/payledger/internal/domain"
)

// RiskService defines the behavior needed by RiskHandler.
type RiskService interface {
	AssessAccount(ctx context.Context, accountID string) (*domain.RiskAssessment, error)
}

// RiskHandler serves account risk assessments.
type RiskHandler struct {
	riskUC RiskService
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(riskUC RiskService) *RiskHandler {
	return &RiskHandler{riskUC: riskUC}
}

// Assess returns the current risk assessment for an account.
func (h *RiskHandler) Assess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	assessment, err := h.riskUC.AssessAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to assess account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}
