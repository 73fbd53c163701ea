package handler

import (
	"net/http"
	"time"

	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

// ReportSource exposes the latest reconciliation report.
type ReportSource interface {
	LastReport() *usecase.ReconciliationReport
}

// ReconciliationHandler serves the last reconciliation run.
type ReconciliationHandler struct {
	source ReportSource
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(source ReportSource) *ReconciliationHandler {
	return &ReconciliationHandler{source: source}
}

type discrepancyResponse struct {
	AccountID         string `json:"account_id"`
	AccountNumber     string `json:"account_number"`
	Currency          string `json:"currency"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
}

type reportResponse struct {
	TotalAccounts      int                   `json:"total_accounts"`
	ReconciledAccounts int                   `json:"reconciled_accounts"`
	Discrepancies      []discrepancyResponse `json:"discrepancies"`
	CheckedAt          time.Time             `json:"checked_at"`
}

// Last returns the most recent report, or 404 before the first run.
func (h *ReconciliationHandler) Last(w http.ResponseWriter, r *http.Request) {
	report := h.source.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "no reconciliation run yet", "")
		return
	}

	resp := reportResponse{
		TotalAccounts:      report.TotalAccounts,
		ReconciledAccounts: report.ReconciledAccounts,
		Discrepancies:      make([]discrepancyResponse, 0, len(report.Discrepancies)),
		CheckedAt:          report.CheckedAt,
	}
	for _, d := range report.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, discrepancyResponse{
			AccountID:         d.AccountID,
			AccountNumber:     d.AccountNumber,
			Currency:          d.Currency,
			RecordedBalance:   d.RecordedBalance.String(),
			CalculatedBalance: d.CalculatedBalance.String(),
			Difference:        d.Difference.String(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
