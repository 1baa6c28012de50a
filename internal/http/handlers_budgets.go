package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.budgets.GetBudget(r.Context(), userID(r), r.PathValue("yearMonth"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	yearMonth := r.PathValue("yearMonth")
	b := req.toBudget(userID(r), yearMonth)
	if err := s.budgets.SaveBudget(r.Context(), userID(r), b); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := s.budgets.GetBudget(r.Context(), userID(r), yearMonth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.DeleteBudget(r.Context(), userID(r), r.PathValue("yearMonth")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudgetCategory(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	err := s.budgets.SetCategory(r.Context(), userID(r),
		r.PathValue("yearMonth"), r.PathValue("category"), core.CoerceAmount(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveBudgetCategory(w http.ResponseWriter, r *http.Request) {
	err := s.budgets.RemoveCategory(r.Context(), userID(r),
		r.PathValue("yearMonth"), r.PathValue("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := s.budgets.Performance(r.Context(), userID(r), r.PathValue("yearMonth"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}
