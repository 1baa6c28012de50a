package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}

	var saved core.Transaction
	switch tx.Type {
	case core.Income:
		saved, err = s.ledger.AddIncome(r.Context(), userID(r), tx)
	default:
		// The expense path also owns the invalid-type error: AddExpense
		// forces the type, so anything unrecognized surfaces there.
		if tx.Type != "" && tx.Type != core.Expense {
			writeError(w, r, core.ErrInvalidType)
			return
		}
		saved, err = s.ledger.AddExpense(r.Context(), userID(r), tx)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context(), userID(r), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.GetTransaction(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = r.PathValue("id")

	if err := s.ledger.UpdateTransaction(r.Context(), userID(r), tx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.Summary(r.Context(), userID(r), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TotalIncome   string `json:"totalIncome"`
		TotalExpenses string `json:"totalExpenses"`
		Balance       string `json:"balance"`
		SavingsRate   int    `json:"savingsRate"`
	}{
		TotalIncome:   core.Display(sum.TotalIncome),
		TotalExpenses: core.Display(sum.TotalExpenses),
		Balance:       core.Display(sum.Balance),
		SavingsRate:   sum.SavingsRate(),
	})
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	byCat, err := s.ledger.ExpensesByCategory(r.Context(), userID(r), parseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make(map[string]string, len(byCat))
	for category, amount := range byCat {
		out[category] = core.Display(amount)
	}
	writeJSON(w, http.StatusOK, out)
}
