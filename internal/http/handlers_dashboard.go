package http

import (
	"net/http"

	"floosafandy/internal/core"
)

type categoryAmountResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type dashboardResponse struct {
	TotalBalance     string                   `json:"total_balance"`
	TotalIn          string                   `json:"total_in"`
	TotalOut         string                   `json:"total_out"`
	Net              string                   `json:"net"`
	TransactionCount int                      `json:"transaction_count"`
	LowBalance       []accountResponse        `json:"low_balance_accounts"`
	TopCategories    []categoryAmountResponse `json:"top_categories"`
	Recent           []transactionResponse    `json:"recent_transactions"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := usernameFrom(r)

	if cached, ok := s.dashboardCache.Get(owner); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	overview, err := s.store.Overview(r.Context(), owner)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	lowBalance, err := s.store.LowBalanceAccounts(r.Context(), owner)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), owner)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	resp := dashboardResponse{
		TotalBalance:     overview.TotalBalance.String(),
		TotalIn:          overview.TotalIn.String(),
		TotalOut:         overview.TotalOut.String(),
		Net:              overview.Net.String(),
		TransactionCount: overview.TransactionCount,
		LowBalance:       make([]accountResponse, 0, len(lowBalance)),
		TopCategories:    []categoryAmountResponse{},
		Recent:           []transactionResponse{},
	}
	for _, a := range lowBalance {
		resp.LowBalance = append(resp.LowBalance, toAccountResponse(a))
	}

	// Spending by category, highest five.
	var outgoing []core.Transaction
	for _, tx := range txs {
		if tx.Direction == core.DirectionOut {
			outgoing = append(outgoing, tx)
		}
	}
	for _, ca := range core.TopCategories(outgoing, 5) {
		resp.TopCategories = append(resp.TopCategories, categoryAmountResponse{
			Name:   ca.Name,
			Amount: ca.Amount.String(),
		})
	}

	// Five most recent entries; the list is ordered oldest first.
	for i := len(txs) - 1; i >= 0 && len(resp.Recent) < 5; i-- {
		resp.Recent = append(resp.Recent, toTransactionResponse(txs[i]))
	}

	s.dashboardCache.Set(owner, resp)
	writeJSON(w, http.StatusOK, resp)
}
