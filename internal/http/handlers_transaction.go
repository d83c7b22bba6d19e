package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"floosafandy/internal/core"
)

type transactionRequest struct {
	AccountID     int64    `json:"account_id"`
	Type          string   `json:"type"`
	Amount        string   `json:"amount"`
	Date          string   `json:"date,omitempty"`
	Description   string   `json:"description,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

type transactionResponse struct {
	ID            int64    `json:"id"`
	AccountID     int64    `json:"account_id"`
	Type          string   `json:"type"`
	Amount        string   `json:"amount"`
	Date          string   `json:"date"`
	Description   string   `json:"description,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		AccountID:     tx.AccountID,
		Type:          string(tx.Direction),
		Amount:        tx.Amount.String(),
		Date:          tx.Date.Format("2006-01-02 15:04:05"),
		Description:   tx.Description,
		PaymentMethod: tx.PaymentMethod,
		Categories:    core.SplitCategories(tx.Category),
	}
}

// parseTxDate accepts a full timestamp or a bare date.
func parseTxDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.FilterTransactions(r.Context(), usernameFrom(r), filter)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	tx := core.Transaction{
		AccountID:     req.AccountID,
		Direction:     core.Direction(req.Type),
		Amount:        core.Money{Cents: cents},
		Description:   sanitizeInput(req.Description),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Category:      core.JoinCategories(req.Categories),
	}
	if req.Date != "" {
		date, err := parseTxDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date")
			return
		}
		tx.Date = date
	}

	owner := usernameFrom(r)
	created, err := s.ledger.CreateTransaction(r.Context(), owner, tx)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashboardCache.Delete(owner)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	owner := usernameFrom(r)
	if err := s.ledger.DeleteTransaction(r.Context(), owner, id); err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashboardCache.Delete(owner)
	w.WriteHeader(http.StatusNoContent)
}

// handleExportTransactions streams the filtered journal as CSV.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.FilterTransactions(r.Context(), usernameFrom(r), filter)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transactions_%s.csv"`, time.Now().Format("20060102")))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "date", "type", "amount", "account_id", "description", "payment_method", "category"})
	for _, tx := range txs {
		_ = cw.Write([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.Format("2006-01-02 15:04:05"),
			string(tx.Direction),
			tx.Amount.String(),
			strconv.FormatInt(tx.AccountID, 10),
			tx.Description,
			tx.PaymentMethod,
			tx.Category,
		})
	}
	cw.Flush()
}
