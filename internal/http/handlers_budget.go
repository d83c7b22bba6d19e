package http

import (
	"net/http"
	"strconv"
	"strings"

	"floosafandy/internal/core"
)

type budgetRequest struct {
	AccountID int64  `json:"account_id"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
}

type budgetResponse struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Category  string `json:"category"`
	Allocated string `json:"allocated"`
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		AccountID: b.AccountID,
		Category:  b.Category,
		Allocated: b.Allocated.String(),
		Spent:     b.Spent.String(),
		Remaining: core.Money{Cents: b.Allocated.Cents - b.Spent.Cents}.String(),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListBudgets(r.Context(), usernameFrom(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	budget, err := s.store.CreateBudget(r.Context(), usernameFrom(r), req.AccountID,
		sanitizeInput(req.Category), core.Money{Cents: cents})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := s.store.DeleteBudget(r.Context(), usernameFrom(r), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	AccountID int64  `json:"account_id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
}

func categoryScope(r *http.Request) (int64, core.Direction, error) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(strings.TrimSpace(q.Get("account_id")), 10, 64)
	if err != nil {
		return 0, "", err
	}
	return id, core.Direction(strings.TrimSpace(q.Get("type"))), nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	accountID, direction, err := categoryScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	if !direction.Valid() {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	names, err := s.store.ListCategories(r.Context(), usernameFrom(r), accountID, direction)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.store.CreateCategory(r.Context(), usernameFrom(r), req.AccountID,
		core.Direction(req.Type), sanitizeInput(req.Name))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	accountID, direction, err := categoryScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account_id")
		return
	}
	name := sanitizeInput(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), usernameFrom(r), accountID, direction, name); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
