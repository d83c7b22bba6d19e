package http

import (
	"net/http"

	"floosafandy/internal/core"
)

type accountRequest struct {
	Name       string `json:"name"`
	Balance    string `json:"balance"`
	MinBalance string `json:"min_balance"`
}

type accountResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Balance    string `json:"balance"`
	MinBalance string `json:"min_balance"`
	CreatedAt  string `json:"created_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		Name:       a.Name,
		Balance:    a.Balance.String(),
		MinBalance: a.MinBalance.String(),
		CreatedAt:  a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (req accountRequest) amounts() (balance, min core.Money, err error) {
	balance = core.Money{}
	if req.Balance != "" {
		cents, perr := core.ParseDecimalToCents(req.Balance)
		if perr != nil {
			return balance, min, perr
		}
		balance = core.Money{Cents: cents}
	}
	min = core.Money{}
	if req.MinBalance != "" {
		cents, perr := core.ParseDecimalToCents(req.MinBalance)
		if perr != nil {
			return balance, min, perr
		}
		min = core.Money{Cents: cents}
	}
	return balance, min, nil
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), usernameFrom(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, min, err := req.amounts()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	account, err := s.store.CreateAccount(r.Context(), usernameFrom(r), sanitizeInput(req.Name), balance, min)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashboardCache.Delete(usernameFrom(r))
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, min, err := req.amounts()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	owner := usernameFrom(r)
	if err := s.store.UpdateAccount(r.Context(), owner, id, sanitizeInput(req.Name), balance, min); err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashboardCache.Delete(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	owner := usernameFrom(r)
	if err := s.store.DeleteAccount(r.Context(), owner, id); err != nil {
		writeStoreError(w, r, err)
		return
	}

	s.dashboardCache.Delete(owner)
	w.WriteHeader(http.StatusNoContent)
}
