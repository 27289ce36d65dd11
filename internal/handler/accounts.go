package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/bankoffice-system/internal/middleware"
	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/policy"
)

type accountResponse struct {
	Number  string          `json:"accountNumber"`
	UserID  string          `json:"ownerUserID"`
	Balance decimal.Decimal `json:"balance"`
}

func toAccountResponses(accounts []model.Account) []accountResponse {
	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, accountResponse{
			Number:  a.Number,
			UserID:  a.UserID,
			Balance: a.Balance,
		})
	}
	return resp
}

// GetAccounts возвращает счета текущего пользователя.
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	accounts, err := h.service.GetAccountsByUser(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toAccountResponses(accounts))
}

// GetAccountsByUser возвращает счета указанного пользователя.
// Доступно только ролям с возможностью поиска клиентов.
func (h *Handler) GetAccountsByUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(user, policy.CapSearchCustomers) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	accounts, err := h.service.GetAccountsByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toAccountResponses(accounts))
}

type transactionResponse struct {
	ID        string          `json:"transactionID"`
	Source    *string         `json:"sourceAccountNumber"`
	Target    *string         `json:"targetAccountNumber"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	CreatedAt string          `json:"createdAt"`
}

// GetTransactionHistory возвращает историю операций по счёту. Клиент видит
// только собственные счета; кассир и администратор — любые.
func (h *Handler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	accountNumber := chi.URLParam(r, "accountNumber")

	if !policy.CanAccess(user, policy.CapSearchCustomers) {
		own, err := h.service.GetAccountsByUser(r.Context(), user.ID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		owned := false
		for _, a := range own {
			if a.Number == accountNumber {
				owned = true
				break
			}
		}
		if !owned {
			h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
			return
		}
	}

	transactions, err := h.service.GetTransactionsByAccount(r.Context(), accountNumber)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, transactionResponse{
			ID:        tx.ID,
			Source:    tx.Source,
			Target:    tx.Target,
			Amount:    tx.Amount,
			Type:      string(tx.Type),
			CreatedAt: tx.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type transactionRequest struct {
	Type          string          `json:"type"`
	AccountNumber string          `json:"accountNumber"`
	TargetAccount string          `json:"targetAccount"`
	Amount        decimal.Decimal `json:"amount"`
}

// ProcessTransaction выполняет денежную операцию: вклад, снятие или перевод.
func (h *Handler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(user, policy.CapProcessTransaction) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var err error
	switch model.TransactionType(strings.ToUpper(req.Type)) {
	case model.TransactionDeposit:
		err = h.service.Deposit(r.Context(), req.AccountNumber, req.Amount)
	case model.TransactionWithdrawal:
		err = h.service.Withdraw(r.Context(), req.AccountNumber, req.Amount)
	case model.TransactionTransfer:
		if req.TargetAccount == "" {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "target account required for transfer"})
			return
		}
		err = h.service.Transfer(r.Context(), req.AccountNumber, req.TargetAccount, req.Amount)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction type"})
		return
	}

	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction successful"})
}
