// Package handler содержит HTTP-обработчики API банковского бэк-офиса.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/bankoffice-system/internal/middleware"
	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/service"
	"github.com/mmeshcher/bankoffice-system/internal/storage"
)

// Service определяет контракт бизнес-логики, используемый HTTP-обработчиками.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string)
	ResolveSession(ctx context.Context, token string) (*model.User, error)
	ChangePassword(ctx context.Context, username, current, newPassword string) error
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) error
	Transfer(ctx context.Context, sourceNumber, targetNumber string, amount decimal.Decimal) error
	GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error)
	GetTransactionsByAccount(ctx context.Context, accountNumber string) ([]model.Transaction, error)
	CreateUser(ctx context.Context, actor *model.User, username, fullName, role, password string) (*model.User, error)
	UpdateUserStatus(ctx context.Context, actor *model.User, targetUserID, status string) error
	UpdateUserRole(ctx context.Context, actor *model.User, targetUserID, role string) error
	SetTwoFactor(ctx context.Context, actor *model.User, targetUserID string, enabled bool) error
	GetAuditLogs(ctx context.Context) ([]model.AuditLog, error)
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
}

// Handler реализует HTTP-обработчики API банковского бэк-офиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeServiceError переводит доменную ошибку в HTTP-статус. Неопознанные
// ошибки считаются отказом хранилища: они логируются и отдаются как 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountLocked),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSameAccount),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidUsername):
		status = http.StatusBadRequest
	default:
		h.logger.Error("internal error", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login выполняет вход пользователя и возвращает токен сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user, err := h.service.ResolveSession(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Role:     string(user.Role),
		FullName: user.FullName,
		Username: user.Username,
		Message:  "Login successful",
	})
}

// Logout закрывает сессию текущего токена. Операция идемпотентна.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromHeader(r.Header.Get("Authorization"))
	if token != "" {
		h.service.Logout(r.Context(), token)
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword меняет пароль аутентифицированного пользователя.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "current and new password are required"})
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.Username, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Password changed successfully"})
}
