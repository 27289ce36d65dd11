package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/bankoffice-system/internal/middleware"
	"github.com/mmeshcher/bankoffice-system/internal/policy"
)

type createUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// CreateUser заводит новую учётную запись. Доступно только роли с
// возможностью управления пользователями.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(actor, policy.CapManageUsers) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "password is required"})
		return
	}

	user, err := h.service.CreateUser(r.Context(), actor, req.Username, req.FullName, req.Role, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
		"userID":  user.ID,
	})
}

type updateUserRequest struct {
	Status           *string `json:"status"`
	Role             *string `json:"role"`
	TwoFactorEnabled *bool   `json:"twoFactorEnabled"`
}

// UpdateUser применяет частичное обновление учётной записи: статус, роль
// и флаг двухфакторной аутентификации, каждое присутствующее поле отдельно.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(actor, policy.CapManageUsers) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	targetUserID := chi.URLParam(r, "userID")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Status != nil {
		if err := h.service.UpdateUserStatus(r.Context(), actor, targetUserID, *req.Status); err != nil {
			h.writeServiceError(w, err)
			return
		}
	}
	if req.Role != nil {
		if err := h.service.UpdateUserRole(r.Context(), actor, targetUserID, *req.Role); err != nil {
			h.writeServiceError(w, err)
			return
		}
	}
	if req.TwoFactorEnabled != nil {
		if err := h.service.SetTwoFactor(r.Context(), actor, targetUserID, *req.TwoFactorEnabled); err != nil {
			h.writeServiceError(w, err)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, messageResponse{Message: "User updated successfully"})
}

type auditResponse struct {
	ID           string `json:"auditID"`
	ActorUserID  string `json:"actorUserID"`
	Action       string `json:"action"`
	TargetUserID string `json:"targetUserID"`
	CreatedAt    string `json:"createdAt"`
}

// GetAuditLogs возвращает полный журнал аудита.
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(actor, policy.CapViewAuditLog) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	audits, err := h.service.GetAuditLogs(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]auditResponse, 0, len(audits))
	for _, a := range audits {
		resp = append(resp, auditResponse{
			ID:           a.ID,
			ActorUserID:  a.ActorUserID,
			Action:       a.Action,
			TargetUserID: a.TargetUserID,
			CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type userResponse struct {
	ID               string `json:"userID"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

// SearchUsers выполняет поиск пользователей по подстроке имени.
// Хэш пароля и счётчик попыток входа наружу не отдаются.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !policy.CanAccess(actor, policy.CapSearchCustomers) {
		h.writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("query")
	}
	if strings.TrimSpace(query) == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "search query is required"})
		return
	}

	users, err := h.service.SearchUsers(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse{
			ID:               u.ID,
			Username:         u.Username,
			FullName:         u.FullName,
			Role:             string(u.Role),
			Status:           string(u.Status),
			TwoFactorEnabled: u.TwoFactorEnabled,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}
