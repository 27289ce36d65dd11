package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/validation"
)

// CreateUser заводит новую учётную запись от имени администратора actor.
// Имя пользователя уникально без учёта регистра. Каждая успешная операция
// оставляет ровно одну запись аудита, неудачная — ни одной.
func (s *Service) CreateUser(ctx context.Context, actor *model.User, username, fullName, roleStr, password string) (*model.User, error) {
	if !validation.IsValidUsername(username) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}

	role, ok := model.ParseRole(strings.ToUpper(roleStr))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, roleStr)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := s.appendAudit(ctx, actor, "CREATE_USER", user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserStatus меняет статус учётной записи.
func (s *Service) UpdateUserStatus(ctx context.Context, actor *model.User, targetUserID, statusStr string) error {
	status, ok := model.ParseStatus(strings.ToUpper(statusStr))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, statusStr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.store.GetUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	target.Status = status
	if err := s.store.SaveUser(ctx, *target); err != nil {
		return fmt.Errorf("save status: %w", err)
	}

	return s.appendAudit(ctx, actor, "UPDATE_STATUS_"+string(status), targetUserID)
}

// UpdateUserRole меняет роль учётной записи.
func (s *Service) UpdateUserRole(ctx context.Context, actor *model.User, targetUserID, roleStr string) error {
	role, ok := model.ParseRole(strings.ToUpper(roleStr))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, roleStr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.store.GetUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	target.Role = role
	if err := s.store.SaveUser(ctx, *target); err != nil {
		return fmt.Errorf("save role: %w", err)
	}

	return s.appendAudit(ctx, actor, "UPDATE_ROLE_"+string(role), targetUserID)
}

// SetTwoFactor включает или выключает двухфакторную аутентификацию.
func (s *Service) SetTwoFactor(ctx context.Context, actor *model.User, targetUserID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.store.GetUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	target.TwoFactorEnabled = enabled
	if err := s.store.SaveUser(ctx, *target); err != nil {
		return fmt.Errorf("save two-factor flag: %w", err)
	}

	return s.appendAudit(ctx, actor, fmt.Sprintf("TOGGLE_2FA_%t", enabled), targetUserID)
}

func (s *Service) appendAudit(ctx context.Context, actor *model.User, action, targetUserID string) error {
	entry := model.AuditLog{
		ID:           uuid.NewString(),
		ActorUserID:  actor.ID,
		Action:       action,
		TargetUserID: targetUserID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// GetAuditLogs возвращает весь журнал аудита.
func (s *Service) GetAuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	return s.store.ListAudits(ctx)
}

// SearchUsers возвращает пользователей по подстроке имени входа или полного имени.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	return s.store.SearchUsers(ctx, query)
}
