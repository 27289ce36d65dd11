package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/session"
	"github.com/mmeshcher/bankoffice-system/internal/storage"
)

// maxFailedLogins задаёт число неудачных попыток входа, после которого
// учётная запись блокируется.
const maxFailedLogins = 5

// minPasswordLength задаёт минимальную длину пароля.
const minPasswordLength = 6

// HashPassword возвращает bcrypt-хэш пароля.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login проверяет учётные данные и открывает сессию.
//
// Неизвестное имя и неверный пароль дают одинаковую ошибку
// ErrInvalidCredentials, чтобы не раскрывать существование учётной записи.
// Неверный пароль увеличивает счётчик неудачных попыток; на пятой попытке
// учётная запись блокируется. Успешный вход сбрасывает счётчик.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if user.Status == model.StatusLocked || user.Status == model.StatusInactive {
		return "", fmt.Errorf("%w (%s), contact administrator", ErrAccountLocked, user.Status)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.Status = model.StatusLocked
		}
		if saveErr := s.store.SaveUser(ctx, *user); saveErr != nil {
			return "", fmt.Errorf("save failed attempt: %w", saveErr)
		}
		return "", ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	if err := s.store.SaveUser(ctx, *user); err != nil {
		return "", fmt.Errorf("reset failed attempts: %w", err)
	}

	return s.sessions.Create(user.ID), nil
}

// Logout закрывает сессию. Неизвестный токен игнорируется.
func (s *Service) Logout(ctx context.Context, token string) {
	s.sessions.Revoke(token)
}

// ResolveSession возвращает пользователя по токену сессии.
func (s *Service) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find session user: %w", err)
	}
	return user, nil
}

// ChangePassword заменяет пароль пользователя после подтверждения текущего.
// Живая сессия здесь не требуется: решение остаётся за вызывающим слоем.
func (s *Service) ChangePassword(ctx context.Context, username, current, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrIncorrectPassword
	}

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.store.SaveUser(ctx, *user); err != nil {
		return fmt.Errorf("save new password: %w", err)
	}
	return nil
}
