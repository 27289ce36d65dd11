// Package service реализует бизнес-логику банковского бэк-офиса.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/session"
)

// ErrInvalidCredentials возвращается при неверном имени пользователя или пароле.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked возвращается при входе в заблокированную или неактивную учётную запись.
	ErrAccountLocked = errors.New("account is locked or inactive")
	// ErrInvalidSession возвращается для неизвестного токена сессии.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired возвращается для сессии, превысившей окно простоя.
	ErrSessionExpired = errors.New("session expired")
	// ErrIncorrectPassword возвращается, если текущий пароль не подтверждён.
	ErrIncorrectPassword = errors.New("current password is incorrect")
	// ErrWeakPassword возвращается для нового пароля короче шести символов.
	ErrWeakPassword = errors.New("new password must be at least 6 characters")
	// ErrInvalidAmount возвращается для неположительной суммы операции.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds возвращается, если баланс меньше суммы списания.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount возвращается при переводе счёта самому себе.
	ErrSameAccount = errors.New("cannot transfer to the same account")
	// ErrInvalidStatus возвращается для неизвестного значения статуса.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidRole возвращается для неизвестного значения роли.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidUsername возвращается для недопустимого имени пользователя.
	ErrInvalidUsername = errors.New("invalid username")
)

// Storage описывает контракт доступа к наборам записей, используемый сервисом.
type Storage interface {
	Close() error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	SaveUser(ctx context.Context, user model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
	SearchUsers(ctx context.Context, query string) ([]model.User, error)
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)
	GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error)
	SaveAccounts(ctx context.Context, accounts ...model.Account) error
	AppendTransaction(ctx context.Context, tx model.Transaction) error
	GetTransactionsByAccount(ctx context.Context, number string) ([]model.Transaction, error)
	AppendAudit(ctx context.Context, entry model.AuditLog) error
	ListAudits(ctx context.Context) ([]model.AuditLog, error)
}

// Service содержит бизнес-логику банковского бэк-офиса.
//
// Мьютекс mu сериализует все потоки «прочитал-изменил-записал»: две
// одновременные операции над одним счётом или одной учётной записью не могут
// пройти проверку до того, как первая зафиксирует результат.
type Service struct {
	mu       sync.Mutex
	store    Storage
	sessions *session.Registry
}

// NewService создаёт сервис с указанным хранилищем и реестром сессий.
func NewService(store Storage, sessions *session.Registry) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
