// Package storage содержит файловое хранилище записей банковского бэк-офиса.
//
// Хранилище ведёт четыре независимых набора записей (пользователи, счета,
// транзакции, аудит). Каждый набор целиком сериализуется в собственный
// JSON-файл; запись выполняется атомарно через временный файл и os.Rename,
// поэтому для вызывающего кода сохранение одного набора — это синхронный
// коммит «всё или ничего». Атомарности МЕЖДУ наборами нет: операция,
// затрагивающая два набора, фиксирует их двумя независимыми записями.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/bankoffice-system/internal/model"
)

const (
	usersFile        = "users.json"
	accountsFile     = "accounts.json"
	transactionsFile = "transactions.json"
	auditFile        = "audit_logs.json"
)

// ErrUserExists возвращается при попытке создать пользователя с уже занятым именем.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotFound возвращается, если счёт не найден.
	ErrAccountNotFound = errors.New("account not found")
)

// FileStore предоставляет доступ к наборам записей, хранящимся в JSON-файлах.
// Все наборы защищены одним RWMutex: в каждый момент времени набор меняет
// не более одного вызова.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	logger *zap.Logger

	users        []model.User
	accounts     []model.Account
	transactions []model.Transaction
	audits       []model.AuditLog
}

// NewFileStore создаёт хранилище и загружает все наборы записей из каталога dir.
// Отсутствующий файл даёт пустой набор; повреждённый файл также деградирует
// до пустого набора с записью в лог.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{dir: dir, logger: logger}

	s.users = loadRecords[model.User](filepath.Join(dir, usersFile), logger)
	s.accounts = loadRecords[model.Account](filepath.Join(dir, accountsFile), logger)
	s.transactions = loadRecords[model.Transaction](filepath.Join(dir, transactionsFile), logger)
	s.audits = loadRecords[model.AuditLog](filepath.Join(dir, auditFile), logger)

	return s, nil
}

// Close закрывает хранилище. Файловая реализация не держит открытых ресурсов.
func (s *FileStore) Close() error {
	return nil
}

func loadRecords[T any](path string, logger *zap.Logger) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("record set unreadable, starting empty", zap.String("file", path), zap.Error(err))
		}
		return nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("record set corrupt, starting empty", zap.String("file", path), zap.Error(err))
		return nil
	}
	return records
}

// writeRecords сериализует набор во временный файл и атомарно заменяет им
// основной. Прерванная запись не повреждает существующий файл.
func writeRecords[T any](path string, records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}
	return nil
}

// GetUserByUsername возвращает пользователя по имени без учёта регистра.
func (s *FileStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *FileStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// CreateUser добавляет нового пользователя. Имя пользователя уникально без
// учёта регистра; коллизия даёт ErrUserExists, и набор не меняется.
func (s *FileStore) CreateUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("%w: %s", ErrUserExists, user.Username)
		}
	}

	updated := append(append([]model.User(nil), s.users...), user)
	if err := writeRecords(filepath.Join(s.dir, usersFile), updated); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	s.users = updated
	return nil
}

// SaveUser заменяет пользователя с тем же идентификатором на месте, сохраняя
// порядок набора; неизвестный идентификатор добавляется в конец.
func (s *FileStore) SaveUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append([]model.User(nil), s.users...)
	found := false
	for i := range updated {
		if updated[i].ID == user.ID {
			updated[i] = user
			found = true
			break
		}
	}
	if !found {
		updated = append(updated, user)
	}

	if err := writeRecords(filepath.Join(s.dir, usersFile), updated); err != nil {
		return fmt.Errorf("persist users: %w", err)
	}
	s.users = updated
	return nil
}

// ListUsers возвращает копию набора пользователей.
func (s *FileStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.User(nil), s.users...), nil
}

// SearchUsers возвращает пользователей, чьё имя входа или полное имя содержит
// подстроку query без учёта регистра.
func (s *FileStore) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var result []model.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) {
			result = append(result, u)
		}
	}
	return result, nil
}

// GetAccountByNumber возвращает счёт по номеру.
func (s *FileStore) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.Number == number {
			cp := a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, number)
}

// GetAccountsByUser возвращает все счета, принадлежащие пользователю.
func (s *FileStore) GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

// SaveAccounts выполняет upsert сразу нескольких счетов и фиксирует набор
// одной записью файла. Обе стороны перевода попадают в один коммит, поэтому
// частично применённый перевод не наблюдаем: либо записаны оба новых
// баланса, либо ни один.
func (s *FileStore) SaveAccounts(ctx context.Context, accounts ...model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append([]model.Account(nil), s.accounts...)
	for _, acc := range accounts {
		found := false
		for i := range updated {
			if updated[i].Number == acc.Number {
				updated[i] = acc
				found = true
				break
			}
		}
		if !found {
			updated = append(updated, acc)
		}
	}

	if err := writeRecords(filepath.Join(s.dir, accountsFile), updated); err != nil {
		return fmt.Errorf("persist accounts: %w", err)
	}
	s.accounts = updated
	return nil
}

// AppendTransaction добавляет запись в журнал транзакций. Журнал только
// пополняется; существующие записи никогда не меняются.
func (s *FileStore) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append(append([]model.Transaction(nil), s.transactions...), tx)
	if err := writeRecords(filepath.Join(s.dir, transactionsFile), updated); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	s.transactions = updated
	return nil
}

// GetTransactionsByAccount возвращает транзакции, где счёт выступает
// источником или получателем.
func (s *FileStore) GetTransactionsByAccount(ctx context.Context, number string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Transaction
	for _, tx := range s.transactions {
		if (tx.Source != nil && *tx.Source == number) || (tx.Target != nil && *tx.Target == number) {
			result = append(result, tx)
		}
	}
	return result, nil
}

// AppendAudit добавляет запись в журнал аудита.
func (s *FileStore) AppendAudit(ctx context.Context, entry model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append(append([]model.AuditLog(nil), s.audits...), entry)
	if err := writeRecords(filepath.Join(s.dir, auditFile), updated); err != nil {
		return fmt.Errorf("persist audit log: %w", err)
	}
	s.audits = updated
	return nil
}

// ListAudits возвращает копию журнала аудита.
func (s *FileStore) ListAudits(ctx context.Context) ([]model.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.AuditLog(nil), s.audits...), nil
}
