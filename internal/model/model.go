// Package model содержит доменные сущности банковского бэк-офиса.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleCustomer      Role = "CUSTOMER"
	RoleTeller        Role = "TELLER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// ParseRole преобразует строку в роль. Возвращает false для неизвестного значения.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleTeller, RoleAdministrator:
		return Role(s), true
	}
	return "", false
}

// Status описывает статус учётной записи пользователя.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusLocked   Status = "LOCKED"
	StatusInactive Status = "INACTIVE"
)

// ParseStatus преобразует строку в статус. Возвращает false для неизвестного значения.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusLocked, StatusInactive:
		return Status(s), true
	}
	return "", false
}

// User представляет сотрудника или клиента банка.
// Учётные записи никогда не удаляются, только меняют статус.
type User struct {
	ID                  string    `json:"userID"`
	Username            string    `json:"username"`
	FullName            string    `json:"fullName"`
	PasswordHash        string    `json:"passwordHash"`
	Role                Role      `json:"role"`
	Status              Status    `json:"status"`
	FailedLoginAttempts int       `json:"failedLoginAttempts"`
	TwoFactorEnabled    bool      `json:"twoFactorEnabled"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Account представляет денежный счёт клиента.
// Баланс хранится как точное десятичное число и после любой завершённой
// операции не может быть отрицательным.
type Account struct {
	Number  string          `json:"accountNumber"`
	UserID  string          `json:"ownerUserID"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionType описывает тип денежной операции.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTransfer   TransactionType = "TRANSFER"
)

// Transaction представляет неизменяемую запись о завершённом движении денег.
// Target отсутствует для вкладов и снятий, оба счёта заполнены для переводов.
type Transaction struct {
	ID        string          `json:"transactionID"`
	Source    *string         `json:"sourceAccountNumber"`
	Target    *string         `json:"targetAccountNumber"`
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuditLog представляет неизменяемую запись о привилегированном
// административном действии.
type AuditLog struct {
	ID           string    `json:"auditID"`
	ActorUserID  string    `json:"actorUserID"`
	Action       string    `json:"action"`
	TargetUserID string    `json:"targetUserID"`
	CreatedAt    time.Time `json:"createdAt"`
}
