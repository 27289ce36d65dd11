// Package policy содержит статические правила доступа роль → возможность.
package policy

import "github.com/mmeshcher/bankoffice-system/internal/model"

// Capability описывает возможность, запрашиваемую обработчиком операции.
type Capability string

const (
	CapProcessTransaction Capability = "PROCESS_TRANSACTION"
	CapSearchCustomers    Capability = "SEARCH_CUSTOMERS"
	CapManageUsers        Capability = "MANAGE_USERS"
	CapViewAuditLog       Capability = "VIEW_AUDIT_LOG"
)

// Таблица доступа фиксирована на этапе компиляции и не имеет состояния.
var grants = map[model.Role]map[Capability]bool{
	model.RoleCustomer: {
		CapProcessTransaction: true,
	},
	model.RoleTeller: {
		CapProcessTransaction: true,
		CapSearchCustomers:    true,
	},
	model.RoleAdministrator: {
		CapProcessTransaction: true,
		CapSearchCustomers:    true,
		CapManageUsers:        true,
		CapViewAuditLog:       true,
	},
}

// CanAccess сообщает, разрешена ли возможность для роли пользователя.
func CanAccess(user *model.User, cap Capability) bool {
	if user == nil {
		return false
	}
	return grants[user.Role][cap]
}
