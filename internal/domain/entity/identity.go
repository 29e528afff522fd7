package entity

// Роли, приходящие в токене
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleEmployee   = "EMPLOYEE"
)

// Identity - аутентифицированный вызывающий: пользователь, его компания и роль.
// Формируется middleware из JWT и дальше считается доверенным.
type Identity struct {
	UserID    uint
	CompanyID uint
	Role      string
	// Token - исходный bearer-токен, нужен для вызова справочника сотрудников
	Token string
}

// IsAdmin проверяет, имеет ли вызывающий административную роль
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin || i.Role == RoleSuperAdmin
}
