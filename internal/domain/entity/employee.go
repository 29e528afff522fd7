package entity

// Employee - сотрудник компании из внешнего справочника пользователей
type Employee struct {
	ID        uint     `json:"id"`
	CompanyID uint     `json:"companyId"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
}
