package entity

import (
	"strings"
	"time"
)

// Варианты ответа
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// Question представляет вопрос с четырьмя вариантами и одним правильным ответом
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompanyID     uint      `gorm:"not null;index" json:"company_id"`
	TopicID       uint      `gorm:"not null;index" json:"topic_id"`
	Text          string    `gorm:"column:question_text;size:1000;not null" json:"text"`
	OptionA       string    `gorm:"size:500;not null" json:"option_a"`
	OptionB       string    `gorm:"size:500;not null" json:"option_b"`
	OptionC       string    `gorm:"size:500;not null" json:"option_c"`
	OptionD       string    `gorm:"size:500;not null" json:"option_d"`
	CorrectAnswer string    `gorm:"size:1;not null" json:"-"` // Скрыто от клиента
	IsActive      bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy     uint      `gorm:"not null" json:"created_by"`
	CreatedByRole string    `gorm:"size:30;not null;default:''" json:"created_by_role"`
	Topic         *Topic    `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsValidOption проверяет, что выбранный вариант - одна из букв A-D
func IsValidOption(selected string) bool {
	switch selected {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// NormalizeOption приводит вариант к верхнему регистру без пробелов.
// Используется только при создании/редактировании вопросов.
func NormalizeOption(option string) string {
	return strings.ToUpper(strings.TrimSpace(option))
}

// IsCorrect сравнивает выбранный вариант с правильным без учета регистра
func (q *Question) IsCorrect(selected string) bool {
	if selected == "" {
		return false
	}
	return strings.EqualFold(q.CorrectAnswer, selected)
}
