package entity

import (
	"time"
)

// Exam представляет экзамен компании с фиксированным упорядоченным набором вопросов
type Exam struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	CompanyID         uint   `gorm:"not null;index" json:"company_id"`
	Title             string `gorm:"size:200;not null" json:"title"`
	Description       string `gorm:"size:1000;not null;default:''" json:"description"`
	DurationMinutes   int    `gorm:"not null" json:"duration_minutes"`
	PassingPercentage int    `gorm:"not null;default:0" json:"passing_percentage"`
	// TotalQuestions задается один раз при составлении и дальше не пересчитывается
	TotalQuestions int            `gorm:"not null;default:0" json:"total_questions"`
	CreatedBy      uint           `gorm:"not null" json:"created_by"`
	CreatedByRole  string         `gorm:"size:30;not null;default:''" json:"created_by_role"`
	UpdatedBy      *uint          `json:"updated_by,omitempty"`
	UpdatedByRole  string         `gorm:"size:30;not null;default:''" json:"updated_by_role,omitempty"`
	Questions      []ExamQuestion `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Exam) TableName() string {
	return "exams"
}

// MaxDurationSeconds возвращает верхнюю границу длительности попытки в секундах
func (e *Exam) MaxDurationSeconds() int {
	minutes := e.DurationMinutes
	if minutes < 1 {
		minutes = 1
	}
	return minutes * 60
}

// IsPassed применяет политику прохождения: порог 0 означает, что проходит любой результат
func (e *Exam) IsPassed(percentage int) bool {
	return percentage >= e.PassingPercentage
}

// ExamQuestion - связь экзамена с вопросом и его каноническая позиция (1..N)
type ExamQuestion struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ExamID     uint `gorm:"not null;uniqueIndex:idx_exam_question_position;uniqueIndex:idx_exam_question_unique" json:"exam_id"`
	QuestionID uint `gorm:"not null;uniqueIndex:idx_exam_question_unique" json:"question_id"`
	Position   int  `gorm:"not null;uniqueIndex:idx_exam_question_position" json:"position"`
}

// TableName определяет имя таблицы для GORM
func (ExamQuestion) TableName() string {
	return "exam_questions"
}
