package entity

import (
	"time"
)

// AttemptStatusSubmitted - единственный статус попытки: попытка создается уже оцененной
const AttemptStatusSubmitted = "SUBMITTED"

// ExamAttempt - неизменяемая запись об одной оцененной попытке
type ExamAttempt struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	CompanyID       uint                `gorm:"not null;index" json:"company_id"`
	ExamID          uint                `gorm:"not null;index" json:"exam_id"`
	AssignmentID    uint                `gorm:"not null;uniqueIndex:idx_attempt_assignment_number" json:"assignment_id"`
	EmployeeID      uint                `gorm:"not null;index" json:"employee_id"`
	AttemptNumber   int                 `gorm:"not null;uniqueIndex:idx_attempt_assignment_number" json:"attempt_number"`
	TotalQuestions  int                 `gorm:"not null" json:"total_questions"`
	CorrectAnswers  int                 `gorm:"not null" json:"correct_answers"`
	Percentage      int                 `gorm:"not null" json:"percentage"`
	Passed          bool                `gorm:"not null" json:"passed"`
	DurationSeconds int                 `gorm:"not null" json:"duration_seconds"`
	Status          string              `gorm:"size:20;not null;default:'SUBMITTED'" json:"status"`
	SubmittedAt     time.Time           `gorm:"not null" json:"submitted_at"`
	Answers         []ExamAttemptAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time           `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// ExamAttemptAnswer - ответ на один вопрос экзамена в рамках попытки.
// Selected == nil означает, что вопрос остался без ответа.
type ExamAttemptAnswer struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	AttemptID  uint    `gorm:"not null;index" json:"attempt_id"`
	QuestionID uint    `gorm:"not null" json:"question_id"`
	Selected   *string `gorm:"size:1" json:"selected,omitempty"`
	IsCorrect  bool    `gorm:"not null" json:"is_correct"`
	Position   int     `gorm:"not null" json:"position"`
}

// TableName определяет имя таблицы для GORM
func (ExamAttemptAnswer) TableName() string {
	return "exam_attempt_answers"
}
