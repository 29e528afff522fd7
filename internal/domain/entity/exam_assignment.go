package entity

import (
	"fmt"
	"time"
)

// Статусы назначения. EXPIRED никогда не сохраняется, он вычисляется при чтении.
const (
	AssignmentStatusAssigned   = "ASSIGNED"
	AssignmentStatusInProgress = "IN_PROGRESS"
	AssignmentStatusCompleted  = "COMPLETED"
	AssignmentStatusRevoked    = "REVOKED"
	AssignmentStatusExpired    = "EXPIRED"
)

// Сообщения статуса для сотрудника
const (
	StatusMessageCompleted = "Completed"
	StatusMessageExpired   = "Expired"
	StatusMessageRevoked   = "Revoked"
	StatusMessageReady     = "Ready to start"
)

// ExamAssignment связывает экзамен с сотрудником: окно времени и бюджет попыток
type ExamAssignment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CompanyID      uint       `gorm:"not null;uniqueIndex:idx_assignment_company_exam_employee" json:"company_id"`
	ExamID         uint       `gorm:"not null;uniqueIndex:idx_assignment_company_exam_employee" json:"exam_id"`
	EmployeeID     uint       `gorm:"not null;uniqueIndex:idx_assignment_company_exam_employee;index" json:"employee_id"`
	AssignedBy     uint       `gorm:"not null" json:"assigned_by"`
	AssignedByRole string     `gorm:"size:30;not null;default:''" json:"assigned_by_role"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	MaxAttempts    int        `gorm:"not null;default:1" json:"max_attempts"`
	AttemptsUsed   int        `gorm:"not null;default:0" json:"attempts_used"`
	Status         string     `gorm:"size:20;not null;default:'ASSIGNED';index" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ExamAssignment) TableName() string {
	return "exam_assignments"
}

// IsExpired проверяет, закончилось ли окно назначения
func (a *ExamAssignment) IsExpired(now time.Time) bool {
	return a.EndTime != nil && now.After(*a.EndTime)
}

// IsNotYetOpen проверяет, что окно назначения еще не открылось
func (a *ExamAssignment) IsNotYetOpen(now time.Time) bool {
	return a.StartTime != nil && now.Before(*a.StartTime)
}

// IsRevoked проверяет, отозвано ли назначение
func (a *ExamAssignment) IsRevoked() bool {
	return a.Status == AssignmentStatusRevoked
}

// IsCompleted проверяет, завершено ли назначение
func (a *ExamAssignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// IsActive возвращает true для ASSIGNED и IN_PROGRESS
func (a *ExamAssignment) IsActive() bool {
	return a.Status == AssignmentStatusAssigned || a.Status == AssignmentStatusInProgress
}

// HasAttemptsLeft проверяет бюджет попыток
func (a *ExamAssignment) HasAttemptsLeft() bool {
	return a.AttemptsUsed < a.MaxAttempts
}

// AttemptsRemaining возвращает количество оставшихся попыток (не меньше 0)
func (a *ExamAssignment) AttemptsRemaining() int {
	remaining := a.MaxAttempts - a.AttemptsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanStart вычисляет, может ли сотрудник начать экзамен в момент now
func (a *ExamAssignment) CanStart(now time.Time) bool {
	if a.IsExpired(now) {
		return false
	}
	if !a.IsActive() {
		return false
	}
	if a.IsNotYetOpen(now) {
		return false
	}
	return true
}

// DisplayStatus возвращает статус для отображения.
// COMPLETED имеет приоритет, затем вычисляемый EXPIRED, затем сохраненный статус.
func (a *ExamAssignment) DisplayStatus(now time.Time) string {
	if a.IsCompleted() {
		return AssignmentStatusCompleted
	}
	if a.IsExpired(now) {
		return AssignmentStatusExpired
	}
	return a.Status
}

// StatusMessage возвращает человекочитаемое сообщение о состоянии назначения
func (a *ExamAssignment) StatusMessage(now time.Time) string {
	switch {
	case a.IsCompleted():
		return StatusMessageCompleted
	case a.IsExpired(now):
		return StatusMessageExpired
	case a.IsRevoked():
		return StatusMessageRevoked
	case a.IsNotYetOpen(now):
		return fmt.Sprintf("Available from %s", a.StartTime.UTC().Format(time.RFC3339))
	default:
		return StatusMessageReady
	}
}

// StatusAfterAttempt вычисляет статус после оцененной попытки.
// Успешная попытка завершает назначение; неуспешная не понижает IN_PROGRESS и не трогает COMPLETED.
func (a *ExamAssignment) StatusAfterAttempt(passed bool) string {
	if passed {
		return AssignmentStatusCompleted
	}
	switch a.Status {
	case AssignmentStatusCompleted, AssignmentStatusInProgress:
		return a.Status
	default:
		return AssignmentStatusAssigned
	}
}
