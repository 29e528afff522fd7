package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// RecordAttempt записывает попытку и продвигает счетчик назначения в одной транзакции.
// Строка назначения блокируется через SELECT ... FOR UPDATE, поэтому две параллельные
// отправки не могут обе пройти проверку бюджета.
func (r *AttemptRepo) RecordAttempt(ctx context.Context, attempt *entity.ExamAttempt, expectedUsed int) (*entity.ExamAssignment, error) {
	var updated entity.ExamAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND company_id = ?", attempt.AssignmentID, attempt.CompanyID).
			First(&updated).Error; err != nil {
			return translateError(err)
		}

		if updated.IsRevoked() {
			return fmt.Errorf("%w: assignment #%d", repository.ErrAssignmentRevoked, updated.ID)
		}
		if updated.AttemptsUsed != expectedUsed || !updated.HasAttemptsLeft() {
			return fmt.Errorf("%w: assignment #%d used %d of %d, expected %d",
				repository.ErrAttemptBudgetConflict, updated.ID, updated.AttemptsUsed, updated.MaxAttempts, expectedUsed)
		}

		if err := tx.Create(attempt).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: attempt #%d already recorded", repository.ErrAttemptBudgetConflict, attempt.AttemptNumber)
			}
			return fmt.Errorf("create attempt: %w", err)
		}

		updated.AttemptsUsed = attempt.AttemptNumber
		updated.Status = updated.StatusAfterAttempt(attempt.Passed)
		if err := tx.Model(&entity.ExamAssignment{}).
			Where("id = ?", updated.ID).
			Updates(map[string]interface{}{
				"attempts_used": updated.AttemptsUsed,
				"status":        updated.Status,
			}).Error; err != nil {
			return fmt.Errorf("update assignment counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListByAssignment возвращает попытки назначения по номеру
func (r *AttemptRepo) ListByAssignment(ctx context.Context, companyID, assignmentID uint) ([]entity.ExamAttempt, error) {
	var attempts []entity.ExamAttempt
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND assignment_id = ?", companyID, assignmentID).
		Order("attempt_number").
		Find(&attempts).Error
	return attempts, err
}

// ListByExam возвращает все попытки по экзамену для отчета
func (r *AttemptRepo) ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAttempt, error) {
	var attempts []entity.ExamAttempt
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND exam_id = ?", companyID, examID).
		Order("employee_id, attempt_number").
		Find(&attempts).Error
	return attempts, err
}
