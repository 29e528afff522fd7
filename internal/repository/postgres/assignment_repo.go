package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AssignmentRepo реализует repository.AssignmentRepository
type AssignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo создает новый репозиторий назначений
func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// CreateBatchIfAbsent вставляет назначения в одной транзакции.
// Уникальный индекс (company_id, exam_id, employee_id) и ON CONFLICT DO NOTHING
// делают повторное назначение идемпотентным даже при параллельных вызовах.
func (r *AssignmentRepo) CreateBatchIfAbsent(ctx context.Context, assignments []entity.ExamAssignment) ([]entity.ExamAssignment, error) {
	created := make([]entity.ExamAssignment, 0, len(assignments))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range assignments {
			a := assignments[i]
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "company_id"}, {Name: "exam_id"}, {Name: "employee_id"}},
				DoNothing: true,
			}).Create(&a)
			if result.Error != nil {
				return fmt.Errorf("create assignment for employee #%d: %w", a.EmployeeID, result.Error)
			}
			if result.RowsAffected == 0 {
				continue
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByIDAndCompany возвращает назначение компании по ID
func (r *AssignmentRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.ExamAssignment, error) {
	var assignment entity.ExamAssignment
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&assignment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &assignment, nil
}

// ListByEmployee возвращает назначения сотрудника, новые первыми
func (r *AssignmentRepo) ListByEmployee(ctx context.Context, companyID, employeeID uint) ([]entity.ExamAssignment, error) {
	var assignments []entity.ExamAssignment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID).
		Order("created_at DESC, id DESC").
		Find(&assignments).Error
	return assignments, err
}

// ListByExam возвращает все назначения экзамена
func (r *AssignmentRepo) ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAssignment, error) {
	var assignments []entity.ExamAssignment
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND exam_id = ?", companyID, examID).
		Order("created_at DESC, id DESC").
		Find(&assignments).Error
	return assignments, err
}

// CountByExam возвращает количество назначений экзамена
func (r *AssignmentRepo) CountByExam(ctx context.Context, companyID, examID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ExamAssignment{}).
		Where("company_id = ? AND exam_id = ?", companyID, examID).
		Count(&count).Error
	return count, err
}

// MarkInProgress атомарно переводит ASSIGNED -> IN_PROGRESS.
// RowsAffected == 0 означает, что назначение уже не в статусе ASSIGNED.
func (r *AssignmentRepo) MarkInProgress(ctx context.Context, companyID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.ExamAssignment{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, entity.AssignmentStatusAssigned).
		Update("status", entity.AssignmentStatusInProgress)
	if result.Error != nil {
		return false, fmt.Errorf("start assignment #%d failed: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Revoke атомарно отзывает активное назначение
func (r *AssignmentRepo) Revoke(ctx context.Context, companyID, id uint) error {
	result := r.db.WithContext(ctx).Model(&entity.ExamAssignment{}).
		Where("id = ? AND company_id = ? AND status IN ?", id, companyID,
			[]string{entity.AssignmentStatusAssigned, entity.AssignmentStatusInProgress}).
		Update("status", entity.AssignmentStatusRevoked)
	if result.Error != nil {
		return fmt.Errorf("revoke assignment #%d failed: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		// Отличаем отсутствующее назначение от уже терминального
		if _, err := r.GetByIDAndCompany(ctx, companyID, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: assignment #%d is not active", apperrors.ErrConflict, id)
	}
	return nil
}
