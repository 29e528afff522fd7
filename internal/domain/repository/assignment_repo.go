package repository

import (
	"context"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AssignmentRepository определяет методы для работы с назначениями экзаменов
type AssignmentRepository interface {
	// CreateBatchIfAbsent вставляет назначения, пропуская уже существующие тройки
	// (компания, экзамен, сотрудник). Возвращает только созданные записи.
	CreateBatchIfAbsent(ctx context.Context, assignments []entity.ExamAssignment) ([]entity.ExamAssignment, error)
	GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.ExamAssignment, error)
	ListByEmployee(ctx context.Context, companyID, employeeID uint) ([]entity.ExamAssignment, error)
	ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAssignment, error)
	CountByExam(ctx context.Context, companyID, examID uint) (int64, error)
	// MarkInProgress переводит ASSIGNED -> IN_PROGRESS; false, если перехода не было
	MarkInProgress(ctx context.Context, companyID, id uint) (bool, error)
	// Revoke переводит активное назначение в REVOKED; ErrConflict, если оно уже терминальное
	Revoke(ctx context.Context, companyID, id uint) error
}
