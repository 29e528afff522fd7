package repository

import (
	"context"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	// RecordAttempt атомарно записывает попытку с ответами и продвигает счетчик назначения.
	// Назначение блокируется на время записи; если attempts_used != expectedUsed или бюджет
	// исчерпан, возвращается ErrAttemptBudgetConflict и ничего не пишется.
	RecordAttempt(ctx context.Context, attempt *entity.ExamAttempt, expectedUsed int) (*entity.ExamAssignment, error)
	ListByAssignment(ctx context.Context, companyID, assignmentID uint) ([]entity.ExamAttempt, error)
	ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAttempt, error)
}
