package service

import (
	"context"
	"fmt"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// Нарушения бизнес-правил экзаменов. Все они классифицируются как apperrors.ErrBusinessRule.
var (
	ErrInsufficientPool    = fmt.Errorf("%w: not enough active questions in topic", apperrors.ErrBusinessRule)
	ErrNoAttemptsRemaining = fmt.Errorf("%w: no attempts remaining", apperrors.ErrBusinessRule)
	ErrWindowNotStarted    = fmt.Errorf("%w: assignment window not started", apperrors.ErrBusinessRule)
	ErrWindowEnded         = fmt.Errorf("%w: assignment window ended", apperrors.ErrBusinessRule)
	ErrAssignmentExpired   = fmt.Errorf("%w: assignment expired", apperrors.ErrBusinessRule)
	ErrAssignmentRevoked   = fmt.Errorf("%w: assignment revoked", apperrors.ErrBusinessRule)
	ErrAssignmentCompleted = fmt.Errorf("%w: assignment already completed", apperrors.ErrBusinessRule)
)

// EmployeeDirectory - внешний справочник сотрудников компании
type EmployeeDirectory interface {
	// ListCompanyEmployees возвращает текущих сотрудников компании вызывающего
	ListCompanyEmployees(ctx context.Context, identity entity.Identity) ([]entity.Employee, error)
}
