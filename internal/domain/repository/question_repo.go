package repository

import (
	"context"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами.
// Все выборки ограничены компанией.
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	Update(ctx context.Context, question *entity.Question) error
	// GetByIDAndCompany возвращает только активный вопрос
	GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Question, error)
	// ExistsActiveByText проверяет уникальность текста без учета регистра; excludeID исключает сам вопрос
	ExistsActiveByText(ctx context.Context, companyID uint, text string, excludeID uint) (bool, error)
	Deactivate(ctx context.Context, companyID, id uint) error
	ListActive(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error)

	// Пути выборки для составления и оценки экзаменов
	GetActiveIDsByTopic(ctx context.Context, companyID, topicID uint) ([]uint, error)
	// GetByIDs не фильтрует по активности: оценка должна видеть вопросы, удаленные после составления
	GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Question, error)
}
