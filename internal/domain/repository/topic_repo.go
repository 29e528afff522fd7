package repository

import (
	"context"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// TopicRepository определяет методы для работы с темами компании
type TopicRepository interface {
	Create(ctx context.Context, topic *entity.Topic) error
	GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Topic, error)
	ListByCompany(ctx context.Context, companyID uint) ([]entity.Topic, error)
}
