package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// TopicRepo реализует repository.TopicRepository
type TopicRepo struct {
	db *gorm.DB
}

// NewTopicRepo создает новый репозиторий тем
func NewTopicRepo(db *gorm.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// Create создает тему. Дубликат имени в компании (уникальный индекс по lower(name)) дает ErrConflict.
func (r *TopicRepo) Create(ctx context.Context, topic *entity.Topic) error {
	return translateError(r.db.WithContext(ctx).Create(topic).Error)
}

// GetByIDAndCompany возвращает тему компании по ID
func (r *TopicRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Topic, error) {
	var topic entity.Topic
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&topic).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &topic, nil
}

// ListByCompany возвращает темы компании по алфавиту
func (r *TopicRepo) ListByCompany(ctx context.Context, companyID uint) ([]entity.Topic, error) {
	var topics []entity.Topic
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name").
		Find(&topics).Error
	return topics, err
}
