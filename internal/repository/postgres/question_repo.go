package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return translateError(r.db.WithContext(ctx).Create(question).Error)
}

// Update точечно обновляет редактируемые поля вопроса
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	result := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id = ? AND company_id = ? AND is_active = ?", question.ID, question.CompanyID, true).
		Updates(map[string]interface{}{
			"topic_id":       question.TopicID,
			"question_text":  question.Text,
			"option_a":       question.OptionA,
			"option_b":       question.OptionB,
			"option_c":       question.OptionC,
			"option_d":       question.OptionD,
			"correct_answer": question.CorrectAnswer,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByIDAndCompany возвращает активный вопрос компании
func (r *QuestionRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("id = ? AND company_id = ? AND is_active = ?", id, companyID, true).
		First(&question).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

// ExistsActiveByText проверяет наличие активного вопроса с таким же текстом (без учета регистра)
func (r *QuestionRepo) ExistsActiveByText(ctx context.Context, companyID uint, text string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("company_id = ? AND is_active = ? AND lower(question_text) = ?", companyID, true, strings.ToLower(text))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Deactivate выполняет мягкое удаление вопроса
func (r *QuestionRepo) Deactivate(ctx context.Context, companyID, id uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id = ? AND company_id = ? AND is_active = ?", id, companyID, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListActive возвращает активные вопросы компании, новые первыми; topicID сужает выборку
func (r *QuestionRepo) ListActive(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error) {
	var questions []entity.Question
	query := r.db.WithContext(ctx).
		Preload("Topic").
		Where("company_id = ? AND is_active = ?", companyID, true)
	if topicID != nil {
		query = query.Where("topic_id = ?", *topicID)
	}
	err := query.Order("created_at DESC, id DESC").Find(&questions).Error
	return questions, err
}

// GetActiveIDsByTopic возвращает ID активных вопросов темы
func (r *QuestionRepo) GetActiveIDsByTopic(ctx context.Context, companyID, topicID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("company_id = ? AND topic_id = ? AND is_active = ?", companyID, topicID, true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// GetByIDs возвращает вопросы компании по набору ID без фильтра активности
func (r *QuestionRepo) GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&questions).Error
	return questions, err
}
