package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ExamRepo реализует repository.ExamRepository
type ExamRepo struct {
	db *gorm.DB
}

// NewExamRepo создает новый репозиторий экзаменов
func NewExamRepo(db *gorm.DB) *ExamRepo {
	return &ExamRepo{db: db}
}

// CreateWithQuestions создает экзамен и все его вопросы в одной транзакции.
// Выбранные вопросы блокируются FOR SHARE и перепроверяются на активность,
// поэтому параллельная деактивация либо ждет коммита, либо отменяет составление.
func (r *ExamRepo) CreateWithQuestions(ctx context.Context, exam *entity.Exam, questions []entity.ExamQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(questions) > 0 {
			ids := make([]uint, len(questions))
			for i, q := range questions {
				ids[i] = q.QuestionID
			}
			var active []uint
			if err := tx.Model(&entity.Question{}).
				Clauses(clause.Locking{Strength: "SHARE"}).
				Where("id IN ? AND company_id = ? AND is_active = ?", ids, exam.CompanyID, true).
				Pluck("id", &active).Error; err != nil {
				return fmt.Errorf("lock selected questions: %w", err)
			}
			if len(active) != len(ids) {
				return fmt.Errorf("%w: %d of %d selected questions are active",
					repository.ErrQuestionsChanged, len(active), len(ids))
			}
		}
		if err := tx.Omit("Questions").Create(exam).Error; err != nil {
			return fmt.Errorf("create exam: %w", translateError(err))
		}
		for i := range questions {
			questions[i].ExamID = exam.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("create exam questions: %w", translateError(err))
			}
		}
		exam.Questions = questions
		return nil
	})
}

// GetByIDAndCompany возвращает экзамен компании по ID
func (r *ExamRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Exam, error) {
	var exam entity.Exam
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&exam).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &exam, nil
}

// GetByIDs возвращает экзамены компании по набору ID
func (r *ExamRepo) GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Exam, error) {
	if len(ids) == 0 {
		return []entity.Exam{}, nil
	}
	var exams []entity.Exam
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&exams).Error
	return exams, err
}

// ListByCompany возвращает экзамены компании, новые первыми
func (r *ExamRepo) ListByCompany(ctx context.Context, companyID uint) ([]entity.Exam, error) {
	var exams []entity.Exam
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Find(&exams).Error
	return exams, err
}

// GetQuestions возвращает вопросы экзамена в каноническом порядке
func (r *ExamRepo) GetQuestions(ctx context.Context, examID uint) ([]entity.ExamQuestion, error) {
	var questions []entity.ExamQuestion
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("position").
		Find(&questions).Error
	return questions, err
}

// CountTopics возвращает количество различных тем среди вопросов экзамена
func (r *ExamRepo) CountTopics(ctx context.Context, examID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("exam_questions AS eq").
		Joins("JOIN questions q ON q.id = eq.question_id").
		Where("eq.exam_id = ?", examID).
		Distinct("q.topic_id").
		Count(&count).Error
	return count, err
}

// ExamIDsByQuestion возвращает ID экзаменов, ссылающихся на вопрос
func (r *ExamRepo) ExamIDsByQuestion(ctx context.Context, questionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.ExamQuestion{}).
		Where("question_id = ?", questionID).
		Distinct().
		Pluck("exam_id", &ids).Error
	return ids, err
}

// UpdateMetadata обновляет название, описание, длительность и порог прохождения
func (r *ExamRepo) UpdateMetadata(ctx context.Context, exam *entity.Exam) error {
	result := r.db.WithContext(ctx).Model(&entity.Exam{}).
		Where("id = ? AND company_id = ?", exam.ID, exam.CompanyID).
		Updates(map[string]interface{}{
			"title":              exam.Title,
			"description":        exam.Description,
			"duration_minutes":   exam.DurationMinutes,
			"passing_percentage": exam.PassingPercentage,
			"updated_by":         exam.UpdatedBy,
			"updated_by_role":    exam.UpdatedByRole,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет экзамен вместе с его вопросами
func (r *ExamRepo) Delete(ctx context.Context, companyID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exam entity.Exam
		if err := tx.Where("id = ? AND company_id = ?", id, companyID).First(&exam).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("exam_id = ?", id).Delete(&entity.ExamQuestion{}).Error; err != nil {
			return fmt.Errorf("delete exam questions: %w", err)
		}
		if err := tx.Delete(&exam).Error; err != nil {
			return fmt.Errorf("delete exam: %w", translateError(err))
		}
		return nil
	})
}
