package repository

import (
	"context"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ExamRepository определяет методы для работы с экзаменами
type ExamRepository interface {
	// CreateWithQuestions создает экзамен и его вопросы в одной транзакции
	CreateWithQuestions(ctx context.Context, exam *entity.Exam, questions []entity.ExamQuestion) error
	GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Exam, error)
	GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Exam, error)
	ListByCompany(ctx context.Context, companyID uint) ([]entity.Exam, error)
	// GetQuestions возвращает вопросы экзамена в каноническом порядке (по position)
	GetQuestions(ctx context.Context, examID uint) ([]entity.ExamQuestion, error)
	CountTopics(ctx context.Context, examID uint) (int64, error)
	// ExamIDsByQuestion возвращает экзамены, в которые входит вопрос
	ExamIDsByQuestion(ctx context.Context, questionID uint) ([]uint, error)
	// UpdateMetadata обновляет только метаданные: total_questions и вопросы не трогаются
	UpdateMetadata(ctx context.Context, exam *entity.Exam) error
	Delete(ctx context.Context, companyID, id uint) error
}
