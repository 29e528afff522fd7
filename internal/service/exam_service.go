package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service/exammanager"
)

// TopicRequest - сколько вопросов взять из темы
type TopicRequest struct {
	TopicID uint
	Count   int
}

// ComposeExamInput - параметры составления экзамена
type ComposeExamInput struct {
	Title             string
	Description       string
	DurationMinutes   int
	PassingPercentage *int
	Topics            []TopicRequest
}

// UpdateExamInput - редактируемые метаданные экзамена
type UpdateExamInput struct {
	Title             string
	Description       string
	DurationMinutes   int
	PassingPercentage *int
}

// ExamDetails - экзамен с количеством различных тем среди его вопросов
type ExamDetails struct {
	Exam               *entity.Exam
	SelectedTopicCount int
}

// ExamService составляет экзамены и управляет их метаданными
type ExamService struct {
	examRepo       repository.ExamRepository
	topicRepo      repository.TopicRepository
	questionRepo   repository.QuestionRepository
	assignmentRepo repository.AssignmentRepository
	delivery       *DeliveryService
	shuffler       exammanager.Shuffler
}

// NewExamService создает новый сервис экзаменов
func NewExamService(
	examRepo repository.ExamRepository,
	topicRepo repository.TopicRepository,
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.AssignmentRepository,
	delivery *DeliveryService,
	shuffler exammanager.Shuffler,
) *ExamService {
	return &ExamService{
		examRepo:       examRepo,
		topicRepo:      topicRepo,
		questionRepo:   questionRepo,
		assignmentRepo: assignmentRepo,
		delivery:       delivery,
		shuffler:       shuffler,
	}
}

// ComposeExam составляет экзамен стратифицированной случайной выборкой по темам.
// Все проверки выполняются до записи; экзамен и его вопросы сохраняются одной транзакцией.
func (s *ExamService) ComposeExam(ctx context.Context, identity entity.Identity, in ComposeExamInput) (*entity.Exam, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be greater than 0", apperrors.ErrValidation)
	}
	passing, err := passingPercentage(in.PassingPercentage)
	if err != nil {
		return nil, err
	}
	if len(in.Topics) == 0 {
		return nil, fmt.Errorf("%w: at least one topic is required", apperrors.ErrValidation)
	}
	seen := make(map[uint]struct{}, len(in.Topics))
	for _, t := range in.Topics {
		if t.TopicID == 0 || t.Count < 1 {
			return nil, fmt.Errorf("%w: each topic must include topicId and questionsCount >= 1", apperrors.ErrValidation)
		}
		if _, dup := seen[t.TopicID]; dup {
			return nil, fmt.Errorf("%w: duplicate topic: %d", apperrors.ErrValidation, t.TopicID)
		}
		seen[t.TopicID] = struct{}{}
	}

	draws := make([]exammanager.TopicDraw, 0, len(in.Topics))
	total := 0
	for _, t := range in.Topics {
		if _, err := s.topicRepo.GetByIDAndCompany(ctx, identity.CompanyID, t.TopicID); err != nil {
			return nil, topicLookupError(err, t.TopicID)
		}
		pool, err := s.questionRepo.GetActiveIDsByTopic(ctx, identity.CompanyID, t.TopicID)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions of topic #%d: %w", t.TopicID, err)
		}
		if len(pool) < t.Count {
			return nil, fmt.Errorf("%w: topic %d has %d, requested %d", ErrInsufficientPool, t.TopicID, len(pool), t.Count)
		}
		draws = append(draws, exammanager.TopicDraw{TopicID: t.TopicID, Count: t.Count, Pool: pool})
		total += t.Count
	}

	ordered, err := exammanager.ComposeOrder(s.shuffler, draws)
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}

	exam := &entity.Exam{
		CompanyID:         identity.CompanyID,
		Title:             title,
		Description:       strings.TrimSpace(in.Description),
		DurationMinutes:   in.DurationMinutes,
		PassingPercentage: passing,
		TotalQuestions:    total,
		CreatedBy:         identity.UserID,
		CreatedByRole:     identity.Role,
	}
	if err := s.examRepo.CreateWithQuestions(ctx, exam, exammanager.AssignPositions(ordered)); err != nil {
		if errors.Is(err, repository.ErrQuestionsChanged) {
			return nil, fmt.Errorf("%w: question bank changed during composition, retry: %v", apperrors.ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	log.Printf("[ExamService] Экзамен #%d '%s' составлен: %d вопросов из %d тем (компания #%d)",
		exam.ID, exam.Title, exam.TotalQuestions, len(draws), exam.CompanyID)
	return exam, nil
}

// GetExam возвращает экзамен компании с количеством тем
func (s *ExamService) GetExam(ctx context.Context, companyID, examID uint) (*ExamDetails, error) {
	exam, err := s.examRepo.GetByIDAndCompany(ctx, companyID, examID)
	if err != nil {
		return nil, err
	}
	topics, err := s.examRepo.CountTopics(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count exam topics: %w", err)
	}
	return &ExamDetails{Exam: exam, SelectedTopicCount: int(topics)}, nil
}

// ListExams возвращает экзамены компании
func (s *ExamService) ListExams(ctx context.Context, companyID uint) ([]entity.Exam, error) {
	return s.examRepo.ListByCompany(ctx, companyID)
}

// UpdateExam меняет только метаданные. Набор вопросов и total_questions не пересчитываются.
func (s *ExamService) UpdateExam(ctx context.Context, identity entity.Identity, examID uint, in UpdateExamInput) (*entity.Exam, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be greater than 0", apperrors.ErrValidation)
	}

	exam, err := s.examRepo.GetByIDAndCompany(ctx, identity.CompanyID, examID)
	if err != nil {
		return nil, err
	}
	passing := exam.PassingPercentage
	if in.PassingPercentage != nil {
		if passing, err = passingPercentage(in.PassingPercentage); err != nil {
			return nil, err
		}
	}

	updatedBy := identity.UserID
	exam.Title = title
	exam.Description = strings.TrimSpace(in.Description)
	exam.DurationMinutes = in.DurationMinutes
	exam.PassingPercentage = passing
	exam.UpdatedBy = &updatedBy
	exam.UpdatedByRole = identity.Role

	if err := s.examRepo.UpdateMetadata(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// DeleteExam удаляет экзамен без назначений вместе с его вопросами
func (s *ExamService) DeleteExam(ctx context.Context, companyID, examID uint) error {
	if _, err := s.examRepo.GetByIDAndCompany(ctx, companyID, examID); err != nil {
		return err
	}
	count, err := s.assignmentRepo.CountByExam(ctx, companyID, examID)
	if err != nil {
		return fmt.Errorf("failed to count assignments: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: exam #%d has %d assignments", apperrors.ErrConflict, examID, count)
	}

	if err := s.examRepo.Delete(ctx, companyID, examID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	s.delivery.InvalidateExam(ctx, examID)

	log.Printf("[ExamService] Экзамен #%d удален (компания #%d)", examID, companyID)
	return nil
}

// PreviewQuestions возвращает вопросы экзамена в каноническом порядке без ответов
func (s *ExamService) PreviewQuestions(ctx context.Context, companyID, examID uint) ([]DeliveryQuestion, error) {
	exam, err := s.examRepo.GetByIDAndCompany(ctx, companyID, examID)
	if err != nil {
		return nil, err
	}
	return s.delivery.CanonicalQuestions(ctx, exam)
}

func passingPercentage(value *int) (int, error) {
	if value == nil {
		return 0, nil
	}
	if *value < 0 || *value > 100 {
		return 0, fmt.Errorf("%w: passing percentage must be between 0 and 100", apperrors.ErrValidation)
	}
	return *value, nil
}
