package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service/exammanager"
)

// DeliveryQuestion - вопрос для прохождения без правильного ответа
type DeliveryQuestion struct {
	ID      uint   `json:"id"`
	TopicID uint   `json:"topic_id,omitempty"`
	Text    string `json:"text"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
}

// DeliverySession - набор вопросов для одной сессии прохождения в случайном порядке
type DeliverySession struct {
	SessionID       string             `json:"session_id"`
	AssignmentID    uint               `json:"assignment_id"`
	ExamID          uint               `json:"exam_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	DurationMinutes int                `json:"duration_minutes"`
	StartedAt       time.Time          `json:"started_at"`
	Questions       []DeliveryQuestion `json:"questions"`
}

// DeliveryService собирает вопросы экзамена для показа сотруднику.
// Канонический список кешируется, перемешивание выполняется заново для каждой сессии.
type DeliveryService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	shuffler     exammanager.Shuffler
	cacheTTL     time.Duration
}

// NewDeliveryService создает новый сервис выдачи вопросов. cacheTTL == 0 отключает кеш.
func NewDeliveryService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	shuffler exammanager.Shuffler,
	cacheTTL time.Duration,
) *DeliveryService {
	return &DeliveryService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		shuffler:     shuffler,
		cacheTTL:     cacheTTL,
	}
}

func deliveryCacheKey(examID uint) string {
	return fmt.Sprintf("exam:%d:delivery", examID)
}

// CanonicalQuestions возвращает вопросы экзамена в порядке position без правильных ответов
func (s *DeliveryService) CanonicalQuestions(ctx context.Context, exam *entity.Exam) ([]DeliveryQuestion, error) {
	key := deliveryCacheKey(exam.ID)
	if s.cacheEnabled() {
		var cached []DeliveryQuestion
		err := s.cacheRepo.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[DeliveryService] Ошибка чтения кеша %s: %v", key, err)
		}
	}

	examQuestions, err := s.examRepo.GetQuestions(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}
	if len(examQuestions) != exam.TotalQuestions {
		log.Printf("[DeliveryService] WARN: экзамен #%d: total_questions=%d, фактически вопросов %d",
			exam.ID, exam.TotalQuestions, len(examQuestions))
	}

	ids := make([]uint, len(examQuestions))
	for i, eq := range examQuestions {
		ids[i] = eq.QuestionID
	}
	questions, err := s.questionRepo.GetByIDs(ctx, exam.CompanyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	views := make([]DeliveryQuestion, 0, len(examQuestions))
	for _, eq := range examQuestions {
		q, ok := byID[eq.QuestionID]
		if !ok {
			continue
		}
		views = append(views, DeliveryQuestion{
			ID:      q.ID,
			TopicID: q.TopicID,
			Text:    q.Text,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
		})
	}

	if s.cacheEnabled() {
		if err := s.cacheRepo.SetJSON(ctx, key, views, s.cacheTTL); err != nil {
			log.Printf("[DeliveryService] Ошибка записи кеша %s: %v", key, err)
		}
	}
	return views, nil
}

// OpenSession формирует сессию прохождения с новым случайным порядком вопросов.
// Канонические позиции не меняются: оценка сопоставляет ответы по ID вопроса.
func (s *DeliveryService) OpenSession(ctx context.Context, assignment *entity.ExamAssignment, exam *entity.Exam, startedAt time.Time) (*DeliverySession, error) {
	canonical, err := s.CanonicalQuestions(ctx, exam)
	if err != nil {
		return nil, err
	}

	// TopicID нужен только администраторам в превью
	shuffled := exammanager.ShuffleCopy(s.shuffler, canonical)
	for i := range shuffled {
		shuffled[i].TopicID = 0
	}

	return &DeliverySession{
		SessionID:       uuid.NewString(),
		AssignmentID:    assignment.ID,
		ExamID:          exam.ID,
		Title:           exam.Title,
		Description:     exam.Description,
		DurationMinutes: exam.DurationMinutes,
		StartedAt:       startedAt,
		Questions:       shuffled,
	}, nil
}

// InvalidateExam удаляет закешированный список вопросов экзамена
func (s *DeliveryService) InvalidateExam(ctx context.Context, examID uint) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cacheRepo.Delete(ctx, deliveryCacheKey(examID)); err != nil {
		log.Printf("[DeliveryService] Ошибка удаления кеша экзамена #%d: %v", examID, err)
	}
}

// InvalidateQuestion удаляет закешированные списки всех экзаменов, в которые входит вопрос.
// Вызывается после редактирования: выдача должна совпадать с ключом, по которому идет оценка.
func (s *DeliveryService) InvalidateQuestion(ctx context.Context, questionID uint) error {
	if !s.cacheEnabled() {
		return nil
	}
	examIDs, err := s.examRepo.ExamIDsByQuestion(ctx, questionID)
	if err != nil {
		return fmt.Errorf("failed to find exams of question #%d: %w", questionID, err)
	}
	for _, examID := range examIDs {
		s.InvalidateExam(ctx, examID)
	}
	return nil
}

func (s *DeliveryService) cacheEnabled() bool {
	return s.cacheRepo != nil && s.cacheTTL > 0
}
