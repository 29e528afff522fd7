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
)

// QuestionInput - данные для создания или редактирования вопроса
type QuestionInput struct {
	TopicID       uint
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
}

// QuestionService управляет темами и банком вопросов компании
type QuestionService struct {
	topicRepo    repository.TopicRepository
	questionRepo repository.QuestionRepository
	delivery     *DeliveryService
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(topicRepo repository.TopicRepository, questionRepo repository.QuestionRepository, delivery *DeliveryService) *QuestionService {
	return &QuestionService{
		topicRepo:    topicRepo,
		questionRepo: questionRepo,
		delivery:     delivery,
	}
}

// CreateTopic создает тему в компании вызывающего
func (s *QuestionService) CreateTopic(ctx context.Context, identity entity.Identity, name string) (*entity.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: topic name is required", apperrors.ErrValidation)
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("%w: topic name must be at most 100 characters", apperrors.ErrValidation)
	}

	topic := &entity.Topic{CompanyID: identity.CompanyID, Name: name}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: topic %q already exists", apperrors.ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	log.Printf("[QuestionService] Тема #%d '%s' создана в компании #%d", topic.ID, topic.Name, topic.CompanyID)
	return topic, nil
}

// ListTopics возвращает темы компании
func (s *QuestionService) ListTopics(ctx context.Context, companyID uint) ([]entity.Topic, error) {
	return s.topicRepo.ListByCompany(ctx, companyID)
}

// CreateQuestion создает активный вопрос в теме компании
func (s *QuestionService) CreateQuestion(ctx context.Context, identity entity.Identity, in QuestionInput) (*entity.Question, error) {
	in, err := normalizeQuestionInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.topicRepo.GetByIDAndCompany(ctx, identity.CompanyID, in.TopicID); err != nil {
		return nil, topicLookupError(err, in.TopicID)
	}

	exists, err := s.questionRepo.ExistsActiveByText(ctx, identity.CompanyID, in.Text, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check question text: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: question with similar text already exists", apperrors.ErrConflict)
	}

	question := &entity.Question{
		CompanyID:     identity.CompanyID,
		TopicID:       in.TopicID,
		Text:          in.Text,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: in.CorrectAnswer,
		IsActive:      true,
		CreatedBy:     identity.UserID,
		CreatedByRole: identity.Role,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// UpdateQuestion редактирует активный вопрос. Проверка уникальности пропускается,
// если текст не изменился (без учета регистра).
func (s *QuestionService) UpdateQuestion(ctx context.Context, companyID, questionID uint, in QuestionInput) (*entity.Question, error) {
	in, err := normalizeQuestionInput(in)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByIDAndCompany(ctx, companyID, questionID)
	if err != nil {
		return nil, err
	}
	if in.TopicID != question.TopicID {
		if _, err := s.topicRepo.GetByIDAndCompany(ctx, companyID, in.TopicID); err != nil {
			return nil, topicLookupError(err, in.TopicID)
		}
	}
	if !strings.EqualFold(question.Text, in.Text) {
		exists, err := s.questionRepo.ExistsActiveByText(ctx, companyID, in.Text, questionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check question text: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: question with similar text already exists", apperrors.ErrConflict)
		}
	}

	question.TopicID = in.TopicID
	question.Text = in.Text
	question.OptionA = in.OptionA
	question.OptionB = in.OptionB
	question.OptionC = in.OptionC
	question.OptionD = in.OptionD
	question.CorrectAnswer = in.CorrectAnswer
	question.Topic = nil

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, err
	}
	// Вопрос уже может входить в составленные экзамены
	if err := s.delivery.InvalidateQuestion(ctx, question.ID); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion мягко удаляет вопрос. Уже составленные экзамены продолжают на него ссылаться.
func (s *QuestionService) DeleteQuestion(ctx context.Context, companyID, questionID uint) error {
	if err := s.questionRepo.Deactivate(ctx, companyID, questionID); err != nil {
		return err
	}
	log.Printf("[QuestionService] Вопрос #%d деактивирован в компании #%d", questionID, companyID)
	return nil
}

// GetQuestion возвращает активный вопрос компании
func (s *QuestionService) GetQuestion(ctx context.Context, companyID, questionID uint) (*entity.Question, error) {
	return s.questionRepo.GetByIDAndCompany(ctx, companyID, questionID)
}

// ListQuestions возвращает активные вопросы компании, опционально по теме
func (s *QuestionService) ListQuestions(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error) {
	return s.questionRepo.ListActive(ctx, companyID, topicID)
}

func normalizeQuestionInput(in QuestionInput) (QuestionInput, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.OptionA = strings.TrimSpace(in.OptionA)
	in.OptionB = strings.TrimSpace(in.OptionB)
	in.OptionC = strings.TrimSpace(in.OptionC)
	in.OptionD = strings.TrimSpace(in.OptionD)
	in.CorrectAnswer = entity.NormalizeOption(in.CorrectAnswer)

	if in.TopicID == 0 {
		return in, fmt.Errorf("%w: topic id is required", apperrors.ErrValidation)
	}
	if in.Text == "" {
		return in, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if in.OptionA == "" || in.OptionB == "" || in.OptionC == "" || in.OptionD == "" {
		return in, fmt.Errorf("%w: all four options are required", apperrors.ErrValidation)
	}
	if !entity.IsValidOption(in.CorrectAnswer) {
		return in, fmt.Errorf("%w: correct answer must be one of A, B, C, D", apperrors.ErrValidation)
	}
	return in, nil
}

func topicLookupError(err error, topicID uint) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: topic not found in company: %d", apperrors.ErrNotFound, topicID)
	}
	return fmt.Errorf("failed to load topic #%d: %w", topicID, err)
}
