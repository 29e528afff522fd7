package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// QuestionStore - операции банка вопросов, нужные обработчику
type QuestionStore interface {
	CreateTopic(ctx context.Context, identity entity.Identity, name string) (*entity.Topic, error)
	ListTopics(ctx context.Context, companyID uint) ([]entity.Topic, error)
	CreateQuestion(ctx context.Context, identity entity.Identity, in service.QuestionInput) (*entity.Question, error)
	UpdateQuestion(ctx context.Context, companyID, questionID uint, in service.QuestionInput) (*entity.Question, error)
	DeleteQuestion(ctx context.Context, companyID, questionID uint) error
	GetQuestion(ctx context.Context, companyID, questionID uint) (*entity.Question, error)
	ListQuestions(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error)
}

// QuestionHandler обрабатывает запросы к темам и вопросам
type QuestionHandler struct {
	questions QuestionStore
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questions QuestionStore) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// CreateTopic создает тему
func (h *QuestionHandler) CreateTopic(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	topic, err := h.questions.CreateTopic(c.Request.Context(), identity, req.Name)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// ListTopics возвращает темы компании
func (h *QuestionHandler) ListTopics(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	topics, err := h.questions.ListTopics(c.Request.Context(), identity.CompanyID)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// CreateQuestion добавляет вопрос в банк
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.questions.CreateQuestion(c.Request.Context(), identity, req.ToInput())
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion редактирует вопрос
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	questionID, ok := requireParam(c, "questionID")
	if !ok {
		return
	}

	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	question, err := h.questions.UpdateQuestion(c.Request.Context(), identity.CompanyID, questionID, req.ToInput())
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion выводит вопрос из банка
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	questionID, ok := requireParam(c, "questionID")
	if !ok {
		return
	}

	if err := h.questions.DeleteQuestion(c.Request.Context(), identity.CompanyID, questionID); err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetQuestion возвращает активный вопрос
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	questionID, ok := requireParam(c, "questionID")
	if !ok {
		return
	}

	question, err := h.questions.GetQuestion(c.Request.Context(), identity.CompanyID, questionID)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListQuestions возвращает активные вопросы, опционально по теме (?topic_id=)
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var topicID *uint
	if raw := c.Query("topic_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic_id"})
			return
		}
		id := uint(parsed)
		topicID = &id
	}

	questions, err := h.questions.ListQuestions(c.Request.Context(), identity.CompanyID, topicID)
	if err != nil {
		handleError(c, "QuestionHandler", err)
		return
	}
	c.JSON(http.StatusOK, questions)
}
