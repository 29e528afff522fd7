package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// ExamComposer - операции над экзаменами, нужные обработчику
type ExamComposer interface {
	ComposeExam(ctx context.Context, identity entity.Identity, in service.ComposeExamInput) (*entity.Exam, error)
	GetExam(ctx context.Context, companyID, examID uint) (*service.ExamDetails, error)
	ListExams(ctx context.Context, companyID uint) ([]entity.Exam, error)
	UpdateExam(ctx context.Context, identity entity.Identity, examID uint, in service.UpdateExamInput) (*entity.Exam, error)
	DeleteExam(ctx context.Context, companyID, examID uint) error
	PreviewQuestions(ctx context.Context, companyID, examID uint) ([]service.DeliveryQuestion, error)
}

// ExamHandler обрабатывает запросы, связанные с экзаменами
type ExamHandler struct {
	exams ExamComposer
}

// NewExamHandler создает новый обработчик экзаменов
func NewExamHandler(exams ExamComposer) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// ComposeExam составляет экзамен из случайной выборки по темам
func (h *ExamHandler) ComposeExam(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.ComposeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	exam, err := h.exams.ComposeExam(c.Request.Context(), identity, req.ToInput())
	if err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewExamResponse(exam))
}

// GetExam возвращает экзамен с количеством тем
func (h *ExamHandler) GetExam(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	details, err := h.exams.GetExam(c.Request.Context(), identity.CompanyID, examID)
	if err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewExamDetailsResponse(details))
}

// ListExams возвращает экзамены компании
func (h *ExamHandler) ListExams(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	exams, err := h.exams.ListExams(c.Request.Context(), identity.CompanyID)
	if err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewExamListResponse(exams))
}

// UpdateExam меняет метаданные экзамена
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	exam, err := h.exams.UpdateExam(c.Request.Context(), identity, examID, req.ToInput())
	if err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewExamResponse(exam))
}

// DeleteExam удаляет экзамен без назначений
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	if err := h.exams.DeleteExam(c.Request.Context(), identity.CompanyID, examID); err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewQuestions возвращает вопросы экзамена в каноническом порядке без ответов
func (h *ExamHandler) PreviewQuestions(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	questions, err := h.exams.PreviewQuestions(c.Request.Context(), identity.CompanyID, examID)
	if err != nil {
		handleError(c, "ExamHandler", err)
		return
	}
	c.JSON(http.StatusOK, questions)
}
