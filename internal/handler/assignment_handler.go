package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// AssignmentManager - операции жизненного цикла назначений, нужные обработчикам
type AssignmentManager interface {
	AssignExam(ctx context.Context, identity entity.Identity, in service.AssignInput) ([]service.AssignmentView, error)
	ListForEmployee(ctx context.Context, companyID, employeeID uint) ([]service.AssignmentView, error)
	ListForExam(ctx context.Context, companyID, examID uint) ([]service.AssignmentView, error)
	StartAssignment(ctx context.Context, identity entity.Identity, assignmentID uint) (*service.DeliverySession, error)
	RevokeAssignment(ctx context.Context, companyID, assignmentID uint) error
	ListAttempts(ctx context.Context, identity entity.Identity, assignmentID uint) ([]entity.ExamAttempt, error)
	ExamAttemptsReport(ctx context.Context, companyID, examID uint) (*entity.Exam, []entity.ExamAttempt, error)
}

// AssignmentHandler обрабатывает запросы к назначениям экзаменов
type AssignmentHandler struct {
	assignments AssignmentManager
}

// NewAssignmentHandler создает новый обработчик назначений
func NewAssignmentHandler(assignments AssignmentManager) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// AssignExam назначает экзамен списку сотрудников. Повторное назначение пропускается.
func (h *AssignmentHandler) AssignExam(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.AssignExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.assignments.AssignExam(c.Request.Context(), identity, req.ToInput())
	if err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"created":       created,
		"created_count": len(created),
	})
}

// ListMyAssignments возвращает назначения текущего сотрудника
func (h *AssignmentHandler) ListMyAssignments(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	views, err := h.assignments.ListForEmployee(c.Request.Context(), identity.CompanyID, identity.UserID)
	if err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListExamAssignments возвращает все назначения экзамена (для администратора)
func (h *AssignmentHandler) ListExamAssignments(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	views, err := h.assignments.ListForExam(c.Request.Context(), identity.CompanyID, examID)
	if err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// StartAssignment открывает сессию сдачи и возвращает вопросы в перемешанном порядке
func (h *AssignmentHandler) StartAssignment(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := requireParam(c, "assignmentID")
	if !ok {
		return
	}

	session, err := h.assignments.StartAssignment(c.Request.Context(), identity, assignmentID)
	if err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RevokeAssignment отзывает активное назначение
func (h *AssignmentHandler) RevokeAssignment(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := requireParam(c, "assignmentID")
	if !ok {
		return
	}

	if err := h.assignments.RevokeAssignment(c.Request.Context(), identity.CompanyID, assignmentID); err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	log.Printf("[AssignmentHandler] Назначение #%d отозвано пользователем %d", assignmentID, identity.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Assignment revoked"})
}

// ListAttempts возвращает историю попыток сотрудника по назначению
func (h *AssignmentHandler) ListAttempts(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	assignmentID, ok := requireParam(c, "assignmentID")
	if !ok {
		return
	}

	attempts, err := h.assignments.ListAttempts(c.Request.Context(), identity, assignmentID)
	if err != nil {
		handleError(c, "AssignmentHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptSummaries(attempts))
}
