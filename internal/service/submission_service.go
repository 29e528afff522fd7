package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service/exammanager"
)

// SubmitInput - отправленные ответы по назначению
type SubmitInput struct {
	AssignmentID   uint
	ExamID         uint
	Answers        []exammanager.Answer
	ElapsedSeconds *int
}

// ExamResult - агрегированный результат попытки. Правильность по отдельным вопросам не раскрывается.
type ExamResult struct {
	AttemptID         uint      `json:"attempt_id"`
	AttemptNumber     int       `json:"attempt_number"`
	TotalQuestions    int       `json:"total_questions"`
	CorrectAnswers    int       `json:"correct_answers"`
	Percentage        int       `json:"percentage"`
	Passed            bool      `json:"passed"`
	DurationSeconds   int       `json:"duration_seconds"`
	MaxAttempts       int       `json:"max_attempts"`
	AttemptsUsed      int       `json:"attempts_used"`
	AttemptsRemaining int       `json:"attempts_remaining"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// SubmissionService проверяет, оценивает и сохраняет попытки
type SubmissionService struct {
	examRepo       repository.ExamRepository
	questionRepo   repository.QuestionRepository
	assignmentRepo repository.AssignmentRepository
	attemptRepo    repository.AttemptRepository
	now            func() time.Time
}

// NewSubmissionService создает новый сервис оценки попыток
func NewSubmissionService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.AssignmentRepository,
	attemptRepo repository.AttemptRepository,
) *SubmissionService {
	return &SubmissionService{
		examRepo:       examRepo,
		questionRepo:   questionRepo,
		assignmentRepo: assignmentRepo,
		attemptRepo:    attemptRepo,
		now:            time.Now,
	}
}

// Submit оценивает попытку. Проверки идут в фиксированном порядке, первая неудача
// прерывает операцию без записи.
func (s *SubmissionService) Submit(ctx context.Context, identity entity.Identity, in SubmitInput) (*ExamResult, error) {
	now := s.now()

	// 1. Назначение существует и принадлежит вызывающему
	assignment, err := s.assignmentRepo.GetByIDAndCompany(ctx, identity.CompanyID, in.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.EmployeeID != identity.UserID {
		return nil, fmt.Errorf("%w: assignment not accessible", apperrors.ErrForbidden)
	}

	// 2. Назначение не отозвано
	if assignment.IsRevoked() {
		return nil, ErrAssignmentRevoked
	}

	// 3. Экзамен компании и именно тот, что назначен
	exam, err := s.examRepo.GetByIDAndCompany(ctx, identity.CompanyID, in.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.ID != assignment.ExamID {
		return nil, fmt.Errorf("%w: exam %d does not match assignment", apperrors.ErrValidation, in.ExamID)
	}

	// 4. Окно назначения
	if assignment.IsNotYetOpen(now) {
		return nil, ErrWindowNotStarted
	}
	if assignment.IsExpired(now) {
		return nil, ErrWindowEnded
	}

	// 5. Бюджет попыток
	if !assignment.HasAttemptsLeft() {
		return nil, fmt.Errorf("%w: %d of %d used", ErrNoAttemptsRemaining, assignment.AttemptsUsed, assignment.MaxAttempts)
	}

	// 6. Ответы против канонического набора
	canonical, err := s.examRepo.GetQuestions(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}
	if len(canonical) != exam.TotalQuestions {
		log.Printf("[SubmissionService] WARN: экзамен #%d: total_questions=%d, фактически вопросов %d",
			exam.ID, exam.TotalQuestions, len(canonical))
	}
	selected, err := exammanager.ValidateAnswers(canonical, in.Answers)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(canonical))
	for i, eq := range canonical {
		ids[i] = eq.QuestionID
	}
	questions, err := s.questionRepo.GetByIDs(ctx, identity.CompanyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	graded := exammanager.Grade(canonical, byID, selected)
	passed := exam.IsPassed(graded.Percentage)

	attempt := &entity.ExamAttempt{
		CompanyID:       identity.CompanyID,
		ExamID:          exam.ID,
		AssignmentID:    assignment.ID,
		EmployeeID:      identity.UserID,
		AttemptNumber:   assignment.AttemptsUsed + 1,
		TotalQuestions:  graded.Total,
		CorrectAnswers:  graded.Correct,
		Percentage:      graded.Percentage,
		Passed:          passed,
		DurationSeconds: exammanager.ClampDuration(in.ElapsedSeconds, exam.DurationMinutes),
		Status:          entity.AttemptStatusSubmitted,
		SubmittedAt:     now,
		Answers:         graded.Answers,
	}

	updated, err := s.attemptRepo.RecordAttempt(ctx, attempt, assignment.AttemptsUsed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAttemptBudgetConflict):
			log.Printf("[SubmissionService] Конфликт бюджета попыток по назначению #%d: %v", assignment.ID, err)
			return nil, ErrNoAttemptsRemaining
		case errors.Is(err, repository.ErrAssignmentRevoked):
			return nil, ErrAssignmentRevoked
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	log.Printf("[SubmissionService] Попытка #%d по назначению #%d оценена: %d%% (%d/%d), сдано=%v",
		attempt.AttemptNumber, assignment.ID, attempt.Percentage, attempt.CorrectAnswers, attempt.TotalQuestions, passed)

	return &ExamResult{
		AttemptID:         attempt.ID,
		AttemptNumber:     attempt.AttemptNumber,
		TotalQuestions:    attempt.TotalQuestions,
		CorrectAnswers:    attempt.CorrectAnswers,
		Percentage:        attempt.Percentage,
		Passed:            attempt.Passed,
		DurationSeconds:   attempt.DurationSeconds,
		MaxAttempts:       updated.MaxAttempts,
		AttemptsUsed:      updated.AttemptsUsed,
		AttemptsRemaining: updated.AttemptsRemaining(),
		SubmittedAt:       attempt.SubmittedAt,
	}, nil
}
