package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AssignInput - параметры назначения экзамена сотрудникам
type AssignInput struct {
	ExamID      uint
	EmployeeIDs []uint
	StartTime   *time.Time
	EndTime     *time.Time
	MaxAttempts *int
}

// AssignmentView - назначение с полями экзамена и вычисленным состоянием
type AssignmentView struct {
	ID                uint       `json:"id"`
	ExamID            uint       `json:"exam_id"`
	EmployeeID        uint       `json:"employee_id"`
	ExamTitle         string     `json:"exam_title"`
	ExamDescription   string     `json:"exam_description"`
	DurationMinutes   int        `json:"duration_minutes"`
	TotalQuestions    int        `json:"total_questions"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	MaxAttempts       int        `json:"max_attempts"`
	AttemptsUsed      int        `json:"attempts_used"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	Status            string     `json:"status"`
	CanStart          bool       `json:"can_start"`
	StatusMessage     string     `json:"status_message"`
	AssignedBy        uint       `json:"assigned_by"`
	AssignedByRole    string     `json:"assigned_by_role"`
	CreatedAt         time.Time  `json:"created_at"`
}

// AssignmentService управляет жизненным циклом назначений
type AssignmentService struct {
	examRepo           repository.ExamRepository
	assignmentRepo     repository.AssignmentRepository
	attemptRepo        repository.AttemptRepository
	directory          EmployeeDirectory
	delivery           *DeliveryService
	defaultMaxAttempts int
	now                func() time.Time
}

// NewAssignmentService создает новый сервис назначений
func NewAssignmentService(
	examRepo repository.ExamRepository,
	assignmentRepo repository.AssignmentRepository,
	attemptRepo repository.AttemptRepository,
	directory EmployeeDirectory,
	delivery *DeliveryService,
	defaultMaxAttempts int,
) *AssignmentService {
	if defaultMaxAttempts < 1 {
		defaultMaxAttempts = 1
	}
	return &AssignmentService{
		examRepo:           examRepo,
		assignmentRepo:     assignmentRepo,
		attemptRepo:        attemptRepo,
		directory:          directory,
		delivery:           delivery,
		defaultMaxAttempts: defaultMaxAttempts,
		now:                time.Now,
	}
}

// AssignExam назначает экзамен сотрудникам компании. Уже существующие назначения
// пропускаются, в ответе только созданные.
func (s *AssignmentService) AssignExam(ctx context.Context, identity entity.Identity, in AssignInput) ([]AssignmentView, error) {
	now := s.now()

	exam, err := s.examRepo.GetByIDAndCompany(ctx, identity.CompanyID, in.ExamID)
	if err != nil {
		return nil, err
	}
	if in.StartTime != nil && in.EndTime != nil && in.EndTime.Before(*in.StartTime) {
		return nil, fmt.Errorf("%w: end time must not be before start time", apperrors.ErrValidation)
	}
	maxAttempts := s.defaultMaxAttempts
	if in.MaxAttempts != nil {
		if *in.MaxAttempts < 1 {
			return nil, fmt.Errorf("%w: max attempts must be at least 1", apperrors.ErrValidation)
		}
		maxAttempts = *in.MaxAttempts
	}
	employeeIDs := uniqueIDs(in.EmployeeIDs)
	if len(employeeIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one employee is required", apperrors.ErrValidation)
	}

	employees, err := s.directory.ListCompanyEmployees(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to load company employees: %w", err)
	}
	members := make(map[uint]struct{}, len(employees))
	for _, e := range employees {
		if e.CompanyID == 0 || e.CompanyID == identity.CompanyID {
			members[e.ID] = struct{}{}
		}
	}
	for _, id := range employeeIDs {
		if _, ok := members[id]; !ok {
			return nil, fmt.Errorf("%w: employee not in company: %d", apperrors.ErrValidation, id)
		}
	}

	batch := make([]entity.ExamAssignment, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		batch = append(batch, entity.ExamAssignment{
			CompanyID:      identity.CompanyID,
			ExamID:         exam.ID,
			EmployeeID:     id,
			AssignedBy:     identity.UserID,
			AssignedByRole: identity.Role,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			MaxAttempts:    maxAttempts,
			AttemptsUsed:   0,
			Status:         entity.AssignmentStatusAssigned,
		})
	}

	created, err := s.assignmentRepo.CreateBatchIfAbsent(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignments: %w", err)
	}

	log.Printf("[AssignmentService] Экзамен #%d назначен: создано %d, пропущено %d (компания #%d)",
		exam.ID, len(created), len(batch)-len(created), identity.CompanyID)

	views := make([]AssignmentView, 0, len(created))
	for i := range created {
		views = append(views, buildAssignmentView(&created[i], exam, now))
	}
	return views, nil
}

// ListForEmployee возвращает назначения сотрудника, новые первыми
func (s *AssignmentService) ListForEmployee(ctx context.Context, companyID, employeeID uint) ([]AssignmentView, error) {
	now := s.now()

	assignments, err := s.assignmentRepo.ListByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return s.buildViews(ctx, companyID, assignments, now)
}

// ListForExam возвращает все назначения экзамена для администратора
func (s *AssignmentService) ListForExam(ctx context.Context, companyID, examID uint) ([]AssignmentView, error) {
	now := s.now()

	exam, err := s.examRepo.GetByIDAndCompany(ctx, companyID, examID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByExam(ctx, companyID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	views := make([]AssignmentView, 0, len(assignments))
	for i := range assignments {
		views = append(views, buildAssignmentView(&assignments[i], exam, now))
	}
	return views, nil
}

// StartAssignment открывает сессию прохождения. ASSIGNED переходит в IN_PROGRESS один раз.
func (s *AssignmentService) StartAssignment(ctx context.Context, identity entity.Identity, assignmentID uint) (*DeliverySession, error) {
	now := s.now()

	assignment, err := s.ownAssignment(ctx, identity, assignmentID)
	if err != nil {
		return nil, err
	}

	switch {
	case assignment.IsExpired(now):
		return nil, ErrAssignmentExpired
	case assignment.IsRevoked():
		return nil, ErrAssignmentRevoked
	case assignment.IsCompleted():
		return nil, ErrAssignmentCompleted
	case assignment.IsNotYetOpen(now):
		return nil, ErrWindowNotStarted
	case !assignment.HasAttemptsLeft():
		return nil, ErrNoAttemptsRemaining
	}

	exam, err := s.examRepo.GetByIDAndCompany(ctx, identity.CompanyID, assignment.ExamID)
	if err != nil {
		return nil, err
	}

	session, err := s.delivery.OpenSession(ctx, assignment, exam, now)
	if err != nil {
		return nil, err
	}

	if assignment.Status == entity.AssignmentStatusAssigned {
		marked, err := s.assignmentRepo.MarkInProgress(ctx, identity.CompanyID, assignment.ID)
		if err != nil {
			return nil, err
		}
		if !marked {
			// Статус сменился после проверки: параллельный старт или отзыв
			current, err := s.assignmentRepo.GetByIDAndCompany(ctx, identity.CompanyID, assignment.ID)
			if err != nil {
				return nil, err
			}
			if current.IsRevoked() {
				return nil, ErrAssignmentRevoked
			}
		}
	}

	log.Printf("[AssignmentService] Сотрудник #%d начал назначение #%d (сессия %s)",
		identity.UserID, assignment.ID, session.SessionID)
	return session, nil
}

// RevokeAssignment отзывает активное назначение
func (s *AssignmentService) RevokeAssignment(ctx context.Context, companyID, assignmentID uint) error {
	if err := s.assignmentRepo.Revoke(ctx, companyID, assignmentID); err != nil {
		return err
	}
	log.Printf("[AssignmentService] Назначение #%d отозвано (компания #%d)", assignmentID, companyID)
	return nil
}

// ListAttempts возвращает историю попыток сотрудника по своему назначению
func (s *AssignmentService) ListAttempts(ctx context.Context, identity entity.Identity, assignmentID uint) ([]entity.ExamAttempt, error) {
	assignment, err := s.ownAssignment(ctx, identity, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.attemptRepo.ListByAssignment(ctx, identity.CompanyID, assignment.ID)
}

// ExamAttemptsReport возвращает экзамен и все попытки по нему для выгрузки
func (s *AssignmentService) ExamAttemptsReport(ctx context.Context, companyID, examID uint) (*entity.Exam, []entity.ExamAttempt, error) {
	exam, err := s.examRepo.GetByIDAndCompany(ctx, companyID, examID)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := s.attemptRepo.ListByExam(ctx, companyID, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	return exam, attempts, nil
}

// ownAssignment загружает назначение компании и проверяет, что оно принадлежит вызывающему
func (s *AssignmentService) ownAssignment(ctx context.Context, identity entity.Identity, assignmentID uint) (*entity.ExamAssignment, error) {
	assignment, err := s.assignmentRepo.GetByIDAndCompany(ctx, identity.CompanyID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.EmployeeID != identity.UserID {
		return nil, fmt.Errorf("%w: assignment not accessible", apperrors.ErrForbidden)
	}
	return assignment, nil
}

func (s *AssignmentService) buildViews(ctx context.Context, companyID uint, assignments []entity.ExamAssignment, now time.Time) ([]AssignmentView, error) {
	examIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		examIDs = append(examIDs, a.ExamID)
	}
	exams, err := s.examRepo.GetByIDs(ctx, companyID, uniqueIDs(examIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load exams: %w", err)
	}
	byID := make(map[uint]*entity.Exam, len(exams))
	for i := range exams {
		byID[exams[i].ID] = &exams[i]
	}

	views := make([]AssignmentView, 0, len(assignments))
	for i := range assignments {
		views = append(views, buildAssignmentView(&assignments[i], byID[assignments[i].ExamID], now))
	}
	return views, nil
}

func buildAssignmentView(a *entity.ExamAssignment, exam *entity.Exam, now time.Time) AssignmentView {
	view := AssignmentView{
		ID:                a.ID,
		ExamID:            a.ExamID,
		EmployeeID:        a.EmployeeID,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		MaxAttempts:       a.MaxAttempts,
		AttemptsUsed:      a.AttemptsUsed,
		AttemptsRemaining: a.AttemptsRemaining(),
		Status:            a.DisplayStatus(now),
		CanStart:          a.CanStart(now),
		StatusMessage:     a.StatusMessage(now),
		AssignedBy:        a.AssignedBy,
		AssignedByRole:    a.AssignedByRole,
		CreatedAt:         a.CreatedAt,
	}
	if exam != nil {
		view.ExamTitle = exam.Title
		view.ExamDescription = exam.Description
		view.DurationMinutes = exam.DurationMinutes
		view.TotalQuestions = exam.TotalQuestions
	}
	return view
}

// uniqueIDs убирает повторы и нули, сохраняя порядок
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
