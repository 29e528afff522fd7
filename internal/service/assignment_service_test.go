package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/internal/service/exammanager"
)

type assignmentServiceFixture struct {
	examRepo       *MockExamRepo
	questionRepo   *MockQuestionRepo
	assignmentRepo *MockAssignmentRepo
	attemptRepo    *MockAttemptRepo
	directory      *MockDirectory
	service        *AssignmentService
}

func newAssignmentServiceFixture() *assignmentServiceFixture {
	f := &assignmentServiceFixture{
		examRepo:       new(MockExamRepo),
		questionRepo:   new(MockQuestionRepo),
		assignmentRepo: new(MockAssignmentRepo),
		attemptRepo:    new(MockAttemptRepo),
		directory:      new(MockDirectory),
	}
	delivery := NewDeliveryService(f.examRepo, f.questionRepo, nil, exammanager.NewSeededShuffler(5), 0)
	f.service = NewAssignmentService(f.examRepo, f.assignmentRepo, f.attemptRepo, f.directory, delivery, 1)
	f.service.now = fixedClock()
	return f
}

var assignedExam = &entity.Exam{ID: 3, CompanyID: 10, Title: "Охрана труда", DurationMinutes: 20, TotalQuestions: 2}

// ============================================================================
// AssignExam
// ============================================================================

func TestAssignmentService_AssignExam_CreatesOnlyNew(t *testing.T) {
	// Arrange
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	f.directory.On("ListCompanyEmployees", testCtx, testAdmin).Return([]entity.Employee{
		{ID: 7, CompanyID: 10}, {ID: 8, CompanyID: 10},
	}, nil)

	var batch []entity.ExamAssignment
	f.assignmentRepo.On("CreateBatchIfAbsent", testCtx, mock.AnythingOfType("[]entity.ExamAssignment")).
		Run(func(args mock.Arguments) {
			batch = args.Get(1).([]entity.ExamAssignment)
		}).
		Return([]entity.ExamAssignment{
			{ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 8, MaxAttempts: 2, Status: entity.AssignmentStatusAssigned},
		}, nil)

	// Act: 7 уже назначен, повтор 8 в запросе схлопывается
	views, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{
		ExamID:      3,
		EmployeeIDs: []uint{7, 8, 8},
		MaxAttempts: intPtr(2),
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, batch, 2, "Повторы в запросе не должны попадать в пакет")
	for _, a := range batch {
		assert.Equal(t, entity.AssignmentStatusAssigned, a.Status)
		assert.Equal(t, 0, a.AttemptsUsed)
		assert.Equal(t, 2, a.MaxAttempts)
		assert.Equal(t, uint(1), a.AssignedBy)
	}
	require.Len(t, views, 1, "Пропущенные назначения не попадают в ответ")
	assert.Equal(t, uint(8), views[0].EmployeeID)
	assert.Equal(t, "Охрана труда", views[0].ExamTitle)
	assert.True(t, views[0].CanStart)
	assert.Equal(t, entity.StatusMessageReady, views[0].StatusMessage)
}

func TestAssignmentService_AssignExam_DefaultMaxAttempts(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	f.directory.On("ListCompanyEmployees", testCtx, testAdmin).Return([]entity.Employee{{ID: 7, CompanyID: 10}}, nil)
	f.assignmentRepo.On("CreateBatchIfAbsent", testCtx, mock.MatchedBy(func(b []entity.ExamAssignment) bool {
		return len(b) == 1 && b[0].MaxAttempts == 1
	})).Return([]entity.ExamAssignment{}, nil)

	views, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{ExamID: 3, EmployeeIDs: []uint{7}})

	require.NoError(t, err)
	assert.Empty(t, views)
	f.assignmentRepo.AssertExpectations(t)
}

func TestAssignmentService_AssignExam_EmployeeNotInCompany(t *testing.T) {
	// Arrange
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	f.directory.On("ListCompanyEmployees", testCtx, testAdmin).Return([]entity.Employee{{ID: 7, CompanyID: 10}}, nil)

	// Act
	_, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{ExamID: 3, EmployeeIDs: []uint{7, 99}})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "99")
	f.assignmentRepo.AssertNotCalled(t, "CreateBatchIfAbsent", mock.Anything, mock.Anything)
}

func TestAssignmentService_AssignExam_InvalidWindow(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)

	_, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{
		ExamID:      3,
		EmployeeIDs: []uint{7},
		StartTime:   timePtr(testNow.Add(time.Hour)),
		EndTime:     timePtr(testNow),
	})

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	f.directory.AssertNotCalled(t, "ListCompanyEmployees", mock.Anything, mock.Anything)
}

func TestAssignmentService_AssignExam_ExamOfAnotherCompany(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(nil, apperrors.ErrNotFound)

	_, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{ExamID: 3, EmployeeIDs: []uint{7}})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAssignmentService_AssignExam_DirectoryFailure(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	f.directory.On("ListCompanyEmployees", testCtx, testAdmin).Return(nil, errors.New("connection refused"))

	_, err := f.service.AssignExam(testCtx, testAdmin, AssignInput{ExamID: 3, EmployeeIDs: []uint{7}})

	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrValidation), "Сбой справочника - внутренняя ошибка")
	f.assignmentRepo.AssertNotCalled(t, "CreateBatchIfAbsent", mock.Anything, mock.Anything)
}

// ============================================================================
// ListForEmployee
// ============================================================================

func TestAssignmentService_ListForEmployee_DerivedExpired(t *testing.T) {
	// Arrange
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("ListByEmployee", testCtx, uint(10), uint(7)).Return([]entity.ExamAssignment{
		{ID: 2, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned, EndTime: timePtr(testNow.Add(-time.Minute))},
		{ID: 1, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned, StartTime: timePtr(testNow.Add(time.Hour))},
	}, nil)
	f.examRepo.On("GetByIDs", testCtx, uint(10), []uint{3}).Return([]entity.Exam{*assignedExam}, nil)

	// Act
	views, err := f.service.ListForEmployee(testCtx, 10, 7)

	// Assert
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, entity.AssignmentStatusExpired, views[0].Status)
	assert.False(t, views[0].CanStart)
	assert.Equal(t, entity.StatusMessageExpired, views[0].StatusMessage)

	assert.Equal(t, entity.AssignmentStatusAssigned, views[1].Status)
	assert.False(t, views[1].CanStart)
	assert.Equal(t, "Available from 2026-05-20T11:00:00Z", views[1].StatusMessage)
	assert.Equal(t, "Охрана труда", views[1].ExamTitle)
}

// ============================================================================
// StartAssignment
// ============================================================================

func setupDeliveryQuestions(f *assignmentServiceFixture) {
	f.examRepo.On("GetQuestions", testCtx, uint(3)).Return([]entity.ExamQuestion{
		{ExamID: 3, QuestionID: 31, Position: 1},
		{ExamID: 3, QuestionID: 32, Position: 2},
	}, nil)
	f.questionRepo.On("GetByIDs", testCtx, uint(10), []uint{31, 32}).Return([]entity.Question{
		{ID: 31, TopicID: 1, Text: "Q1", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "A"},
		{ID: 32, TopicID: 1, Text: "Q2", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "B"},
	}, nil)
}

func TestAssignmentService_StartAssignment_MarksInProgress(t *testing.T) {
	// Arrange
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned,
	}, nil)
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	setupDeliveryQuestions(f)
	f.assignmentRepo.On("MarkInProgress", testCtx, uint(10), uint(50)).Return(true, nil)

	// Act
	session, err := f.service.StartAssignment(testCtx, testEmployee, 50)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, uint(50), session.AssignmentID)
	assert.Equal(t, uint(3), session.ExamID)
	assert.Equal(t, testNow, session.StartedAt)
	assert.Len(t, session.Questions, 2)
	for _, q := range session.Questions {
		assert.Zero(t, q.TopicID)
	}
	f.assignmentRepo.AssertCalled(t, "MarkInProgress", testCtx, uint(10), uint(50))
}

func TestAssignmentService_StartAssignment_AlreadyInProgress(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 2, AttemptsUsed: 1, Status: entity.AssignmentStatusInProgress,
	}, nil)
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	setupDeliveryQuestions(f)

	_, err := f.service.StartAssignment(testCtx, testEmployee, 50)

	require.NoError(t, err)
	f.assignmentRepo.AssertNotCalled(t, "MarkInProgress", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignmentService_StartAssignment_RevokedDuringStart(t *testing.T) {
	// Arrange
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned,
	}, nil).Once()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusRevoked,
	}, nil).Once()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	setupDeliveryQuestions(f)
	f.assignmentRepo.On("MarkInProgress", testCtx, uint(10), uint(50)).Return(false, nil)

	// Act
	session, err := f.service.StartAssignment(testCtx, testEmployee, 50)

	// Assert
	assert.Nil(t, session)
	assert.True(t, errors.Is(err, ErrAssignmentRevoked))
	f.assignmentRepo.AssertExpectations(t)
}

func TestAssignmentService_StartAssignment_ConcurrentStartStillOpensSession(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned,
	}, nil).Once()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{
		ID: 50, CompanyID: 10, ExamID: 3, EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusInProgress,
	}, nil).Once()
	f.examRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(3)).Return(assignedExam, nil)
	setupDeliveryQuestions(f)
	f.assignmentRepo.On("MarkInProgress", testCtx, uint(10), uint(50)).Return(false, nil)

	session, err := f.service.StartAssignment(testCtx, testEmployee, 50)

	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestAssignmentService_StartAssignment_Rejections(t *testing.T) {
	testCases := []struct {
		name        string
		assignment  entity.ExamAssignment
		expectedErr error
	}{
		{
			name:        "чужое назначение",
			assignment:  entity.ExamAssignment{EmployeeID: 8, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned},
			expectedErr: apperrors.ErrForbidden,
		},
		{
			name:        "истекло",
			assignment:  entity.ExamAssignment{EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned, EndTime: timePtr(testNow.Add(-time.Second))},
			expectedErr: ErrAssignmentExpired,
		},
		{
			name:        "отозвано",
			assignment:  entity.ExamAssignment{EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusRevoked},
			expectedErr: ErrAssignmentRevoked,
		},
		{
			name:        "завершено",
			assignment:  entity.ExamAssignment{EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusCompleted},
			expectedErr: ErrAssignmentCompleted,
		},
		{
			name:        "еще не открыто",
			assignment:  entity.ExamAssignment{EmployeeID: 7, MaxAttempts: 1, Status: entity.AssignmentStatusAssigned, StartTime: timePtr(testNow.Add(time.Hour))},
			expectedErr: ErrWindowNotStarted,
		},
		{
			name:        "попытки исчерпаны",
			assignment:  entity.ExamAssignment{EmployeeID: 7, MaxAttempts: 1, AttemptsUsed: 1, Status: entity.AssignmentStatusInProgress},
			expectedErr: ErrNoAttemptsRemaining,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAssignmentServiceFixture()
			a := tc.assignment
			a.ID, a.CompanyID, a.ExamID = 50, 10, 3
			f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&a, nil)

			_, err := f.service.StartAssignment(testCtx, testEmployee, 50)

			assert.True(t, errors.Is(err, tc.expectedErr), "Ожидалась %v, получено %v", tc.expectedErr, err)
			f.assignmentRepo.AssertNotCalled(t, "MarkInProgress", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// ============================================================================
// RevokeAssignment / ListAttempts
// ============================================================================

func TestAssignmentService_RevokeAssignment_AlreadyTerminal(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("Revoke", testCtx, uint(10), uint(50)).Return(apperrors.ErrConflict)

	err := f.service.RevokeAssignment(testCtx, 10, 50)

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestAssignmentService_ListAttempts_OtherEmployee(t *testing.T) {
	f := newAssignmentServiceFixture()
	f.assignmentRepo.On("GetByIDAndCompany", testCtx, uint(10), uint(50)).Return(&entity.ExamAssignment{ID: 50, EmployeeID: 8}, nil)

	_, err := f.service.ListAttempts(testCtx, testEmployee, 50)

	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	f.attemptRepo.AssertNotCalled(t, "ListByAssignment", mock.Anything, mock.Anything, mock.Anything)
}
