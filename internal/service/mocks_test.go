package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев для сервисов экзаменов
// ============================================================================

// MockTopicRepo реализует repository.TopicRepository
type MockTopicRepo struct {
	mock.Mock
}

func (m *MockTopicRepo) Create(ctx context.Context, topic *entity.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

func (m *MockTopicRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Topic, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Topic), args.Error(1)
}

func (m *MockTopicRepo) ListByCompany(ctx context.Context, companyID uint) ([]entity.Topic, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Topic), args.Error(1)
}

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Question, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) ExistsActiveByText(ctx context.Context, companyID uint, text string, excludeID uint) (bool, error) {
	args := m.Called(ctx, companyID, text, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuestionRepo) Deactivate(ctx context.Context, companyID, id uint) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockQuestionRepo) ListActive(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error) {
	args := m.Called(ctx, companyID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetActiveIDsByTopic(ctx context.Context, companyID, topicID uint) ([]uint, error) {
	args := m.Called(ctx, companyID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockQuestionRepo) GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Question, error) {
	args := m.Called(ctx, companyID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

// MockExamRepo реализует repository.ExamRepository
type MockExamRepo struct {
	mock.Mock
}

func (m *MockExamRepo) CreateWithQuestions(ctx context.Context, exam *entity.Exam, questions []entity.ExamQuestion) error {
	args := m.Called(ctx, exam, questions)
	return args.Error(0)
}

func (m *MockExamRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.Exam, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Exam), args.Error(1)
}

func (m *MockExamRepo) GetByIDs(ctx context.Context, companyID uint, ids []uint) ([]entity.Exam, error) {
	args := m.Called(ctx, companyID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepo) ListByCompany(ctx context.Context, companyID uint) ([]entity.Exam, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepo) GetQuestions(ctx context.Context, examID uint) ([]entity.ExamQuestion, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamQuestion), args.Error(1)
}

func (m *MockExamRepo) CountTopics(ctx context.Context, examID uint) (int64, error) {
	args := m.Called(ctx, examID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExamRepo) ExamIDsByQuestion(ctx context.Context, questionID uint) ([]uint, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockExamRepo) UpdateMetadata(ctx context.Context, exam *entity.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockExamRepo) Delete(ctx context.Context, companyID, id uint) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

// MockAssignmentRepo реализует repository.AssignmentRepository
type MockAssignmentRepo struct {
	mock.Mock
}

func (m *MockAssignmentRepo) CreateBatchIfAbsent(ctx context.Context, assignments []entity.ExamAssignment) ([]entity.ExamAssignment, error) {
	args := m.Called(ctx, assignments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepo) GetByIDAndCompany(ctx context.Context, companyID, id uint) (*entity.ExamAssignment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepo) ListByEmployee(ctx context.Context, companyID, employeeID uint) ([]entity.ExamAssignment, error) {
	args := m.Called(ctx, companyID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepo) ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAssignment, error) {
	args := m.Called(ctx, companyID, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamAssignment), args.Error(1)
}

func (m *MockAssignmentRepo) CountByExam(ctx context.Context, companyID, examID uint) (int64, error) {
	args := m.Called(ctx, companyID, examID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepo) MarkInProgress(ctx context.Context, companyID, id uint) (bool, error) {
	args := m.Called(ctx, companyID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssignmentRepo) Revoke(ctx context.Context, companyID, id uint) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) RecordAttempt(ctx context.Context, attempt *entity.ExamAttempt, expectedUsed int) (*entity.ExamAssignment, error) {
	args := m.Called(ctx, attempt, expectedUsed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExamAssignment), args.Error(1)
}

func (m *MockAttemptRepo) ListByAssignment(ctx context.Context, companyID, assignmentID uint) ([]entity.ExamAttempt, error) {
	args := m.Called(ctx, companyID, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamAttempt), args.Error(1)
}

func (m *MockAttemptRepo) ListByExam(ctx context.Context, companyID, examID uint) ([]entity.ExamAttempt, error) {
	args := m.Called(ctx, companyID, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExamAttempt), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDirectory реализует EmployeeDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListCompanyEmployees(ctx context.Context, identity entity.Identity) ([]entity.Employee, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Employee), args.Error(1)
}

// ============================================================================
// Общие хелперы
// ============================================================================

var (
	testCtx      = context.Background()
	testNow      = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	testAdmin    = entity.Identity{UserID: 1, CompanyID: 10, Role: entity.RoleAdmin, Token: "admin-token"}
	testEmployee = entity.Identity{UserID: 7, CompanyID: 10, Role: entity.RoleEmployee, Token: "employee-token"}
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

// memoryCache - кеш в памяти с сериализацией через JSON, как у Redis
type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	data, ok := c.items[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.items, key)
	return nil
}
