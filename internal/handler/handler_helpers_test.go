package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/middleware"
	"github.com/yourusername/exam-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testAdmin    = entity.Identity{UserID: 1, CompanyID: 10, Role: entity.RoleAdmin}
	testEmployee = entity.Identity{UserID: 7, CompanyID: 10, Role: entity.RoleEmployee}
)

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// withIdentity кладет идентичность и параметры пути в контекст, как это делают middleware
func withIdentity(c *gin.Context, identity entity.Identity, params map[string]uint) {
	c.Set(middleware.IdentityContextKey, identity)
	for key, value := range params {
		c.Set(key, value)
	}
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ---------------------------------------------------------------------------
// Моки сервисов
// ---------------------------------------------------------------------------

type MockQuestionStore struct{ mock.Mock }

func (m *MockQuestionStore) CreateTopic(ctx context.Context, identity entity.Identity, name string) (*entity.Topic, error) {
	args := m.Called(ctx, identity, name)
	topic, _ := args.Get(0).(*entity.Topic)
	return topic, args.Error(1)
}

func (m *MockQuestionStore) ListTopics(ctx context.Context, companyID uint) ([]entity.Topic, error) {
	args := m.Called(ctx, companyID)
	topics, _ := args.Get(0).([]entity.Topic)
	return topics, args.Error(1)
}

func (m *MockQuestionStore) CreateQuestion(ctx context.Context, identity entity.Identity, in service.QuestionInput) (*entity.Question, error) {
	args := m.Called(ctx, identity, in)
	q, _ := args.Get(0).(*entity.Question)
	return q, args.Error(1)
}

func (m *MockQuestionStore) UpdateQuestion(ctx context.Context, companyID, questionID uint, in service.QuestionInput) (*entity.Question, error) {
	args := m.Called(ctx, companyID, questionID, in)
	q, _ := args.Get(0).(*entity.Question)
	return q, args.Error(1)
}

func (m *MockQuestionStore) DeleteQuestion(ctx context.Context, companyID, questionID uint) error {
	return m.Called(ctx, companyID, questionID).Error(0)
}

func (m *MockQuestionStore) GetQuestion(ctx context.Context, companyID, questionID uint) (*entity.Question, error) {
	args := m.Called(ctx, companyID, questionID)
	q, _ := args.Get(0).(*entity.Question)
	return q, args.Error(1)
}

func (m *MockQuestionStore) ListQuestions(ctx context.Context, companyID uint, topicID *uint) ([]entity.Question, error) {
	args := m.Called(ctx, companyID, topicID)
	qs, _ := args.Get(0).([]entity.Question)
	return qs, args.Error(1)
}

type MockExamComposer struct{ mock.Mock }

func (m *MockExamComposer) ComposeExam(ctx context.Context, identity entity.Identity, in service.ComposeExamInput) (*entity.Exam, error) {
	args := m.Called(ctx, identity, in)
	exam, _ := args.Get(0).(*entity.Exam)
	return exam, args.Error(1)
}

func (m *MockExamComposer) GetExam(ctx context.Context, companyID, examID uint) (*service.ExamDetails, error) {
	args := m.Called(ctx, companyID, examID)
	details, _ := args.Get(0).(*service.ExamDetails)
	return details, args.Error(1)
}

func (m *MockExamComposer) ListExams(ctx context.Context, companyID uint) ([]entity.Exam, error) {
	args := m.Called(ctx, companyID)
	exams, _ := args.Get(0).([]entity.Exam)
	return exams, args.Error(1)
}

func (m *MockExamComposer) UpdateExam(ctx context.Context, identity entity.Identity, examID uint, in service.UpdateExamInput) (*entity.Exam, error) {
	args := m.Called(ctx, identity, examID, in)
	exam, _ := args.Get(0).(*entity.Exam)
	return exam, args.Error(1)
}

func (m *MockExamComposer) DeleteExam(ctx context.Context, companyID, examID uint) error {
	return m.Called(ctx, companyID, examID).Error(0)
}

func (m *MockExamComposer) PreviewQuestions(ctx context.Context, companyID, examID uint) ([]service.DeliveryQuestion, error) {
	args := m.Called(ctx, companyID, examID)
	qs, _ := args.Get(0).([]service.DeliveryQuestion)
	return qs, args.Error(1)
}

type MockAssignmentManager struct{ mock.Mock }

func (m *MockAssignmentManager) AssignExam(ctx context.Context, identity entity.Identity, in service.AssignInput) ([]service.AssignmentView, error) {
	args := m.Called(ctx, identity, in)
	views, _ := args.Get(0).([]service.AssignmentView)
	return views, args.Error(1)
}

func (m *MockAssignmentManager) ListForEmployee(ctx context.Context, companyID, employeeID uint) ([]service.AssignmentView, error) {
	args := m.Called(ctx, companyID, employeeID)
	views, _ := args.Get(0).([]service.AssignmentView)
	return views, args.Error(1)
}

func (m *MockAssignmentManager) ListForExam(ctx context.Context, companyID, examID uint) ([]service.AssignmentView, error) {
	args := m.Called(ctx, companyID, examID)
	views, _ := args.Get(0).([]service.AssignmentView)
	return views, args.Error(1)
}

func (m *MockAssignmentManager) StartAssignment(ctx context.Context, identity entity.Identity, assignmentID uint) (*service.DeliverySession, error) {
	args := m.Called(ctx, identity, assignmentID)
	session, _ := args.Get(0).(*service.DeliverySession)
	return session, args.Error(1)
}

func (m *MockAssignmentManager) RevokeAssignment(ctx context.Context, companyID, assignmentID uint) error {
	return m.Called(ctx, companyID, assignmentID).Error(0)
}

func (m *MockAssignmentManager) ListAttempts(ctx context.Context, identity entity.Identity, assignmentID uint) ([]entity.ExamAttempt, error) {
	args := m.Called(ctx, identity, assignmentID)
	attempts, _ := args.Get(0).([]entity.ExamAttempt)
	return attempts, args.Error(1)
}

func (m *MockAssignmentManager) ExamAttemptsReport(ctx context.Context, companyID, examID uint) (*entity.Exam, []entity.ExamAttempt, error) {
	args := m.Called(ctx, companyID, examID)
	exam, _ := args.Get(0).(*entity.Exam)
	attempts, _ := args.Get(1).([]entity.ExamAttempt)
	return exam, attempts, args.Error(2)
}

type MockAttemptSubmitter struct{ mock.Mock }

func (m *MockAttemptSubmitter) Submit(ctx context.Context, identity entity.Identity, in service.SubmitInput) (*service.ExamResult, error) {
	args := m.Called(ctx, identity, in)
	result, _ := args.Get(0).(*service.ExamResult)
	return result, args.Error(1)
}

func intPtr(v int) *int { return &v }
