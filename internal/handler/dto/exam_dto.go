package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/internal/service/exammanager"
)

// TopicSelection - сколько вопросов взять из темы
type TopicSelection struct {
	TopicID uint `json:"topic_id" binding:"required"`
	Count   int  `json:"count" binding:"required,min=1"`
}

// ComposeExamRequest представляет запрос на составление экзамена
type ComposeExamRequest struct {
	Title             string           `json:"title" binding:"required,max=200"`
	Description       string           `json:"description" binding:"omitempty,max=1000"`
	DurationMinutes   int              `json:"duration_minutes" binding:"required,min=1"`
	PassingPercentage *int             `json:"passing_percentage" binding:"omitempty,min=0,max=100"`
	Topics            []TopicSelection `json:"topics" binding:"required,min=1,dive"`
}

// ToInput преобразует запрос в формат сервиса
func (r ComposeExamRequest) ToInput() service.ComposeExamInput {
	topics := make([]service.TopicRequest, 0, len(r.Topics))
	for _, t := range r.Topics {
		topics = append(topics, service.TopicRequest{TopicID: t.TopicID, Count: t.Count})
	}
	return service.ComposeExamInput{
		Title:             r.Title,
		Description:       r.Description,
		DurationMinutes:   r.DurationMinutes,
		PassingPercentage: r.PassingPercentage,
		Topics:            topics,
	}
}

// UpdateExamRequest - редактируемые метаданные экзамена
type UpdateExamRequest struct {
	Title             string `json:"title" binding:"required,max=200"`
	Description       string `json:"description" binding:"omitempty,max=1000"`
	DurationMinutes   int    `json:"duration_minutes" binding:"required,min=1"`
	PassingPercentage *int   `json:"passing_percentage" binding:"omitempty,min=0,max=100"`
}

// ToInput преобразует запрос в формат сервиса
func (r UpdateExamRequest) ToInput() service.UpdateExamInput {
	return service.UpdateExamInput{
		Title:             r.Title,
		Description:       r.Description,
		DurationMinutes:   r.DurationMinutes,
		PassingPercentage: r.PassingPercentage,
	}
}

// ExamResponse - экзамен без списка вопросов
type ExamResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	DurationMinutes    int       `json:"duration_minutes"`
	PassingPercentage  int       `json:"passing_percentage"`
	TotalQuestions     int       `json:"total_questions"`
	SelectedTopicCount *int      `json:"selected_topic_count,omitempty"`
	CreatedBy          uint      `json:"created_by"`
	CreatedByRole      string    `json:"created_by_role"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewExamResponse создает ответ из сущности
func NewExamResponse(exam *entity.Exam) *ExamResponse {
	return &ExamResponse{
		ID:                exam.ID,
		Title:             exam.Title,
		Description:       exam.Description,
		DurationMinutes:   exam.DurationMinutes,
		PassingPercentage: exam.PassingPercentage,
		TotalQuestions:    exam.TotalQuestions,
		CreatedBy:         exam.CreatedBy,
		CreatedByRole:     exam.CreatedByRole,
		CreatedAt:         exam.CreatedAt,
		UpdatedAt:         exam.UpdatedAt,
	}
}

// NewExamDetailsResponse добавляет количество тем
func NewExamDetailsResponse(details *service.ExamDetails) *ExamResponse {
	resp := NewExamResponse(details.Exam)
	count := details.SelectedTopicCount
	resp.SelectedTopicCount = &count
	return resp
}

// NewExamListResponse преобразует список экзаменов
func NewExamListResponse(exams []entity.Exam) []*ExamResponse {
	result := make([]*ExamResponse, 0, len(exams))
	for i := range exams {
		result = append(result, NewExamResponse(&exams[i]))
	}
	return result
}

// AssignExamRequest представляет запрос на назначение экзамена
type AssignExamRequest struct {
	ExamID      uint       `json:"exam_id" binding:"required"`
	EmployeeIDs []uint     `json:"employee_ids" binding:"required,min=1"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxAttempts *int       `json:"max_attempts" binding:"omitempty,min=1"`
}

// ToInput преобразует запрос в формат сервиса
func (r AssignExamRequest) ToInput() service.AssignInput {
	return service.AssignInput{
		ExamID:      r.ExamID,
		EmployeeIDs: r.EmployeeIDs,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		MaxAttempts: r.MaxAttempts,
	}
}

// AnswerRequest - ответ на один вопрос. Вопросы без ответа в список не включаются.
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Selected   string `json:"selected"`
}

// SubmitAttemptRequest представляет отправку ответов по назначению
type SubmitAttemptRequest struct {
	AssignmentID   uint            `json:"assignment_id" binding:"required"`
	ExamID         uint            `json:"exam_id" binding:"required"`
	Answers        []AnswerRequest `json:"answers" binding:"dive"`
	ElapsedSeconds *int            `json:"elapsed_seconds"`
}

// ToInput преобразует запрос в формат сервиса
func (r SubmitAttemptRequest) ToInput() service.SubmitInput {
	answers := make([]exammanager.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, exammanager.Answer{QuestionID: a.QuestionID, Selected: a.Selected})
	}
	return service.SubmitInput{
		AssignmentID:   r.AssignmentID,
		ExamID:         r.ExamID,
		Answers:        answers,
		ElapsedSeconds: r.ElapsedSeconds,
	}
}

// AttemptSummary - агрегаты попытки без ответов по вопросам
type AttemptSummary struct {
	ID              uint      `json:"id"`
	AttemptNumber   int       `json:"attempt_number"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	Percentage      int       `json:"percentage"`
	Passed          bool      `json:"passed"`
	DurationSeconds int       `json:"duration_seconds"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// NewAttemptSummaries преобразует историю попыток
func NewAttemptSummaries(attempts []entity.ExamAttempt) []AttemptSummary {
	result := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		result = append(result, AttemptSummary{
			ID:              a.ID,
			AttemptNumber:   a.AttemptNumber,
			TotalQuestions:  a.TotalQuestions,
			CorrectAnswers:  a.CorrectAnswers,
			Percentage:      a.Percentage,
			Passed:          a.Passed,
			DurationSeconds: a.DurationSeconds,
			SubmittedAt:     a.SubmittedAt,
		})
	}
	return result
}
