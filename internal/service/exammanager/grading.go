package exammanager

import (
	"fmt"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// Answer - ответ сотрудника на вопрос экзамена
type Answer struct {
	QuestionID uint
	Selected   string
}

// GradeResult - итог оценки попытки
type GradeResult struct {
	Total      int
	Correct    int
	Percentage int
	Answers    []entity.ExamAttemptAnswer
}

// ValidateAnswers проверяет ответы против канонического набора вопросов экзамена.
// Первая найденная ошибка возвращается сразу. Результат - карта questionID -> вариант.
func ValidateAnswers(canonical []entity.ExamQuestion, answers []Answer) (map[uint]string, error) {
	inExam := make(map[uint]struct{}, len(canonical))
	for _, eq := range canonical {
		inExam[eq.QuestionID] = struct{}{}
	}

	selected := make(map[uint]string, len(answers))
	for _, a := range answers {
		if _, ok := inExam[a.QuestionID]; !ok {
			return nil, fmt.Errorf("%w: answer includes non-exam question: %d", apperrors.ErrValidation, a.QuestionID)
		}
		if _, dup := selected[a.QuestionID]; dup {
			return nil, fmt.Errorf("%w: duplicate answer for question: %d", apperrors.ErrValidation, a.QuestionID)
		}
		if !entity.IsValidOption(a.Selected) {
			return nil, fmt.Errorf("%w: invalid option %q for question: %d", apperrors.ErrValidation, a.Selected, a.QuestionID)
		}
		selected[a.QuestionID] = a.Selected
	}
	return selected, nil
}

// Grade оценивает попытку, проходя вопросы в каноническом порядке.
// Вопрос без ответа или отсутствующий в questions считается неверным.
func Grade(canonical []entity.ExamQuestion, questions map[uint]*entity.Question, selected map[uint]string) GradeResult {
	result := GradeResult{
		Total:   len(canonical),
		Answers: make([]entity.ExamAttemptAnswer, 0, len(canonical)),
	}

	for _, eq := range canonical {
		answer := entity.ExamAttemptAnswer{
			QuestionID: eq.QuestionID,
			Position:   eq.Position,
		}
		if s, ok := selected[eq.QuestionID]; ok {
			option := s
			answer.Selected = &option
			if q := questions[eq.QuestionID]; q != nil && q.IsCorrect(s) {
				answer.IsCorrect = true
				result.Correct++
			}
		}
		result.Answers = append(result.Answers, answer)
	}

	result.Percentage = Percentage(result.Correct, result.Total)
	return result
}

// Percentage округляет 100*correct/total по правилу half-up в целых числах.
// total == 0 дает 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

// ClampDuration приводит затраченное время к [0, durationMinutes*60].
// Отсутствующее значение считается максимальным.
func ClampDuration(elapsedSeconds *int, durationMinutes int) int {
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	maxSeconds := durationMinutes * 60
	if elapsedSeconds == nil {
		return maxSeconds
	}
	v := *elapsedSeconds
	if v < 0 {
		return 0
	}
	return min(v, maxSeconds)
}
