package exammanager

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

func canonicalSet(ids ...uint) []entity.ExamQuestion {
	return AssignPositions(ids)
}

func questionMap(correct map[uint]string) map[uint]*entity.Question {
	out := make(map[uint]*entity.Question, len(correct))
	for id, c := range correct {
		out[id] = &entity.Question{ID: id, CorrectAnswer: c}
	}
	return out
}

// ============================================================================
// Percentage
// ============================================================================

func TestPercentage_RoundHalfUp(t *testing.T) {
	testCases := []struct {
		correct, total, expected int
	}{
		{7, 10, 70},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 -> 13
		{3, 5, 60},
		{0, 4, 0},
		{4, 4, 100},
		{0, 0, 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Percentage(tc.correct, tc.total), "%d из %d", tc.correct, tc.total)
	}
}

// ============================================================================
// ClampDuration
// ============================================================================

func TestClampDuration(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	assert.Equal(t, 600, ClampDuration(nil, 10), "Нет значения: максимум")
	assert.Equal(t, 0, ClampDuration(intPtr(-5), 10), "Отрицательное значение: 0")
	assert.Equal(t, 120, ClampDuration(intPtr(120), 10))
	assert.Equal(t, 600, ClampDuration(intPtr(9999), 10), "Больше лимита: максимум")
	assert.Equal(t, 60, ClampDuration(intPtr(500), 0), "Длительность меньше минуты считается одной минутой")
}

// ============================================================================
// ValidateAnswers
// ============================================================================

func TestValidateAnswers_Valid(t *testing.T) {
	selected, err := ValidateAnswers(canonicalSet(1, 2, 3), []Answer{
		{QuestionID: 1, Selected: "A"},
		{QuestionID: 3, Selected: "D"},
	})

	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: "A", 3: "D"}, selected)
}

func TestValidateAnswers_NonExamQuestion(t *testing.T) {
	_, err := ValidateAnswers(canonicalSet(1, 2), []Answer{{QuestionID: 77, Selected: "A"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "77")
}

func TestValidateAnswers_Duplicate(t *testing.T) {
	_, err := ValidateAnswers(canonicalSet(1, 2), []Answer{
		{QuestionID: 2, Selected: "A"},
		{QuestionID: 2, Selected: "B"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateAnswers_InvalidOption(t *testing.T) {
	for _, opt := range []string{"E", "", "a"} {
		_, err := ValidateAnswers(canonicalSet(1), []Answer{{QuestionID: 1, Selected: opt}})
		assert.True(t, errors.Is(err, apperrors.ErrValidation), "Вариант %q должен отклоняться", opt)
	}
}

func TestValidateAnswers_FirstErrorWins(t *testing.T) {
	// Неизвестный вопрос идет раньше неверного варианта
	_, err := ValidateAnswers(canonicalSet(1), []Answer{
		{QuestionID: 5, Selected: "X"},
		{QuestionID: 1, Selected: "Z"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-exam question: 5")
}

// ============================================================================
// Grade
// ============================================================================

func TestGrade_CanonicalOrderAndUnanswered(t *testing.T) {
	// Arrange
	canonical := canonicalSet(30, 10, 20)
	questions := questionMap(map[uint]string{10: "A", 20: "B", 30: "C"})
	selected := map[uint]string{10: "A", 30: "D"}

	// Act
	result := Grade(canonical, questions, selected)

	// Assert
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 33, result.Percentage)
	require.Len(t, result.Answers, 3)

	assert.Equal(t, uint(30), result.Answers[0].QuestionID, "Ответы идут в каноническом порядке")
	assert.Equal(t, 1, result.Answers[0].Position)
	assert.False(t, result.Answers[0].IsCorrect)

	assert.True(t, result.Answers[1].IsCorrect)
	require.NotNil(t, result.Answers[1].Selected)
	assert.Equal(t, "A", *result.Answers[1].Selected)

	assert.Nil(t, result.Answers[2].Selected, "Вопрос без ответа хранится с пустым выбором")
	assert.False(t, result.Answers[2].IsCorrect)
}

func TestGrade_MissingQuestionCountsWrong(t *testing.T) {
	canonical := canonicalSet(1, 2)
	questions := questionMap(map[uint]string{1: "A"})

	result := Grade(canonical, questions, map[uint]string{1: "A", 2: "B"})

	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 50, result.Percentage)
}

func TestGrade_EmptyExam(t *testing.T) {
	result := Grade(nil, nil, nil)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Percentage)
	assert.Empty(t, result.Answers)
}
