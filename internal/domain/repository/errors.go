package repository

import "errors"

var (
	// ErrAttemptBudgetConflict означает, что счетчик попыток изменился параллельной отправкой
	// или бюджет попыток уже исчерпан к моменту записи.
	ErrAttemptBudgetConflict = errors.New("attempt budget conflict")
	// ErrAssignmentRevoked означает, что назначение отозвано к моменту записи попытки.
	ErrAssignmentRevoked = errors.New("assignment is revoked")
	// ErrQuestionsChanged означает, что выбранный вопрос деактивирован до записи экзамена.
	ErrQuestionsChanged = errors.New("selected questions are no longer active")
)
