package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись не найдена или принадлежит другой компании.
	// Для изоляции арендаторов оба случая неразличимы.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда ресурс существует, но принадлежит другому сотруднику.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrBusinessRule используется для нарушений бизнес-правил
	// (недостаточно вопросов, исчерпаны попытки, окно назначения закрыто и т.д.).
	ErrBusinessRule = errors.New("business rule violation")

	// ErrConflict используется для конфликтов состояния (дубликаты, повторный отзыв назначения).
	ErrConflict = errors.New("resource state conflict")
)
