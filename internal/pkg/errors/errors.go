package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных
	// (пустое имя, некорректный ID пользователя и т.п.).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, пользователь с таким именем уже есть).
	ErrConflict = errors.New("resource state conflict")

	// ErrStoreUnavailable оборачивает любые сбои хранилища (Postgres недоступен, таймаут и т.д.).
	ErrStoreUnavailable = errors.New("store unavailable")
)
