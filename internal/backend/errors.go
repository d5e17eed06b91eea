package backend

import "errors"

// Ошибки backend'ов.
var (
	// ErrNotFound — результат задачи не найден.
	ErrNotFound = errors.New("result not found")

	// ErrUnknownBackend — неизвестный тип backend'а в конфигурации.
	ErrUnknownBackend = errors.New("unknown result backend")
)
