package registry

import "errors"

// Ошибки регистрации.
var (
	// ErrInvalidKey — пустой ключ или ключ содержит разделитель.
	ErrInvalidKey = errors.New("invalid task key")

	// ErrDuplicateKey — handler с таким ключом уже зарегистрирован.
	ErrDuplicateKey = errors.New("task key already registered")

	// ErrInvalidOperation — пустое имя операции или имя содержит разделитель.
	ErrInvalidOperation = errors.New("invalid operation name")

	// ErrDuplicateOperation — у handler'а две операции с одним именем.
	ErrDuplicateOperation = errors.New("duplicate operation name")

	// ErrSealed — реестр уже запечатан, регистрация невозможна.
	ErrSealed = errors.New("registry is sealed")
)
