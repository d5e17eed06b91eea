// Package config загружает конфигурацию воркера и клиента из переменных окружения.
//
// Значения по умолчанию и обязательность задаются тегами envconfig,
// допустимые значения проверяются validator. Флаги командной строки
// применяются поверх окружения в cmd/.
package config
