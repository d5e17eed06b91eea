// Package telemetry обеспечивает наблюдаемость воркера.
//
// Включает:
//   - logging.go — structured logging через slog (опционально с ротацией файла)
//   - metrics.go — Prometheus метрики обработки задач
//
// Метрики экспортируются на /metrics endpoint процесса воркера.
package telemetry
