// Package api содержит HTTP поверхность воркера.
//
// Структура:
//   - handler.go        — Handler с зависимостями (реестр, хранилище результатов, logger)
//   - routes.go         — chi router и маршруты
//   - middleware.go     — middleware (logging, recovery)
//   - response.go       — JSON-ответы и обработка ошибок
//   - dto.go            — структуры ответов
//   - task_handler.go   — /healthz, /tasks, /results/{taskID}
//
// /metrics отдаётся promhttp и регистрируется в routes.go.
package api
