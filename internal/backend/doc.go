// Package backend доставляет результаты задач их отправителям.
//
// Реализации:
//   - RPCBackend      — протокол rpc celery: результат публикуется в очередь reply_to
//     с тем же correlation_id
//   - PostgresBackend — таблица celery_taskmeta, как database backend celery
//   - LogBackend      — только логирует, для воркеров без получателя результатов
//
// Формат результата общий для всех реализаций — ResultMeta:
//
//	{"task_id": "...", "status": "SUCCESS", "result": ..., "traceback": null,
//	 "children": [], "date_done": "2024-01-01T00:00:00Z"}
//
// Для FAILURE поле result содержит {"exc_type", "exc_message", "exc_module"}.
package backend
