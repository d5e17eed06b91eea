// Package cli реализует celery-call — клиентскую утилиту воркера.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для поверхности воркера: /tasks и /results/{taskID}.
//
//	c := cli.NewClient("http://localhost:8082")
//	tasks, err := c.ListTasks()
//
// ## Output
//
// Форматирование вывода. Два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
//
// ## Commands
//
//   - call TASK [ARG...]: публикует задачу через брокер и ждёт результат
//   - tasks: список задач воркера
//   - result TASK_ID: сохранённый результат (postgres backend)
//
// Аргументы call разбираются как JSON, если это валидный JSON, иначе
// передаются строкой: `call Math#add 1 2`, `call Greeter#sayHello world`.
package cli
