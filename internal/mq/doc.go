// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown, каналы слотов)
//   - topology.go   — объявление очереди задач, обменника результатов, reply-очередей
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений слотом воркера на собственном канале
//
// Формат сообщений задач (celery protocol 2):
//   - headers: id, task
//   - properties: reply_to, correlation_id, content_encoding
//   - body: [args, kwargs, embed]
//
// Разбор тела и подтверждение сообщений выполняет пакет worker.
package mq
