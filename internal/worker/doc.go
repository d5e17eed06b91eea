// Package worker выполняет задачи celery, полученные из RabbitMQ.
//
// # Обзор
//
// Worker потребляет сообщения из очереди задач, находит по имени
// "key#operation" зарегистрированную операцию, вызывает её и сообщает
// результат backend'у. Каждое сообщение подтверждается (ack) или
// отклоняется (reject без повторной доставки) ровно один раз.
//
// # Ключевые компоненты
//
// ## Worker
//
// Набор из Concurrency независимых слотов. У каждого слота свой канал,
// свой Gate и свой Consumer.
//
//	w, err := worker.New(worker.Config{
//	    Conn:        mqConn,
//	    Queue:       "celery",
//	    Concurrency: 4,
//	    Registry:    reg,
//	    Backend:     backend,
//	    Logger:      logger,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w.Start(ctx)
//	defer w.Stop()
//
// ## Dispatcher
//
// Resolve делит имя задачи на ключ и операцию и ищет ровно одну операцию
// в реестре. Invoke конвертирует позиционные JSON-аргументы в типы
// параметров операции. Именованные аргументы (kwargs) разбираются,
// но в вызов не передаются.
//
// ## Gate
//
// Взаимное исключение слота: очередь глубины 1. Drain ждёт завершения
// выполняющейся задачи и используется при остановке.
//
// ## Consumer
//
// HandleDelivery — протокол обработки одной доставки.
//
// # Исходы
//
//	вид               триггер                                ack       отчёт
//	success           операция вернула значение              ack       result
//	protocol_error    тело/кодировка/заголовок id            reject    exception
//	dispatch_error    имя, ключ, операция, аргументы         ack       exception
//	task_error        операция вернула ошибку или паниковала ack       exception (исходная ошибка)
//	unexpected_error  паника вне операции и прочие ошибки    reject    exception (причина, если есть)
//
// Классификация (classify) и выбор действия (decide) — чистые функции,
// вся логика ack/reject сосредоточена в decide.
//
// Если backend не смог принять отчёт, ошибка логируется и учитывается
// в метрике, а ack/reject выполняется как обычно.
package worker
