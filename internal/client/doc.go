// Package client отправляет задачи воркеру и ждёт результаты.
//
// Сообщение задачи соответствует протоколу 2 celery:
//
//	headers:    id, task, lang
//	properties: correlation_id = id, reply_to, content_type = application/json,
//	            content_encoding = utf-8
//	body:       [args, kwargs, {"callbacks": null, "errbacks": null, "chain": null, "chord": null}]
//
// Call объявляет эксклюзивную reply-очередь, публикует задачу с reply_to
// на неё и ждёт ответ rpc backend'а с тем же correlation_id.
package client
