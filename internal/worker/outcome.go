package worker

import "errors"

// Kind — вид исхода обработки сообщения.
type Kind int

const (
	KindSuccess Kind = iota
	KindProtocolError
	KindDispatchError
	KindTaskError
	KindUnexpectedError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindProtocolError:
		return "protocol_error"
	case KindDispatchError:
		return "dispatch_error"
	case KindTaskError:
		return "task_error"
	case KindUnexpectedError:
		return "unexpected_error"
	default:
		return "unknown"
	}
}

// Outcome — итог обработки одного сообщения.
//
// Для KindSuccess заполнен Value, для остальных — Err: ошибка,
// которую получит backend.
type Outcome struct {
	Kind  Kind
	Value any
	Err   error
}

// classify превращает результат обработки в Outcome.
//
// Проверяется только внешний тип ошибки: TaskError, внутри которого
// лежит DispatchError из вложенного вызова, остаётся ошибкой задачи.
func classify(value any, err error) Outcome {
	if err == nil {
		return Outcome{Kind: KindSuccess, Value: value}
	}

	switch e := err.(type) {
	case *ProtocolError:
		return Outcome{Kind: KindProtocolError, Err: e}
	case *DispatchError:
		return Outcome{Kind: KindDispatchError, Err: e}
	case *TaskError:
		return Outcome{Kind: KindTaskError, Err: e.Err}
	}

	// Непредвиденная ошибка: отчитываемся причиной, если она есть
	if cause := errors.Unwrap(err); cause != nil {
		return Outcome{Kind: KindUnexpectedError, Err: cause}
	}
	return Outcome{Kind: KindUnexpectedError, Err: err}
}

// Decision — действие над сообщением и отчёт backend'у для вида исхода.
type Decision struct {
	// Ack — подтвердить сообщение; иначе reject без повторной доставки.
	Ack bool

	// ReportResult — отправить результат; иначе отправить ошибку.
	ReportResult bool
}

// decide — единственное место, где вид исхода сопоставляется с ack/reject.
//
//	success          → ack,    result
//	dispatch_error   → ack,    exception
//	task_error       → ack,    exception
//	protocol_error   → reject, exception
//	unexpected_error → reject, exception
func decide(k Kind) Decision {
	switch k {
	case KindSuccess:
		return Decision{Ack: true, ReportResult: true}
	case KindDispatchError, KindTaskError:
		return Decision{Ack: true}
	default:
		return Decision{Ack: false}
	}
}
