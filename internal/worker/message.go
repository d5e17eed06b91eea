package worker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/text/encoding/htmlindex"
)

// Заголовки сообщения задачи.
const (
	headerID   = "id"
	headerTask = "task"
)

// Message — разобранное сообщение задачи.
type Message struct {
	// ID — идентификатор задачи из заголовка id.
	ID string

	// Task — имя задачи вида key#operation из заголовка task.
	Task string

	// Args — позиционные аргументы в JSON.
	Args []json.RawMessage

	// Kwargs — именованные аргументы. Разбираются, но в вызов не передаются.
	Kwargs map[string]json.RawMessage

	// ReplyTo и CorrelationID передаются backend'у без изменений.
	ReplyTo       string
	CorrelationID string

	// ContentEncoding — кодировка текста тела.
	ContentEncoding string
}

// newMessage заполняет поля, которые не требуют разбора тела.
// Никогда не падает: результат нужен для отчёта даже о неразборчивом сообщении.
func newMessage(d amqp.Delivery) *Message {
	return &Message{
		ID:              headerString(d.Headers, headerID),
		Task:            headerString(d.Headers, headerTask),
		ReplyTo:         d.ReplyTo,
		CorrelationID:   d.CorrelationId,
		ContentEncoding: d.ContentEncoding,
	}
}

// decode разбирает тело сообщения и проверяет заголовки.
// Все ошибки — *ProtocolError.
func (m *Message) decode(body []byte) error {
	text, err := decodeBody(body, m.ContentEncoding)
	if err != nil {
		return &ProtocolError{Err: err}
	}

	args, kwargs, err := parsePayload(text)
	if err != nil {
		return &ProtocolError{Err: err}
	}

	if m.ID == "" {
		return &ProtocolError{Err: fmt.Errorf("%w: %s", ErrMissingHeader, headerID)}
	}

	m.Args = args
	m.Kwargs = kwargs
	return nil
}

// decodeBody переводит тело из объявленной кодировки в UTF-8.
// Пустая кодировка считается utf-8.
func decodeBody(body []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return body, nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", encoding, err)
	}
	return text, nil
}

// parsePayload разбирает тело вида [args, kwargs] или [args, kwargs, embed].
func parsePayload(text []byte) ([]json.RawMessage, map[string]json.RawMessage, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(text, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if len(payload) < 2 {
		return nil, nil, fmt.Errorf("%w: expected [args, kwargs], got %d elements", ErrBadPayload, len(payload))
	}

	if !isJSONKind(payload[0], '[') {
		return nil, nil, fmt.Errorf("%w: args must be an array", ErrBadPayload)
	}
	if !isJSONKind(payload[1], '{') {
		return nil, nil, fmt.Errorf("%w: kwargs must be an object", ErrBadPayload)
	}

	var args []json.RawMessage
	if err := json.Unmarshal(payload[0], &args); err != nil {
		return nil, nil, fmt.Errorf("%w: args: %v", ErrBadPayload, err)
	}

	var kwargs map[string]json.RawMessage
	if err := json.Unmarshal(payload[1], &kwargs); err != nil {
		return nil, nil, fmt.Errorf("%w: kwargs: %v", ErrBadPayload, err)
	}

	return args, kwargs, nil
}

func isJSONKind(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

// headerString возвращает заголовок как строку. Нестроковые значения
// форматируются через fmt, отсутствующий заголовок — пустая строка.
func headerString(headers amqp.Table, key string) string {
	v, ok := headers[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
