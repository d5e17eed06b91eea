package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Separator разделяет ключ handler'а и имя операции в имени задачи.
const Separator = "#"

// Handler — зарегистрированный task handler: ключ и таблица операций.
type Handler struct {
	key string
	ops []Operation
}

// NewHandler создаёт handler с указанными операциями.
func NewHandler(key string, ops ...Operation) *Handler {
	return &Handler{key: key, ops: ops}
}

// Key возвращает ключ handler'а.
func (h *Handler) Key() string {
	return h.key
}

// Operations возвращает все объявленные операции.
func (h *Handler) Operations() []Operation {
	return append([]Operation(nil), h.ops...)
}

// Match возвращает операции с указанным именем.
// Для корректно зарегистрированного handler'а совпадений не больше одного.
func (h *Handler) Match(name string) []*Operation {
	var matches []*Operation
	for i := range h.ops {
		if h.ops[i].Name == name {
			matches = append(matches, &h.ops[i])
		}
	}
	return matches
}

func (h *Handler) validate() error {
	if h.key == "" || strings.Contains(h.key, Separator) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, h.key)
	}

	seen := make(map[string]struct{}, len(h.ops))
	for _, op := range h.ops {
		if op.Name == "" || strings.Contains(op.Name, Separator) || op.call == nil {
			return fmt.Errorf("%w: %s%s%q", ErrInvalidOperation, h.key, Separator, op.Name)
		}
		if _, dup := seen[op.Name]; dup {
			return fmt.Errorf("%w: %s%s%s", ErrDuplicateOperation, h.key, Separator, op.Name)
		}
		seen[op.Name] = struct{}{}
	}
	return nil
}

// Registry — реестр handler'ов по ключу.
//
// Заполняется при старте процесса, затем запечатывается. После Seal
// Lookup и Keys работают без блокировок.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]*Handler
	sealed   atomic.Bool
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

// Register добавляет handler в реестр.
func (r *Registry) Register(h *Handler) error {
	if h == nil {
		return fmt.Errorf("%w: nil handler", ErrInvalidKey)
	}
	if err := h.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("%w: cannot register %s", ErrSealed, h.key)
	}
	if _, exists := r.handlers[h.key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, h.key)
	}

	r.handlers[h.key] = h
	return nil
}

// MustRegister — Register, паникующий при ошибке. Для инициализации в main.
func (r *Registry) MustRegister(handlers ...*Handler) {
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			panic(err)
		}
	}
}

// Seal запрещает дальнейшую регистрацию. Повторный вызов безопасен.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed.Store(true)
	r.mu.Unlock()
}

// Sealed проверяет, запечатан ли реестр.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Lookup возвращает handler по ключу.
func (r *Registry) Lookup(key string) (*Handler, bool) {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	h, ok := r.handlers[key]
	return h, ok
}

// Keys возвращает отсортированный список зарегистрированных ключей.
func (r *Registry) Keys() []string {
	if !r.sealed.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TaskInfo — описание зарегистрированного handler'а для диагностики.
type TaskInfo struct {
	Key        string   `json:"key"`
	Operations []string `json:"operations"`
}

// Describe возвращает описание всех handler'ов, отсортированное по ключу.
func (r *Registry) Describe() []TaskInfo {
	keys := r.Keys()
	infos := make([]TaskInfo, 0, len(keys))
	for _, k := range keys {
		h, _ := r.Lookup(k)
		info := TaskInfo{Key: k}
		for _, op := range h.Operations() {
			info.Operations = append(info.Operations, op.Signature())
		}
		infos = append(infos, info)
	}
	return infos
}
