package worker

// Gate — взаимное исключение для одного слота воркера.
//
// Реализован как очередь глубины 1: захват кладёт единственный токен,
// освобождение забирает его. Пока токен лежит, следующий Acquire ждёт.
// Не реентерабелен: повторный Acquire из того же слота заблокируется.
type Gate struct {
	token chan struct{}
}

// NewGate создаёт свободный gate.
func NewGate() *Gate {
	return &Gate{token: make(chan struct{}, 1)}
}

// Acquire блокируется, пока gate не станет свободен, и захватывает его.
func (g *Gate) Acquire() {
	g.token <- struct{}{}
}

// TryAcquire захватывает gate, если он свободен.
func (g *Gate) TryAcquire() bool {
	select {
	case g.token <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release освобождает gate. Release свободного gate — ошибка программы.
func (g *Gate) Release() {
	select {
	case <-g.token:
	default:
		panic("worker: release of unlocked gate")
	}
}

// Drain блокируется, пока выполняющаяся задача не освободит gate.
// Используется при остановке, после того как слот перестал принимать сообщения.
func (g *Gate) Drain() {
	g.Acquire()
	g.Release()
}

// Busy сообщает, захвачен ли gate в данный момент.
func (g *Gate) Busy() bool {
	return len(g.token) == 1
}
