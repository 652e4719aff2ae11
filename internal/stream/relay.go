package stream

import (
	"sync"

	"github.com/shaiso/Prospector/internal/domain"
)

// DefaultRelayBuffer — ёмкость очереди событий по умолчанию.
const DefaultRelayBuffer = 64

// Sink — конечный получатель событий.
type Sink interface {
	Send(event domain.Event) error
}

// SinkFunc — адаптер функции к интерфейсу Sink.
type SinkFunc func(event domain.Event) error

// Send реализует Sink.
func (f SinkFunc) Send(event domain.Event) error { return f(event) }

// RelayConfig — настройки очереди.
type RelayConfig struct {
	// Buffer — ёмкость очереди; 0 — значение по умолчанию.
	Buffer int

	// OnError — вызывается не более одного раза при отказе приёмника.
	OnError func(error)
}

// Relay — ограниченная очередь событий между движком выполнения и
// приёмником. Доставка идёт из отдельной горутины в порядке
// поступления. После первой ошибки приёмника очередь продолжает
// вычитываться, а события отбрасываются: мёртвый клиент не должен
// останавливать выполнение плана.
type Relay struct {
	ch      chan domain.Event
	done    chan struct{}
	onError func(error)

	mu     sync.Mutex
	closed bool
}

// NewRelay создаёт очередь и запускает горутину доставки.
func NewRelay(sink Sink, cfg RelayConfig) *Relay {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = DefaultRelayBuffer
	}
	onError := cfg.OnError
	if onError == nil {
		onError = func(error) {}
	}

	r := &Relay{
		ch:      make(chan domain.Event, buffer),
		done:    make(chan struct{}),
		onError: onError,
	}
	go r.forward(sink)
	return r
}

// Send ставит событие в очередь. Блокируется только на заполненной
// очереди живого, но медленного приёмника — это явное обратное
// давление. После Close событие молча отбрасывается.
func (r *Relay) Send(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.ch <- event
}

// Close закрывает очередь и дожидается доставки накопленных событий.
// Повторные вызовы безопасны.
func (r *Relay) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.mu.Unlock()
	<-r.done
}

// forward — горутина доставки.
func (r *Relay) forward(sink Sink) {
	defer close(r.done)

	failed := false
	for event := range r.ch {
		if failed {
			continue
		}
		if err := sink.Send(event); err != nil {
			failed = true
			r.onError(err)
		}
	}
}
