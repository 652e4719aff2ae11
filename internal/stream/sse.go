package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

// Настройки SSE-потока по умолчанию.
const (
	// DefaultHeartbeat — период keep-alive комментариев.
	DefaultHeartbeat = 15 * time.Second

	// DefaultRetryHint — подсказка клиенту о паузе перед переподключением.
	DefaultRetryHint = 3 * time.Second
)

// Ошибки SSE-потока.
var (
	// ErrStreamingUnsupported — ResponseWriter не поддерживает Flush.
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")

	// ErrStreamClosed — поток закрыт или оборван; событие отброшено.
	ErrStreamClosed = errors.New("stream is closed")
)

// SSEConfig — настройки потока.
type SSEConfig struct {
	// Heartbeat — период keep-alive комментариев; 0 — значение
	// по умолчанию, отрицательное значение отключает heartbeat.
	Heartbeat time.Duration

	// RetryHint — подсказка retry для клиента; 0 — значение
	// по умолчанию, отрицательное значение отключает подсказку.
	RetryHint time.Duration

	// OnError — вызывается не более одного раза при ошибке записи.
	OnError func(error)
}

// SSEStream пишет события в ответ HTTP в формате Server-Sent Events.
//
// Каждое событие уходит именованным фреймом:
//
//	event: step_result
//	data: {"type":"step_result","at":...,"payload":{...}}
//
// Поток потокобезопасен: heartbeat пишет из отдельной горутины.
// Первая ошибка записи переводит поток в оборванное состояние,
// дальнейшие Send возвращают ErrStreamClosed без побочных эффектов.
type SSEStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	onError func(error)

	mu     sync.Mutex
	closed bool
	broken bool

	stop chan struct{}
	done chan struct{}
}

// NewSSEStream готовит ответ к стримингу: выставляет заголовки,
// отправляет retry-подсказку и запускает heartbeat.
func NewSSEStream(w http.ResponseWriter, cfg SSEConfig) (*SSEStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	heartbeat := cfg.Heartbeat
	if heartbeat == 0 {
		heartbeat = DefaultHeartbeat
	}
	retry := cfg.RetryHint
	if retry == 0 {
		retry = DefaultRetryHint
	}
	onError := cfg.OnError
	if onError == nil {
		onError = func(error) {}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &SSEStream{
		w:       w,
		flusher: flusher,
		onError: onError,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if retry > 0 {
		_ = s.writeFrame(fmt.Sprintf("retry: %d\n\n", retry.Milliseconds()))
	}

	if heartbeat > 0 {
		go s.heartbeatLoop(heartbeat)
	} else {
		close(s.done)
	}

	return s, nil
}

// Send пишет событие в поток.
func (s *SSEStream) Send(event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return s.writeFrame(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data))
}

// Close завершает поток финальным фреймом done и останавливает
// heartbeat. Повторные вызовы безопасны.
func (s *SSEStream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if !s.broken {
		if _, err := io.WriteString(s.w, "event: done\ndata: {}\n\n"); err == nil {
			s.flusher.Flush()
		}
	}
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

// writeFrame пишет сырой фрейм под блокировкой и сбрасывает буфер.
func (s *SSEStream) writeFrame(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.broken {
		return ErrStreamClosed
	}
	if _, err := io.WriteString(s.w, frame); err != nil {
		s.broken = true
		s.onError(err)
		return fmt.Errorf("write frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *SSEStream) heartbeatLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// Комментарий-фрейм: парсеры SSE его игнорируют.
			_ = s.writeFrame(": ping\n\n")
		}
	}
}
