package stream

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Prospector/internal/domain"
)

func TestSSEStream_Frames(t *testing.T) {
	rec := httptest.NewRecorder()

	s, err := NewSSEStream(rec, SSEConfig{Heartbeat: -1})
	if err != nil {
		t.Fatalf("NewSSEStream: %v", err)
	}

	if err := s.Send(domain.NewEvent(domain.EventPlanStarted, domain.PlanStartedPayload{
		PlanID:     "plan-1",
		Objective:  "find leads",
		TotalSteps: 2,
	})); err != nil {
		t.Fatalf("Send plan_started: %v", err)
	}
	if err := s.Send(domain.NewEvent(domain.EventPlanCompleted, domain.PlanCompletedPayload{
		PlanID:      "plan-1",
		FinalStatus: "SUCCESS",
	})); err != nil {
		t.Fatalf("Send plan_completed: %v", err)
	}
	s.Close()

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache, got %q", cc)
	}

	body := rec.Body.String()
	frames := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d: %q", len(frames), body)
	}

	if frames[0] != "retry: 3000" {
		t.Errorf("expected retry hint first, got %q", frames[0])
	}
	if !strings.HasPrefix(frames[1], "event: plan_started\ndata: ") {
		t.Errorf("unexpected second frame: %q", frames[1])
	}
	if !strings.Contains(frames[1], `"objective":"find leads"`) {
		t.Errorf("expected payload in data line, got %q", frames[1])
	}
	if !strings.HasPrefix(frames[2], "event: plan_completed\ndata: ") {
		t.Errorf("unexpected third frame: %q", frames[2])
	}
	if frames[3] != "event: done\ndata: {}" {
		t.Errorf("expected done frame last, got %q", frames[3])
	}
}

func TestSSEStream_RetryHintDisabled(t *testing.T) {
	rec := httptest.NewRecorder()

	s, err := NewSSEStream(rec, SSEConfig{Heartbeat: -1, RetryHint: -1})
	if err != nil {
		t.Fatalf("NewSSEStream: %v", err)
	}
	s.Close()

	if body := rec.Body.String(); strings.Contains(body, "retry:") {
		t.Errorf("expected no retry hint, got %q", body)
	}
}

func TestSSEStream_Heartbeat(t *testing.T) {
	rec := httptest.NewRecorder()

	s, err := NewSSEStream(rec, SSEConfig{Heartbeat: 5 * time.Millisecond, RetryHint: -1})
	if err != nil {
		t.Fatalf("NewSSEStream: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	s.Close()

	if body := rec.Body.String(); !strings.Contains(body, ": ping\n\n") {
		t.Errorf("expected heartbeat comment, got %q", body)
	}
}

func TestSSEStream_SendAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()

	s, err := NewSSEStream(rec, SSEConfig{Heartbeat: -1})
	if err != nil {
		t.Fatalf("NewSSEStream: %v", err)
	}
	s.Close()

	err = s.Send(domain.NewEvent(domain.EventPlanStarted, domain.PlanStartedPayload{PlanID: "plan-1"}))
	if !errors.Is(err, ErrStreamClosed) {
		t.Errorf("expected ErrStreamClosed, got %v", err)
	}
}

func TestSSEStream_WriteFailure(t *testing.T) {
	w := &failingWriter{failAfter: 0}

	var errCount int
	s, err := NewSSEStream(w, SSEConfig{
		Heartbeat: -1,
		RetryHint: -1,
		OnError:   func(error) { errCount++ },
	})
	if err != nil {
		t.Fatalf("NewSSEStream: %v", err)
	}

	event := domain.NewEvent(domain.EventStepStarted, domain.StepStartedPayload{PlanID: "plan-1", StepID: "s1"})
	if err := s.Send(event); err == nil {
		t.Fatal("expected write error, got nil")
	}
	if errCount != 1 {
		t.Fatalf("expected OnError once, got %d", errCount)
	}

	if err := s.Send(event); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("expected ErrStreamClosed after break, got %v", err)
	}
	if errCount != 1 {
		t.Errorf("expected OnError not re-fired, got %d calls", errCount)
	}

	s.Close()
	if w.writes != w.failAfter+1 {
		t.Errorf("expected no writes after break, got %d", w.writes)
	}
}

func TestNewSSEStream_RequiresFlusher(t *testing.T) {
	_, err := NewSSEStream(&plainWriter{}, SSEConfig{})
	if !errors.Is(err, ErrStreamingUnsupported) {
		t.Errorf("expected ErrStreamingUnsupported, got %v", err)
	}
}

// failingWriter отказывает на записи после failAfter успешных.
type failingWriter struct {
	header    http.Header
	failAfter int
	writes    int
}

func (w *failingWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.failAfter {
		w.writes++
		return 0, errors.New("broken pipe")
	}
	w.writes++
	return len(p), nil
}

func (w *failingWriter) WriteHeader(int) {}
func (w *failingWriter) Flush()          {}

// plainWriter не реализует http.Flusher.
type plainWriter struct {
	header http.Header
}

func (w *plainWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *plainWriter) Write(p []byte) (int, error) { return len(p), nil }
func (w *plainWriter) WriteHeader(int)             {}
