package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leengari/csvdb/internal/domain/transaction"
)

// MockObserver is a test observer that records events
type MockObserver struct {
	mu     sync.Mutex
	Events []Event
}

func (m *MockObserver) OnEvent(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the recorded event types in order
func (m *MockObserver) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

func TestAddObserver(t *testing.T) {
	eng := New(nil)
	observer := &MockObserver{}

	eng.AddObserver(observer)

	if len(eng.observers) != 1 {
		t.Errorf("Expected 1 observer, got %d", len(eng.observers))
	}
}

func TestRemoveObserver(t *testing.T) {
	eng := New(nil, WithObserver(&MockObserver{}))
	observer := &MockObserver{}

	eng.AddObserver(observer)
	eng.RemoveObserver(observer)

	if len(eng.observers) != 1 {
		t.Errorf("Expected 1 observer, got %d", len(eng.observers))
	}
}

func TestNotifyWithNoObservers(t *testing.T) {
	eng := New(nil)

	// Should not panic
	eng.notify(Event{Type: EventOpStart, OpID: "test-op"})
}

func TestNotifyWithMultipleObservers(t *testing.T) {
	eng := New(nil)
	observer1 := &MockObserver{}
	observer2 := &MockObserver{}

	eng.AddObserver(observer1)
	eng.AddObserver(observer2)

	eng.notify(Event{Type: EventOpStart, OpID: "test-op", Table: "people"})

	if len(observer1.Events) != 1 {
		t.Errorf("Observer1: Expected 1 event, got %d", len(observer1.Events))
	}
	if len(observer2.Events) != 1 {
		t.Errorf("Observer2: Expected 1 event, got %d", len(observer2.Events))
	}

	if observer1.Events[0].Type != EventOpStart {
		t.Errorf("Observer1: Expected EventOpStart, got %v", observer1.Events[0].Type)
	}
	if observer2.Events[0].Table != "people" {
		t.Errorf("Observer2: Expected table people, got %v", observer2.Events[0].Table)
	}
}

func TestEventTimestamp(t *testing.T) {
	eng := New(nil)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	eng.notify(Event{Type: EventOpStart, OpID: "test-op"})

	if observer.Events[0].Timestamp.IsZero() {
		t.Error("Expected timestamp to be set, got zero value")
	}
}

func TestLoggingObserverHandlesEveryPayload(t *testing.T) {
	lo := NewLoggingObserver()

	// Should not panic
	lo.OnEvent(Event{Type: EventOpStart})
	lo.OnEvent(Event{Type: EventIndexProgress, Data: IndexProgress{Index: "PRIMARY", Done: 1, Total: 2}})
	lo.OnEvent(Event{Type: EventOpEnd, Data: OpResult{Rows: 3}})
	lo.OnEvent(Event{Type: EventOpError, Data: errTest})
}

func TestLoggingObserverLevels(t *testing.T) {
	var buf bytes.Buffer
	lo := &LoggingObserver{logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	lo.OnEvent(Event{Type: EventOpEnd, Seq: 7, Op: transaction.OpFind, Data: OpResult{Rows: 3}})
	if buf.Len() != 0 {
		t.Errorf("Expected find result below info level, got %q", buf.String())
	}

	lo.OnEvent(Event{Type: EventOpEnd, Seq: 8, Op: transaction.OpInsert, Data: OpResult{Rows: 1, Rownums: []int{3}}})
	out := buf.String()
	for _, want := range []string{"seq=8", "op=INSERT", "rownums=[3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
}

var errTest = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
