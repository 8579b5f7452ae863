// Package trace writes the append-only JSONL event stream of a simulated
// macro run.
package trace

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// EventType enumerates trace event types.
type EventType string

const (
	EventRunStart      EventType = "run_start"
	EventRunComplete   EventType = "run_complete"
	EventSensorRead    EventType = "sensor_read"
	EventBranch        EventType = "branch"
	EventMarker        EventType = "marker"
	EventPause         EventType = "pause"
	EventToolActivated EventType = "tool_activated"
)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Line      int            `json:"line"`
	Data      map[string]any `json:"data,omitempty"`
}

// Writer writes trace events to a JSONL stream. It is safe for concurrent
// use.
type Writer struct {
	mu    sync.Mutex
	runID string
	enc   *json.Encoder
	now   func() time.Time
}

// NewWriter creates a trace writer over w.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		runID: runID,
		enc:   json.NewEncoder(w),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewFileWriter creates a trace writer that appends to a JSONL file. The
// caller closes the returned file.
func NewFileWriter(path, runID string) (*Writer, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open trace file")
	}
	return NewWriter(f, runID), f, nil
}

// RunID returns the id stamped on every event.
func (tw *Writer) RunID() string { return tw.runID }

// Emit writes a single event. line is the zero-based program line the
// event refers to, or -1 for run-level events.
func (tw *Writer) Emit(eventType EventType, line int, data map[string]any) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.enc.Encode(Event{
		Type:      eventType,
		Timestamp: tw.now(),
		RunID:     tw.runID,
		Line:      line,
		Data:      data,
	})
}

// EmitRunStart records the program size and starting machine state.
func (tw *Writer) EmitRunStart(lines int, state map[string]any) error {
	data := map[string]any{"lines": lines}
	if state != nil {
		data["state"] = state
	}
	return tw.Emit(EventRunStart, -1, data)
}

// EmitBranch records an evaluated condition.
func (tw *Writer) EmitBranch(line int, label, condition string, taken bool) error {
	return tw.Emit(EventBranch, line, map[string]any{
		"label":     label,
		"condition": condition,
		"taken":     taken,
	})
}

// EmitSensorRead records a scripted sensor reading.
func (tw *Writer) EmitSensorRead(line int, source string, triggered bool) error {
	return tw.Emit(EventSensorRead, line, map[string]any{
		"source":    source,
		"triggered": triggered,
	})
}

// EmitMarker records an operator marker.
func (tw *Writer) EmitMarker(line int, namespace, code string) error {
	return tw.Emit(EventMarker, line, map[string]any{
		"namespace": namespace,
		"code":      code,
	})
}

// EmitRunComplete records the outcome of a run.
func (tw *Writer) EmitRunComplete(status string, outcome map[string]any) error {
	data := map[string]any{"status": status}
	if outcome != nil {
		data["outcome"] = outcome
	}
	return tw.Emit(EventRunComplete, -1, data)
}

// ReadEvents decodes a JSONL trace stream.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	dec := json.NewDecoder(r)
	for {
		var evt Event
		if err := dec.Decode(&evt); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, errors.Wrapf(err, "decode event %d", len(events)+1)
		}
		events = append(events, evt)
	}
}
