package future

import (
	"context"
	"sync"
	"time"
)

type contextKey struct {
	name string
}

var recorderContextKey = &contextKey{"recorder"} //nolint:gochecknoglobals

// Types of recorded events.
const (
	EventLaunch   = "launch"
	EventStart    = "start"
	EventFinish   = "finish"
	EventRetrieve = "retrieve"
)

// RecorderEvent is a lifecycle event of a handle.
type RecorderEvent struct {
	Handle string    `json:"handle"`
	Type   string    `json:"type"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// Recorder records lifecycle events of handles launched with a context
// which has the recorder attached. Events are kept in the order in which
// they were recorded.
//
// All methods are safe to call on a nil Recorder.
type Recorder struct {
	mu sync.Mutex

	events []RecorderEvent
}

func (r *Recorder) record(handle, eventType string, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event := RecorderEvent{
		Handle: handle,
		Type:   eventType,
		Error:  "",
		Time:   time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}

	r.events = append(r.events, event)
}

// Events returns a copy of all events recorded so far.
func (r *Recorder) Events() []RecorderEvent {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.events == nil {
		return nil
	}

	events := make([]RecorderEvent, len(r.events))
	copy(events, r.events)
	return events
}

// Index returns the position of the first event of eventType for handle,
// or -1 if there is no such event.
func (r *Recorder) Index(handle, eventType string) int {
	for i, event := range r.Events() {
		if event.Handle == handle && event.Type == eventType {
			return i
		}
	}
	return -1
}

// WithRecorder returns a copy of ctx with a new recorder attached.
func WithRecorder(ctx context.Context) context.Context {
	return context.WithValue(ctx, recorderContextKey, new(Recorder))
}

// GetRecorder returns the recorder attached to ctx, if any.
func GetRecorder(ctx context.Context) *Recorder {
	recorder, ok := ctx.Value(recorderContextKey).(*Recorder)
	if !ok {
		return nil
	}
	return recorder
}
