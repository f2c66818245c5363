package notify

import (
	"context"
	"sync"
)

// Published is one call captured by Recorder.
type Published struct {
	OwnerID string
	Event   string
	Payload any
}

// Recorder keeps every published event in memory. Err, when set, is
// returned from Publish after the event is recorded.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ownerID, event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{OwnerID: ownerID, Event: event, Payload: payload})
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Event)
	}
	return names
}
