package notify

import (
	"context"
	"sync"
)

// Recorder is a Dispatcher that captures messages for tests and local
// development. FailFor makes sends to specific recipients fail.
type Recorder struct {
	mu      sync.Mutex
	sent    []Message
	failFor map[string]error
}

func NewRecorder() *Recorder {
	return &Recorder{failFor: make(map[string]error)}
}

// FailFor makes every subsequent Send to addr return err.
func (r *Recorder) FailFor(addr string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[addr] = err
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[msg.To]; ok {
		return err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the captured messages in send order.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
