package chat

import (
	"context"
	"sync"
)

// Sent is one reply captured by a Recorder.
type Sent struct {
	ChannelID string
	Reply     *Reply
}

// Recorder is an in-memory Sender for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	// Err, when set, is returned from every Send.
	Err error
}

var _ Sender = (*Recorder)(nil)

func (r *Recorder) Send(_ context.Context, channelID string, reply *Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, Sent{ChannelID: channelID, Reply: reply})
	return nil
}

// Sent returns a copy of everything sent so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}
