package chat

import (
	"context"
	"sync"
)

// SerialSender wraps a Sender so that sends to the same channel never
// interleave. Batches sent through SendBatch arrive contiguously.
type SerialSender struct {
	next Sender

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ Sender = (*SerialSender)(nil)

// NewSerialSender returns a SerialSender delivering through next.
func NewSerialSender(next Sender) *SerialSender {
	return &SerialSender{next: next, locks: make(map[string]*sync.Mutex)}
}

func (s *SerialSender) channelLock(channelID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[channelID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[channelID] = l
	}
	return l
}

// Send delivers one reply, waiting for any batch already going to the channel.
func (s *SerialSender) Send(ctx context.Context, channelID string, reply *Reply) error {
	return s.SendBatch(ctx, channelID, []*Reply{reply})
}

// SendBatch delivers replies in order with no other send to the same channel
// in between. Empty replies are skipped. It stops at the first error.
func (s *SerialSender) SendBatch(ctx context.Context, channelID string, replies []*Reply) error {
	l := s.channelLock(channelID)
	l.Lock()
	defer l.Unlock()

	for _, r := range replies {
		if r.Empty() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.next.Send(ctx, channelID, r); err != nil {
			return err
		}
	}
	return nil
}

// BatchSender is implemented by senders that can deliver several replies
// contiguously.
type BatchSender interface {
	Sender
	SendBatch(ctx context.Context, channelID string, replies []*Reply) error
}

// SendAll delivers replies contiguously when s supports it and one by one
// otherwise.
func SendAll(ctx context.Context, s Sender, channelID string, replies []*Reply) error {
	if b, ok := s.(BatchSender); ok {
		return b.SendBatch(ctx, channelID, replies)
	}
	for _, r := range replies {
		if r.Empty() {
			continue
		}
		if err := s.Send(ctx, channelID, r); err != nil {
			return err
		}
	}
	return nil
}
