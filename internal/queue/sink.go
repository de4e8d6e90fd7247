package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"socialnet/internal/model"
)

const (
	defaultSinkBuffer  = 256
	defaultSinkTimeout = 2 * time.Second
)

// ActivitySink forwards recorded activities to a stream. It is a best-effort
// activity log: Record never blocks the caller, and entries are dropped when
// the buffer is full or the stream is unreachable.
type ActivitySink struct {
	publisher Publisher
	network   string
	stream    string
	timeout   time.Duration

	events chan ActivityEvent
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int64
}

// NewActivitySink creates a sink for one network. Call Run to start
// publishing and Close to stop accepting entries.
func NewActivitySink(publisher Publisher, network, stream string) *ActivitySink {
	if stream == "" {
		stream = StreamActivity
	}
	return &ActivitySink{
		publisher: publisher,
		network:   network,
		stream:    stream,
		timeout:   defaultSinkTimeout,
		events:    make(chan ActivityEvent, defaultSinkBuffer),
		done:      make(chan struct{}),
	}
}

func (s *ActivitySink) Record(a model.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- NewActivityEvent(s.network, a):
	default:
		s.dropped++
		log.Printf("[ActivitySink] buffer full, dropped type=%s actor=%s (total dropped=%d)", a.Kind, a.Actor, s.dropped)
	}
}

// Run publishes buffered events until Close is called and the buffer is
// drained, or until ctx is cancelled.
func (s *ActivitySink) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-s.events:
			if !ok {
				return
			}
			pubCtx, cancel := context.WithTimeout(ctx, s.timeout)
			if _, err := s.publisher.Publish(pubCtx, s.stream, e); err != nil {
				log.Printf("[ActivitySink] publish failed, dropping type=%s: %v", e.Type, err)
			}
			cancel()
		}
	}
}

// Close stops accepting entries and waits for Run to drain the buffer.
// It must only be called after Run has been started.
func (s *ActivitySink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()
	<-s.done
}

// Dropped returns how many entries were discarded because the buffer was full.
func (s *ActivitySink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
