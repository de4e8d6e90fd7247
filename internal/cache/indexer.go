package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"socialnet/internal/model"
)

const (
	defaultIndexBuffer  = 256
	defaultIndexTimeout = 2 * time.Second
)

// FeedIndexer adds every delivered Post notification to the receiver's
// timeline. Delivered never blocks; entries are dropped when the buffer is
// full.
type FeedIndexer struct {
	feed    FeedCache
	timeout time.Duration

	entries chan model.Notification
	done    chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int64
}

func NewFeedIndexer(feed FeedCache) *FeedIndexer {
	return &FeedIndexer{
		feed:    feed,
		timeout: defaultIndexTimeout,
		entries: make(chan model.Notification, defaultIndexBuffer),
		done:    make(chan struct{}),
	}
}

func (x *FeedIndexer) Delivered(n model.Notification) {
	if n.Action != model.ActionPost || n.PostID == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return
	}
	select {
	case x.entries <- n:
	default:
		x.dropped++
		log.Printf("[FeedIndexer] buffer full, dropped post=%s receiver=%s", n.PostID, n.Receiver)
	}
}

// Run writes buffered entries until Close drains the buffer or ctx is
// cancelled.
func (x *FeedIndexer) Run(ctx context.Context) {
	defer close(x.done)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-x.entries:
			if !ok {
				return
			}
			addCtx, cancel := context.WithTimeout(ctx, x.timeout)
			if err := x.feed.AddPost(addCtx, n.Receiver, n.PostID, n.CreatedAt.UnixMilli()); err != nil {
				log.Printf("[FeedIndexer] index failed, dropping post=%s: %v", n.PostID, err)
			}
			cancel()
		}
	}
}

// Close stops accepting entries and waits for Run to return.
// It must only be called after Run has been started.
func (x *FeedIndexer) Close() {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.closed = true
	close(x.entries)
	x.mu.Unlock()
	<-x.done
}

func (x *FeedIndexer) Dropped() int64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.dropped
}
