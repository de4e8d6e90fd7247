package worker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"socialnet/internal/model"
	"socialnet/internal/queue"
)

// EventHandler processes one activity event read from the stream.
type EventHandler interface {
	HandleEvent(ctx context.Context, event queue.ActivityEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event queue.ActivityEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	return f(ctx, event)
}

// Printer writes each event as console lines, optionally restricted to some
// event types.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	types map[string]bool // empty means all
}

// NewPrinter creates a Printer. Unknown type names are rejected.
func NewPrinter(out io.Writer, types ...string) (*Printer, error) {
	p := &Printer{out: out, types: make(map[string]bool)}
	for _, t := range types {
		if !knownType(t) {
			return nil, fmt.Errorf("unknown event type: %s", t)
		}
		p.types[t] = true
	}
	return p, nil
}

func (p *Printer) HandleEvent(ctx context.Context, event queue.ActivityEvent) error {
	if !knownType(event.Type) {
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
	if len(p.types) > 0 && !p.types[event.Type] {
		return nil
	}

	at := time.UnixMilli(event.Timestamp).Format(time.RFC3339)
	msg := strings.TrimRight(event.Message, "\n")

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "%s [%s] %s %s\n", at, event.Network, event.Type, msg)
	return err
}

func knownType(t string) bool {
	switch t {
	case model.ActivityRegister, model.ActivityLogin, model.ActivityLogout,
		model.ActivityFollow, model.ActivityUnfollow,
		model.ActivityPublish, model.ActivityNotification,
		model.ActivityDiscount, model.ActivitySold:
		return true
	}
	return false
}
