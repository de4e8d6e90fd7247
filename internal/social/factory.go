package social

import (
	"fmt"
	"sync"

	"socialnet/internal/model"
)

// Constructor builds a post of one kind from its payload.
type Constructor func(owner *User, payload model.Payload) (Post, error)

// Factory dispatches post construction on the post kind.
type Factory struct {
	mu    sync.RWMutex
	ctors map[model.PostKind]Constructor
}

// NewFactory returns a factory that knows the Text, Image and Sale kinds.
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[model.PostKind]Constructor)}
	f.Register(model.PostKindText, func(owner *User, payload model.Payload) (Post, error) {
		p, ok := payload.(model.TextPayload)
		if !ok {
			return nil, payloadMismatch(model.PostKindText, payload)
		}
		return newTextPost(owner, p), nil
	})
	f.Register(model.PostKindImage, func(owner *User, payload model.Payload) (Post, error) {
		p, ok := payload.(model.ImagePayload)
		if !ok {
			return nil, payloadMismatch(model.PostKindImage, payload)
		}
		return newImagePost(owner, p), nil
	})
	f.Register(model.PostKindSale, func(owner *User, payload model.Payload) (Post, error) {
		p, ok := payload.(model.SalePayload)
		if !ok {
			return nil, payloadMismatch(model.PostKindSale, payload)
		}
		return newSalePost(owner, p)
	})
	return f
}

// Register adds or replaces the constructor for kind.
func (f *Factory) Register(kind model.PostKind, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[kind] = ctor
}

// Create builds a post of the given kind owned by owner.
func (f *Factory) Create(kind model.PostKind, owner *User, payload model.Payload) (Post, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownPostKind, kind)
	}
	return ctor(owner, payload)
}

func payloadMismatch(kind model.PostKind, payload model.Payload) error {
	return fmt.Errorf("%w: %s post given %T", model.ErrInvalidPayload, kind, payload)
}
