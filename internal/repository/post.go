package repository

import (
	"context"
	"fmt"
	"sync"

	"socialnet/internal/model"
	"socialnet/internal/social"
)

type postRepository struct {
	mu      sync.RWMutex
	byID    map[string]social.Post
	byOwner map[string][]social.Post
}

// NewPostRepository returns an in-memory PostRepository. Posts live as long
// as the process.
func NewPostRepository() PostRepository {
	return &postRepository{
		byID:    make(map[string]social.Post),
		byOwner: make(map[string][]social.Post),
	}
}

func (r *postRepository) Save(ctx context.Context, post social.Post) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save post: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[post.ID()]; ok {
		return nil
	}
	owner := post.Owner().Name()
	r.byID[post.ID()] = post
	r.byOwner[owner] = append(r.byOwner[owner], post)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (social.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.byID[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return post, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, owner string) ([]social.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := r.byOwner[owner]
	out := make([]social.Post, len(posts))
	copy(out, posts)
	return out, nil
}
