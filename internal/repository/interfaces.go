package repository

import (
	"context"

	"socialnet/internal/social"
)

// PostRepository makes posts addressable by ID for the outer layers.
// The social core keeps no registry of posts itself.
type PostRepository interface {
	Save(ctx context.Context, post social.Post) error
	GetByID(ctx context.Context, id string) (social.Post, error)
	// ListByOwner returns the owner's posts oldest first.
	ListByOwner(ctx context.Context, owner string) ([]social.Post, error)
}
