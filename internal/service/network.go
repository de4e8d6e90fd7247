package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/social"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// NetworkService exposes the social core to the outer layers, addressing
// users by name and posts by ID.
type NetworkService struct {
	dir   *social.Directory
	posts repository.PostRepository
	feed  cache.FeedCache // nil when no timeline cache is configured
}

func NewNetworkService(dir *social.Directory, posts repository.PostRepository) *NetworkService {
	return &NetworkService{dir: dir, posts: posts}
}

// UseFeed enables Feed reads from the given timeline cache.
func (s *NetworkService) UseFeed(feed cache.FeedCache) {
	s.feed = feed
}

func (s *NetworkService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserSummary, error) {
	u, err := s.dir.Register(ctx, strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

func (s *NetworkService) Login(ctx context.Context, req *model.LoginRequest) (*model.UserSummary, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.dir.Login(ctx, name, req.Password); err != nil {
		return nil, err
	}
	u, err := s.dir.Lookup(name)
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

func (s *NetworkService) Logout(ctx context.Context, name string) error {
	return s.dir.Logout(name)
}

func (s *NetworkService) ListUsers(ctx context.Context) []model.UserSummary {
	return s.dir.AllUsersSummary()
}

// Render returns the network listing text.
func (s *NetworkService) Render(ctx context.Context) string {
	return s.dir.Render()
}

func (s *NetworkService) Profile(ctx context.Context, name string) (*model.ProfileResponse, error) {
	u, err := s.dir.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &model.ProfileResponse{
		UserSummary: u.Summary(),
		Followers:   u.Followers(),
		Online:      s.dir.IsOnline(name),
	}, nil
}

// Follow makes actor a follower of target. The actor must hold a session.
func (s *NetworkService) Follow(ctx context.Context, actor, target string) error {
	a, t, err := s.pair(actor, target)
	if err != nil {
		return err
	}
	a.Follow(t)
	return nil
}

func (s *NetworkService) Unfollow(ctx context.Context, actor, target string) error {
	a, t, err := s.pair(actor, target)
	if err != nil {
		return err
	}
	a.Unfollow(t)
	return nil
}

func (s *NetworkService) Notifications(ctx context.Context, name string) (*model.NotificationListResponse, error) {
	u, err := s.dir.Lookup(name)
	if err != nil {
		return nil, err
	}
	inbox := u.Inbox()
	return &model.NotificationListResponse{Notifications: inbox, Total: len(inbox)}, nil
}

// Feed returns a page of the posts published by the users name follows,
// newest first. Pass the previous page's NextCursor to continue.
func (s *NetworkService) Feed(ctx context.Context, name string, cursor *float64, limit int) (*model.FeedResponse, error) {
	if s.feed == nil {
		return nil, model.ErrFeedUnavailable
	}
	if _, err := s.dir.Lookup(name); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	ids, scores, err := s.feed.GetFeed(ctx, name, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	res := &model.FeedResponse{Posts: make([]model.PostView, 0, len(ids))}
	for _, id := range ids {
		post, err := s.posts.GetByID(ctx, id)
		if errors.Is(err, model.ErrPostNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Posts = append(res.Posts, post.View())
	}
	if len(ids) == limit {
		next := scores[len(scores)-1]
		res.NextCursor = &next
	}
	return res, nil
}

// Publish creates a post for actor from req and registers it under its ID.
func (s *NetworkService) Publish(ctx context.Context, actor string, req *model.CreatePostRequest) (*model.PostView, error) {
	u, err := s.sessionUser(actor)
	if err != nil {
		return nil, err
	}
	kind, payload, err := payloadFromRequest(req)
	if err != nil {
		return nil, err
	}

	// Saved before fan-out so a follower can fetch the post it was told about.
	post, err := u.PublishFunc(kind, payload, func(p social.Post) error {
		if err := s.posts.Save(ctx, p); err != nil {
			return fmt.Errorf("save post %s: %w", p.ID(), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := post.View()
	return &view, nil
}

func (s *NetworkService) GetPost(ctx context.Context, id string) (*model.PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := post.View()
	return &view, nil
}

func (s *NetworkService) ListUserPosts(ctx context.Context, name string) ([]model.PostView, error) {
	if _, err := s.dir.Lookup(name); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByOwner(ctx, name)
	if err != nil {
		return nil, err
	}
	views := make([]model.PostView, len(posts))
	for i, p := range posts {
		views[i] = p.View()
	}
	return views, nil
}

func (s *NetworkService) Like(ctx context.Context, actor, postID string) (*model.PostView, error) {
	u, post, err := s.actorAndPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if err := post.Like(u); err != nil {
		return nil, err
	}
	view := post.View()
	return &view, nil
}

func (s *NetworkService) Comment(ctx context.Context, actor, postID, text string) (*model.PostView, error) {
	u, post, err := s.actorAndPost(ctx, actor, postID)
	if err != nil {
		return nil, err
	}
	if err := post.Comment(u, text); err != nil {
		return nil, err
	}
	view := post.View()
	return &view, nil
}

// Discount applies req to a sale post. The owner password is the only gate.
func (s *NetworkService) Discount(ctx context.Context, postID string, req *model.DiscountRequest) (*model.PostView, error) {
	sale, err := s.salePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := sale.ApplyDiscount(req.Percent, req.Password); err != nil {
		return nil, err
	}
	view := sale.View()
	return &view, nil
}

func (s *NetworkService) MarkSold(ctx context.Context, postID string, req *model.SoldRequest) (*model.PostView, error) {
	sale, err := s.salePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := sale.MarkSold(req.Password); err != nil {
		return nil, err
	}
	view := sale.View()
	return &view, nil
}

func (s *NetworkService) sessionUser(name string) (*social.User, error) {
	u, err := s.dir.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !s.dir.IsOnline(name) {
		return nil, model.ErrNotAuthorized
	}
	return u, nil
}

func (s *NetworkService) pair(actor, target string) (*social.User, *social.User, error) {
	a, err := s.sessionUser(actor)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.dir.Lookup(target)
	if err != nil {
		return nil, nil, err
	}
	return a, t, nil
}

// actorAndPost leaves the session check to the post itself.
func (s *NetworkService) actorAndPost(ctx context.Context, actor, postID string) (*social.User, social.Post, error) {
	u, err := s.dir.Lookup(actor)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return u, post, nil
}

func (s *NetworkService) salePost(ctx context.Context, postID string) (*social.SalePost, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	sale, ok := post.(*social.SalePost)
	if !ok {
		return nil, model.ErrNotSalePost
	}
	return sale, nil
}

func payloadFromRequest(req *model.CreatePostRequest) (model.PostKind, model.Payload, error) {
	kind, err := model.ParsePostKind(req.Kind)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", err, req.Kind)
	}
	switch kind {
	case model.PostKindText:
		return kind, model.TextPayload{Content: req.Content}, nil
	case model.PostKindImage:
		if strings.TrimSpace(req.ImageURL) == "" {
			return "", nil, fmt.Errorf("%w: image_url is required", model.ErrInvalidPayload)
		}
		return kind, model.ImagePayload{ImageURL: req.ImageURL}, nil
	default:
		return kind, model.SalePayload{
			Description: req.Description,
			Price:       req.Price,
			Location:    req.Location,
		}, nil
	}
}
