package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/social"
)

type feedEntry struct {
	id    string
	score float64
}

// memoryFeed is a FeedCache that indexes deliveries synchronously.
type memoryFeed struct {
	mu     sync.Mutex
	byUser map[string][]feedEntry
	seq    float64
}

func (m *memoryFeed) Delivered(n model.Notification) {
	if n.Action == model.ActionPost {
		m.mu.Lock()
		m.seq++
		seq := m.seq
		m.mu.Unlock()
		_ = m.AddPost(context.Background(), n.Receiver, n.PostID, int64(seq))
	}
}

func (m *memoryFeed) AddPost(ctx context.Context, user, postID string, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[user] = append(m.byUser[user], feedEntry{postID, float64(ts)})
	return nil
}

func (m *memoryFeed) GetFeed(ctx context.Context, user string, cursor *float64, limit int) ([]string, []float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := append([]feedEntry(nil), m.byUser[user]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	var ids []string
	var scores []float64
	for _, e := range entries {
		if cursor != nil && e.score >= *cursor {
			continue
		}
		if len(ids) == limit {
			break
		}
		ids = append(ids, e.id)
		scores = append(scores, e.score)
	}
	return ids, scores, nil
}

func (m *memoryFeed) Size(ctx context.Context, user string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byUser[user])), nil
}

func TestNetworkService_Feed(t *testing.T) {
	ctx := context.Background()
	dir := social.NewDirectory("Twitter", nil)
	feed := &memoryFeed{byUser: make(map[string][]feedEntry)}
	dir.Subscribe(feed)
	s := NewNetworkService(dir, repository.NewPostRepository())
	s.UseFeed(feed)

	register(t, s, "alice", "pass1")
	register(t, s, "bob", "pass2")
	register(t, s, "carol", "pass3")
	require.NoError(t, s.Follow(ctx, "bob", "alice"))
	require.NoError(t, s.Follow(ctx, "bob", "carol"))

	var published []string
	for _, author := range []string{"alice", "carol", "alice"} {
		p, err := s.Publish(ctx, author, &model.CreatePostRequest{Kind: "Text", Content: "from " + author})
		require.NoError(t, err)
		published = append(published, p.ID)
	}

	page, err := s.Feed(ctx, "bob", nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, published[2], page.Posts[0].ID)
	assert.Equal(t, published[1], page.Posts[1].ID)
	require.NotNil(t, page.NextCursor)

	page, err = s.Feed(ctx, "bob", page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, published[0], page.Posts[0].ID)
	assert.Nil(t, page.NextCursor)

	empty, err := s.Feed(ctx, "alice", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)

	_, err = s.Feed(ctx, "ghost", nil, 10)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestNetworkService_FeedLimit(t *testing.T) {
	ctx := context.Background()
	dir := social.NewDirectory("Twitter", nil)
	feed := &memoryFeed{byUser: make(map[string][]feedEntry)}
	dir.Subscribe(feed)
	s := NewNetworkService(dir, repository.NewPostRepository())
	s.UseFeed(feed)

	register(t, s, "alice", "pass1")
	register(t, s, "bob", "pass2")
	require.NoError(t, s.Follow(ctx, "bob", "alice"))
	for i := 0; i < maxFeedLimit+50; i++ {
		_, err := s.Publish(ctx, "alice", &model.CreatePostRequest{Kind: "Text", Content: "post"})
		require.NoError(t, err)
	}

	page, err := s.Feed(ctx, "bob", nil, 500)
	require.NoError(t, err)
	assert.Len(t, page.Posts, maxFeedLimit, "oversized limits are capped")
	assert.NotNil(t, page.NextCursor)

	page, err = s.Feed(ctx, "bob", nil, 0)
	require.NoError(t, err)
	assert.Len(t, page.Posts, defaultFeedLimit)
}

func TestNetworkService_FeedUnavailable(t *testing.T) {
	s := newTestService(t)
	register(t, s, "alice", "pass1")

	_, err := s.Feed(context.Background(), "alice", nil, 10)
	assert.ErrorIs(t, err, model.ErrFeedUnavailable)
}
