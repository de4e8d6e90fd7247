package social

import (
	"fmt"
	"sync"

	"socialnet/internal/model"
)

// User is an actor of the network. It owns its inbox and follower list;
// the Directory that registered it owns the User.
type User struct {
	name string
	dir  *Directory

	mu        sync.RWMutex
	followers []*User
	inbox     []model.Notification
	postCount int
}

func newUser(name string, dir *Directory) *User {
	return &User{name: name, dir: dir}
}

// Name returns the unique, immutable user name.
func (u *User) Name() string {
	return u.name
}

// Follow makes u a follower of other. Following twice has no further effect.
func (u *User) Follow(other *User) {
	other.addFollower(u)
	u.dir.record(model.ActivityFollow, u.name, u.name+" started following "+other.name)
}

// Unfollow removes u from other's followers. Unfollowing a user u does not
// follow is a no-op.
func (u *User) Unfollow(other *User) {
	other.removeFollower(u)
	u.dir.record(model.ActivityUnfollow, u.name, u.name+" unfollowed "+other.name)
}

func (u *User) addFollower(f *User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.followers {
		if existing == f {
			return
		}
	}
	u.followers = append(u.followers, f)
}

func (u *User) removeFollower(f *User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, existing := range u.followers {
		if existing == f {
			u.followers = append(u.followers[:i], u.followers[i+1:]...)
			return
		}
	}
}

// Publish creates a post of the given kind and notifies every current follower.
// Followers added afterwards never see this notification.
func (u *User) Publish(kind model.PostKind, payload model.Payload) (Post, error) {
	return u.PublishFunc(kind, payload, nil)
}

// PublishFunc is Publish with a register step: register sees the new post
// before any follower is notified, and an error from it aborts the publish
// with the post count unchanged.
func (u *User) PublishFunc(kind model.PostKind, payload model.Payload, register func(Post) error) (Post, error) {
	post, err := u.dir.factory.Create(kind, u, payload)
	if err != nil {
		return nil, fmt.Errorf("publish %s post: %w", kind, err)
	}
	if register != nil {
		if err := register(post); err != nil {
			return nil, err
		}
	}

	u.mu.Lock()
	u.postCount++
	receivers := make([]*User, len(u.followers))
	copy(receivers, u.followers)
	u.mu.Unlock()

	rendered := post.Render()
	u.dir.activity.Record(model.Activity{
		Kind:    model.ActivityPublish,
		Actor:   u.name,
		PostID:  post.ID(),
		Message: rendered,
		At:      post.CreatedAt(),
	})

	deliver(model.ActionPost, u, receivers, post.ID(), rendered)
	return post, nil
}

// receive appends a notification for an action performed by sender.
// Like and Comment notifications are surfaced to the activity log as well.
func (u *User) receive(action string, sender *User, postID, detail string) model.Notification {
	n := newNotification(action, sender.name, u.name, postID, detail)

	u.mu.Lock()
	u.inbox = append(u.inbox, n)
	u.mu.Unlock()
	u.dir.delivered(n)

	if action == model.ActionLike || action == model.ActionComment {
		u.dir.activity.Record(model.Activity{
			Kind:         model.ActivityNotification,
			Actor:        sender.name,
			Receiver:     u.name,
			PostID:       postID,
			Message:      fmt.Sprintf("notification to %s: %s", u.name, n.Message),
			At:           n.CreatedAt,
			Notification: &n,
		})
	}
	return n
}

// Notifications returns the inbox as display strings, oldest first.
func (u *User) Notifications() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]string, len(u.inbox))
	for i, n := range u.inbox {
		out[i] = n.Message
	}
	return out
}

// Inbox returns a copy of the received notifications, oldest first.
func (u *User) Inbox() []model.Notification {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]model.Notification, len(u.inbox))
	copy(out, u.inbox)
	return out
}

// Followers returns follower names in the order they started following.
func (u *User) Followers() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, len(u.followers))
	for i, f := range u.followers {
		names[i] = f.name
	}
	return names
}

func (u *User) FollowerCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.followers)
}

func (u *User) PostCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.postCount
}

// Summary returns the listing row for u.
func (u *User) Summary() model.UserSummary {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return model.UserSummary{
		Name:          u.name,
		PostCount:     u.postCount,
		FollowerCount: len(u.followers),
	}
}

// Render returns the one-line description used by network listings.
func (u *User) Render() string {
	s := u.Summary()
	return fmt.Sprintf("User name: %s, Number of posts: %d, Number of followers: %d",
		s.Name, s.PostCount, s.FollowerCount)
}

func (u *User) String() string {
	return u.Render()
}
