package social

import (
	"time"

	"github.com/rs/xid"

	"socialnet/internal/model"
)

// deliver hands one action event from sender to each receiver, in order.
// It returns once every receiver's inbox holds the notification.
func deliver(action string, sender *User, receivers []*User, postID, detail string) {
	for _, r := range receivers {
		r.receive(action, sender, postID, detail)
	}
}

// notifyOwner delivers a Like or Comment to the owner of a post unless the
// owner performed the action.
func notifyOwner(action string, actor, owner *User, postID, detail string) {
	if actor.name == owner.name {
		return
	}
	deliver(action, actor, []*User{owner}, postID, detail)
}

func newNotification(action, sender, receiver, postID, detail string) model.Notification {
	return model.Notification{
		ID:        xid.New().String(),
		Action:    action,
		Sender:    sender,
		Receiver:  receiver,
		Message:   formatNotification(action, sender, detail),
		PostID:    postID,
		CreatedAt: time.Now(),
	}
}

func formatNotification(action, sender, detail string) string {
	switch action {
	case model.ActionPost:
		return sender + " has a new post"
	case model.ActionLike:
		return sender + " liked your post"
	case model.ActionComment:
		return sender + " commented on your post: " + detail
	default:
		return sender + " " + action
	}
}
