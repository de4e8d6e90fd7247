package model

import (
	"time"
)

// Notification actions
const (
	ActionPost    = "Post"
	ActionLike    = "Like"
	ActionComment = "Comment"
)

// Notification is a single entry of a user's inbox.
type Notification struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`   // Post, Like, Comment
	Sender    string    `json:"sender"`   // Who triggered it
	Receiver  string    `json:"receiver"` // Inbox owner
	Message   string    `json:"message"`  // Display text
	PostID    string    `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListResponse is the inbox of the authenticated user.
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}
