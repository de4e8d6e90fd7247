package model

import "time"

// Activity kinds surfaced to the external log collaborator
const (
	ActivityRegister     = "register"
	ActivityLogin        = "login"
	ActivityLogout       = "logout"
	ActivityFollow       = "follow"
	ActivityUnfollow     = "unfollow"
	ActivityPublish      = "publish"
	ActivityNotification = "notification"
	ActivityDiscount     = "discount"
	ActivitySold         = "sold"
)

// Activity is an observable side effect of an action on the network.
// Message holds the console-ready text; the other fields let sinks route it.
type Activity struct {
	Kind     string    `json:"kind"`
	Actor    string    `json:"actor"`
	Receiver string    `json:"receiver,omitempty"` // Set for notifications and follows
	PostID   string    `json:"post_id,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`

	// Notification is set when Kind is ActivityNotification
	Notification *Notification `json:"notification,omitempty"`
}
