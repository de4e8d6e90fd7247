package queue

import (
	"encoding/json"
	"fmt"

	"socialnet/internal/model"
)

// Stream and group names
const (
	StreamActivity        = "stream:activity"
	ConsumerGroupActivity = "activity_tail"
)

// ActivityEvent is the envelope written to the activity stream.
// Every model.Activity kind shares it.
type ActivityEvent struct {
	Type      string `json:"type"`      // model.Activity* kind
	Network   string `json:"network"`   // Directory name
	Timestamp int64  `json:"timestamp"` // Unix milliseconds

	Actor    string `json:"actor"`
	Receiver string `json:"receiver,omitempty"`
	PostID   string `json:"post_id,omitempty"`
	Message  string `json:"message"`

	// Set for notification events
	NotificationID string `json:"notification_id,omitempty"`
	Action         string `json:"action,omitempty"`
}

// NewActivityEvent converts a recorded activity of the given network.
func NewActivityEvent(network string, a model.Activity) ActivityEvent {
	e := ActivityEvent{
		Type:      a.Kind,
		Network:   network,
		Timestamp: a.At.UnixMilli(),
		Actor:     a.Actor,
		Receiver:  a.Receiver,
		PostID:    a.PostID,
		Message:   a.Message,
	}
	if a.Notification != nil {
		e.NotificationID = a.Notification.ID
		e.Action = a.Notification.Action
	}
	return e
}

// ToMap converts the event to XADD field-value pairs. The full event travels
// as JSON in the "data" field; "type" is duplicated for XRANGE inspection.
func (e ActivityEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseActivityEvent parses an ActivityEvent from stream message values.
func ParseActivityEvent(values map[string]interface{}) (ActivityEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ActivityEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ActivityEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ActivityEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
