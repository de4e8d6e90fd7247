package social

import (
	"log"

	"socialnet/internal/model"
)

// ActivityLog receives the observable side effects of actions on the network:
// session changes, follows, publications, sale updates, and the like/comment
// notifications that must be surfaced as soon as they are delivered.
// Implementations must not call back into the Directory, User or Post that
// produced the entry.
type ActivityLog interface {
	Record(a model.Activity)
}

// InboxListener is told about each notification right after it lands in
// the receiver's inbox. Like ActivityLog it must not call back into the core.
type InboxListener interface {
	Delivered(n model.Notification)
}

// StdLog writes activities to the standard logger.
type StdLog struct {
	Logger *log.Logger // nil uses the package-level logger
}

func (l StdLog) Record(a model.Activity) {
	prefix := "[Network]"
	switch a.Kind {
	case model.ActivityRegister, model.ActivityLogin, model.ActivityLogout:
		prefix = "[Directory]"
	case model.ActivityNotification:
		prefix = "[Notify]"
	case model.ActivityDiscount, model.ActivitySold:
		prefix = "[Sale]"
	}

	if l.Logger != nil {
		l.Logger.Printf("%s %s", prefix, a.Message)
		return
	}
	log.Printf("%s %s", prefix, a.Message)
}

// MultiLog tees every activity to each of its logs in order.
type MultiLog []ActivityLog

func (m MultiLog) Record(a model.Activity) {
	for _, l := range m {
		if l != nil {
			l.Record(a)
		}
	}
}

type discardLog struct{}

func (discardLog) Record(model.Activity) {}
