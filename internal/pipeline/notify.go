package pipeline

import "github.com/mounirl1/replystack-sub000/pkg/logger"

// Notifier surfaces a user-visible message about new reviews. The daemon
// implementation just logs; richer channels plug in behind this interface.
type Notifier interface {
	Notify(title, message string)
}

type LogNotifier struct{}

func (LogNotifier) Notify(title, message string) {
	logger.Log.Info().Str("title", title).Str("message", message).Msg("notification")
}
