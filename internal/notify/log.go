package notify

import (
	"context"

	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenders"
)

// Log writes messages to the log instead of delivering them. It backs
// NOTIFIER=log dry runs.
type Log struct {
	logger logging.Logger
}

func NewLog() *Log {
	return &Log{logger: logging.Component("notify-log")}
}

func (l *Log) Send(ctx context.Context, msg tenders.Message) error {
	fields := []logging.Field{
		logging.Int64("user_id", msg.UserID),
		logging.String("text", msg.Text),
	}
	if msg.Button != nil {
		fields = append(fields, logging.String("button", msg.Button.Data))
	}
	l.logger.WithContext(ctx).Info("Notification", fields...)
	return nil
}

var _ tenders.Notifier = (*Log)(nil)
