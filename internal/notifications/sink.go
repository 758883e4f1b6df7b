package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// Notification is a user-facing message raised while editing.
type Notification struct {
	ID        uuid.UUID               `json:"id"`
	Level     enums.NotificationLevel `json:"level"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
}

// Sink receives notifications. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, level enums.NotificationLevel, message string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, level enums.NotificationLevel, message string)

func (f SinkFunc) Notify(ctx context.Context, level enums.NotificationLevel, message string) {
	f(ctx, level, message)
}

// Fanout delivers to every non-nil sink in order.
func Fanout(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return SinkFunc(func(ctx context.Context, level enums.NotificationLevel, message string) {
		for _, sink := range filtered {
			sink.Notify(ctx, level, message)
		}
	})
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	logg *logger.Logger
}

// NewLogSink returns a sink backed by logg.
func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, level enums.NotificationLevel, message string) {
	if s == nil || s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "notification_level", level.String())
	switch level {
	case enums.NotificationLevelError:
		s.logg.Error(ctx, message, nil)
	case enums.NotificationLevelWarning:
		s.logg.Warn(ctx, message)
	default:
		s.logg.Info(ctx, message)
	}
}
