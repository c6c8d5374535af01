package logging

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/sirupsen/logrus"
)

// SentryContextKey is the name of the Sentry context that holds the logrus fields.
const SentryContextKey = "Customers Details"

// SentryHook is a simple adapter that converts logrus entries into Sentry events.
type SentryHook struct{}

// Fire is triggered on new log entries.
func (hook *SentryHook) Fire(entry *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Timestamp = entry.Time
	event.Level = sentry.Level(entry.Level.String())
	event.Message = entry.Message

	// Add Stack Trace when an error was passed.
	if data, ok := entry.Data["error"]; ok {
		err, ok := data.(error)
		if ok {
			const maxErrorDepth = 10
			event.SetException(err, maxErrorDepth)
			entry.Data["error"] = err.Error()
		}
	}

	var hub *sentry.Hub
	if entry.Context != nil {
		hub = sentry.GetHubFromContext(entry.Context)
		injectContextValuesIntoData(entry)
	}
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	// The scope is cloned so that the details of this entry do not leak into later events.
	hub = hub.Clone()

	hub.Scope().SetContext(SentryContextKey, entry.Data)
	for _, key := range dto.LoggedContextKeys {
		if value, ok := entry.Data[string(key)].(string); ok {
			hub.Scope().SetTag(string(key), value)
		}
	}

	hub.CaptureEvent(event)
	return nil
}

// Levels returns all levels this hook should be registered to.
func (hook *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

// StartSpan starts a Sentry span and passes its context to the callback.
func StartSpan(ctx context.Context, op, description string, callback func(context.Context, *sentry.Span)) {
	span := sentry.StartSpan(ctx, op)
	span.Description = description
	defer span.Finish()
	callback(span.Context(), span)
}
