package logging

import (
	"github.com/openHPI/customers/pkg/dto"
	"github.com/sirupsen/logrus"
)

// ContextHook copies the request values listed in dto.LoggedContextKeys into the entry fields.
// Logrus ignores the values of a context passed with WithContext.
type ContextHook struct{}

// Fire is triggered on new log entries.
func (hook *ContextHook) Fire(entry *logrus.Entry) error {
	if entry.Context != nil {
		injectContextValuesIntoData(entry)
	}
	return nil
}

// injectContextValuesIntoData never overwrites fields set explicitly on the entry.
func injectContextValuesIntoData(entry *logrus.Entry) {
	for _, key := range dto.LoggedContextKeys {
		if _, exists := entry.Data[string(key)]; exists {
			continue
		}
		if value := entry.Context.Value(key); value != nil {
			entry.Data[string(key)] = value
		}
	}
}

// Levels returns all levels this hook should be registered to.
func (hook *ContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
