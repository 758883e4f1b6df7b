package enums

import "fmt"

// NotificationLevel is the severity attached to a user-facing session notification.
type NotificationLevel string

const (
	NotificationLevelInfo    NotificationLevel = "info"
	NotificationLevelWarning NotificationLevel = "warning"
	NotificationLevelError   NotificationLevel = "error"
)

var validNotificationLevels = []NotificationLevel{
	NotificationLevelInfo,
	NotificationLevelWarning,
	NotificationLevelError,
}

// String implements fmt.Stringer.
func (l NotificationLevel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known NotificationLevel.
func (l NotificationLevel) IsValid() bool {
	for _, candidate := range validNotificationLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseNotificationLevel converts raw input into a NotificationLevel.
func ParseNotificationLevel(value string) (NotificationLevel, error) {
	for _, candidate := range validNotificationLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification level %q", value)
}
