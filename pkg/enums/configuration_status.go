package enums

import "fmt"

// ConfigurationStatus tracks the quote lifecycle of a pool configuration.
type ConfigurationStatus string

const (
	ConfigurationStatusDraft    ConfigurationStatus = "draft"
	ConfigurationStatusQuoted   ConfigurationStatus = "quoted"
	ConfigurationStatusApproved ConfigurationStatus = "approved"
	ConfigurationStatusLocked   ConfigurationStatus = "locked"
)

var validConfigurationStatuses = []ConfigurationStatus{
	ConfigurationStatusDraft,
	ConfigurationStatusQuoted,
	ConfigurationStatusApproved,
	ConfigurationStatusLocked,
}

// String implements fmt.Stringer.
func (s ConfigurationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ConfigurationStatus.
func (s ConfigurationStatus) IsValid() bool {
	for _, candidate := range validConfigurationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConfigurationStatus converts raw input into a ConfigurationStatus.
func ParseConfigurationStatus(value string) (ConfigurationStatus, error) {
	for _, candidate := range validConfigurationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid configuration status %q", value)
}
