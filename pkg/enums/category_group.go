package enums

import "fmt"

// CategoryGroup identifies an independently reconciled set of configuration rows.
type CategoryGroup string

const (
	CategoryGroupExtras  CategoryGroup = "extras"
	CategoryGroupHeating CategoryGroup = "heating"
	CategoryGroupCleaner CategoryGroup = "cleaner"
)

// CategoryGroups lists every group in reconciliation order.
var CategoryGroups = []CategoryGroup{
	CategoryGroupExtras,
	CategoryGroupHeating,
	CategoryGroupCleaner,
}

// String implements fmt.Stringer.
func (g CategoryGroup) String() string {
	return string(g)
}

// IsValid reports whether the value is a known CategoryGroup.
func (g CategoryGroup) IsValid() bool {
	for _, candidate := range CategoryGroups {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseCategoryGroup converts raw input into a CategoryGroup.
func ParseCategoryGroup(value string) (CategoryGroup, error) {
	for _, candidate := range CategoryGroups {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category group %q", value)
}
