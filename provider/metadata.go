package provider

// Category classifies what a provider integrates with.
type Category string

const (
	// CategoryAnalytics marks product analytics providers.
	CategoryAnalytics Category = "analytics"
	// CategoryErrorTracking marks error/crash reporting providers.
	CategoryErrorTracking Category = "error-tracking"
)

// Platform is a runtime target a provider supports.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformServer  Platform = "server"
)

// Metadata describes a registered provider. It is immutable once
// registered; accessors hand out copies of the Platforms slice.
type Metadata struct {
	// ID is the unique provider identifier used for registration,
	// queueing, and dispatch targeting.
	ID string
	// Name is the human-readable display name.
	Name string
	// Category is the provider's integration category.
	Category Category
	// Version is the adapter's semantic version.
	Version string
	// Platforms lists the runtime targets the provider supports.
	Platforms []Platform
}

// SupportsPlatform reports whether the provider supports the given target.
func (m Metadata) SupportsPlatform(p Platform) bool {
	for _, candidate := range m.Platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// clone returns a copy with its own Platforms slice.
func (m Metadata) clone() Metadata {
	if m.Platforms != nil {
		platforms := make([]Platform, len(m.Platforms))
		copy(platforms, m.Platforms)
		m.Platforms = platforms
	}
	return m
}
