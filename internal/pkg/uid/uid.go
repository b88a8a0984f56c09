// Package uid provides small abstractions for ID generation.
//
// Two shapes exist: StringID for opaque string identifiers (UUIDs,
// object IDs used as tokens) and NumberID for sortable numeric entity
// IDs (snowflakes). Business code depends on these interfaces so tests
// can substitute deterministic generators.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	// Generate returns a new unique string ID.
	Generate() string
}

// NumberID generates numeric identifiers.
type NumberID interface {
	// Generate returns a new unique int64 ID.
	Generate() int64
}
