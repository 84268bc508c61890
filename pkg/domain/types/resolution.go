package types

import "fmt"

// ResolutionSource indicates how an event was resolved to a project/task
type ResolutionSource string

const (
	ResolutionExplicit ResolutionSource = "explicit"
	ResolutionLearned  ResolutionSource = "learned"
	ResolutionUnmapped ResolutionSource = "unmapped"
)

// AllResolutionSources returns all valid resolution sources
func AllResolutionSources() []ResolutionSource {
	return []ResolutionSource{
		ResolutionExplicit,
		ResolutionLearned,
		ResolutionUnmapped,
	}
}

// IsValid checks if the resolution source is valid
func (s ResolutionSource) IsValid() bool {
	switch s {
	case ResolutionExplicit,
		ResolutionLearned,
		ResolutionUnmapped:
		return true
	default:
		return false
	}
}

// String returns the string representation of the resolution source
func (s ResolutionSource) String() string {
	return string(s)
}

// ParseResolutionSource parses a string into a ResolutionSource
func ParseResolutionSource(s string) (ResolutionSource, error) {
	source := ResolutionSource(s)
	if !source.IsValid() {
		return "", fmt.Errorf("invalid resolution source: %s", s)
	}
	return source, nil
}
