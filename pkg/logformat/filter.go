package logformat

import "strings"

// Visibility holds the per-level show flags for the filter predicate.
// The error flag also covers lines matching "exception".
type Visibility struct {
	Error   bool
	Warning bool
	Debug   bool
	Info    bool
}

// AllVisible returns visibility with every level enabled
func AllVisible() Visibility {
	return Visibility{Error: true, Warning: true, Debug: true, Info: true}
}

// Filter decides which raw lines are shown. A line is hidden when its raw
// text matches the marker of any disabled level, or when a query is set
// and the raw text does not contain it. Both tests are case-insensitive.
type Filter struct {
	Visibility Visibility
	Query      string
}

// Show reports whether a raw line passes the filter
func (f Filter) Show(raw string) bool {
	lower := strings.ToLower(raw)

	if !f.Visibility.Error && (strings.Contains(lower, "error") || strings.Contains(lower, "exception")) {
		return false
	}
	if !f.Visibility.Warning && strings.Contains(lower, "warning") {
		return false
	}
	if !f.Visibility.Debug && strings.Contains(lower, "debug") {
		return false
	}
	if !f.Visibility.Info && strings.Contains(lower, "info") {
		return false
	}

	if f.Query != "" && !strings.Contains(lower, strings.ToLower(f.Query)) {
		return false
	}

	return true
}

// IsActive reports whether the filter hides anything at all
func (f Filter) IsActive() bool {
	return f.Query != "" || f.Visibility != AllVisible()
}
