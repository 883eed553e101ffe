package logformat

import (
	"fmt"
	"regexp"
)

// DefaultLinePattern matches the "TIMESTAMP LEVEL - CONTENT" layout used by
// VRChat output logs, e.g. "2024.01.15 10:30:45 Log - OnPlayerJoined"
const DefaultLinePattern = `(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2})\s+(\w+)\s+-\s+(.+)`

// Parts holds the structural fields captured from a line
type Parts struct {
	Timestamp string
	Level     string
	Content   string
}

// LineMatcher extracts structural parts from a raw line.
// Implementations must be safe for concurrent use.
type LineMatcher interface {
	// Match returns the captured parts and whether the line matched
	Match(raw string) (Parts, bool)
}

// RegexLineMatcher is the standard regex-backed matcher
type RegexLineMatcher struct {
	re *regexp.Regexp
}

// NewLineMatcher compiles a matcher from a pattern with exactly three
// capture groups (timestamp, level, content)
func NewLineMatcher(pattern string) (*RegexLineMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid line pattern: %w", err)
	}
	if re.NumSubexp() != 3 {
		return nil, fmt.Errorf("line pattern needs 3 capture groups, has %d", re.NumSubexp())
	}
	return &RegexLineMatcher{re: re}, nil
}

// DefaultLineMatcher returns a matcher for the standard layout
func DefaultLineMatcher() *RegexLineMatcher {
	return &RegexLineMatcher{re: regexp.MustCompile(DefaultLinePattern)}
}

// Match implements LineMatcher
func (m *RegexLineMatcher) Match(raw string) (Parts, bool) {
	groups := m.re.FindStringSubmatch(raw)
	if groups == nil {
		return Parts{}, false
	}
	return Parts{
		Timestamp: groups[1],
		Level:     groups[2],
		Content:   groups[3],
	}, true
}
