package notify

import (
	"fmt"
	"regexp"
)

// DefaultRecordPattern matches one notification block. (?s) lets the lazy
// message field span newlines; the non-greedy [^>]*? segments skip the
// fields between the ones we capture.
const DefaultRecordPattern = `(?s)(\d{4}\.\d{2}\.\d{2} \d{2}:\d{2}:\d{2}).*?` +
	`Received Notification: <Notification[^>]*?` +
	`id: (not_[\w-]+)[^>]*?` +
	`created at: ([\d/]+ [\d:]+ \w+)[^>]*?` +
	`message: "(.+?)">`

// Match holds the raw captured fields of one notification block, before
// unescaping and validation
type Match struct {
	ReceivedAt string
	ID         string
	CreatedAt  string
	Message    string
}

// RecordMatcher finds notification blocks in log text. It is a strategy
// interface so the structural grammar can change without touching the
// extractor.
type RecordMatcher interface {
	FindAll(text string) []Match
}

// RegexRecordMatcher is the standard regex-backed matcher
type RegexRecordMatcher struct {
	re *regexp.Regexp
}

// NewRecordMatcher compiles a matcher from a pattern with exactly four
// capture groups (receivedAt, id, createdAt, message)
func NewRecordMatcher(pattern string) (*RegexRecordMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid record pattern: %w", err)
	}
	if re.NumSubexp() != 4 {
		return nil, fmt.Errorf("record pattern needs 4 capture groups, has %d", re.NumSubexp())
	}
	return &RegexRecordMatcher{re: re}, nil
}

// DefaultRecordMatcher returns a matcher for the standard block layout
func DefaultRecordMatcher() *RegexRecordMatcher {
	return &RegexRecordMatcher{re: regexp.MustCompile(DefaultRecordPattern)}
}

// FindAll implements RecordMatcher
func (m *RegexRecordMatcher) FindAll(text string) []Match {
	groups := m.re.FindAllStringSubmatch(text, -1)
	if groups == nil {
		return nil
	}

	matches := make([]Match, 0, len(groups))
	for _, g := range groups {
		if len(g) != 5 {
			continue
		}
		matches = append(matches, Match{
			ReceivedAt: g[1],
			ID:         g[2],
			CreatedAt:  g[3],
			Message:    g[4],
		})
	}
	return matches
}
