package logformat

import "strings"

// LongLineThreshold is the default content length above which a line is
// collapsed for display
const LongLineThreshold = 300

// ExpandMarker is appended to the truncated prefix of a collapsed line
const ExpandMarker = "... [クリックで展開]"

// LogLine is one classified line. Index is the position in the original
// file order; it is stable across filtering and collapsing and is the only
// addressing key used downstream.
type LogLine struct {
	Index          int
	Timestamp      string // empty if the line did not match the structural pattern
	Level          string // empty if unparsed
	DisplayContent string
	FullContent    string // set only when Collapsed
	Raw            string
	Tag            Tag
	Collapsed      bool
}

// Content returns the full content of the line regardless of collapsing
func (l *LogLine) Content() string {
	if l.Collapsed {
		return l.FullContent
	}
	return l.DisplayContent
}

// Classifier turns raw lines into LogLines
type Classifier struct {
	matcher   LineMatcher
	threshold int
}

// NewClassifier creates a classifier. A nil matcher uses the default
// pattern; threshold <= 0 uses LongLineThreshold.
func NewClassifier(matcher LineMatcher, threshold int) *Classifier {
	if matcher == nil {
		matcher = DefaultLineMatcher()
	}
	if threshold <= 0 {
		threshold = LongLineThreshold
	}
	return &Classifier{matcher: matcher, threshold: threshold}
}

// Classify parses one raw line. Tag detection runs on the raw unparsed
// line; structural parsing only fills timestamp/level/content. When
// collapseLong is set, content beyond the threshold moves to FullContent
// and DisplayContent keeps a truncated prefix with an expand marker.
func (c *Classifier) Classify(raw string, index int, collapseLong bool) LogLine {
	line := LogLine{
		Index: index,
		Raw:   raw,
		Tag:   DetectTag(raw),
	}

	content := strings.TrimSpace(raw)
	if parts, ok := c.matcher.Match(raw); ok {
		line.Timestamp = parts.Timestamp
		line.Level = parts.Level
		content = parts.Content
	}

	if collapseLong && len([]rune(content)) > c.threshold {
		runes := []rune(content)
		line.DisplayContent = string(runes[:c.threshold]) + ExpandMarker
		line.FullContent = content
		line.Collapsed = true
	} else {
		line.DisplayContent = content
	}

	return line
}

// ClassifyAll classifies a slice of raw lines, assigning indices from
// startIndex. Order is preserved.
func (c *Classifier) ClassifyAll(raws []string, startIndex int, collapseLong bool) []LogLine {
	lines := make([]LogLine, len(raws))
	for i, raw := range raws {
		lines[i] = c.Classify(raw, startIndex+i, collapseLong)
	}
	return lines
}
